// Package conversation owns the state of a single chat session.
//
// # Overview
//
// The Controller holds the transcript, the draft being composed and a
// pending flag marking the one request allowed in flight. Surfaces forward
// user intents to it and render the snapshots it publishes:
//
//	ctrl, err := conversation.New(conversation.Config{
//	    ClientID:  42,
//	    Assistant: assistantClient,
//	})
//	ctrl.UpdateDraft("Hello")
//	ctrl.Submit(ctx) // blocks until the exchange resolves
//
// Event-driven surfaces use ConfirmAsync instead, which returns as soon as
// the user message is appended and resolves the exchange in the background.
// Wait blocks until all background exchanges have resolved.
//
// # State Machine
//
// Two states:
//
//  1. Idle: no request in flight. Submit with a non-blank draft appends the
//     user message, clears the draft, sets Pending and dispatches.
//  2. Awaiting: one request in flight. Submit and Confirm are rejected.
//     Draft edits are still accepted.
//
// Every resolution (reply, API error, transport error) appends exactly one
// assistant message and returns to Idle.
//
// # Observing State
//
// Subscribe returns a channel of State snapshots. The first snapshot is the
// state at subscription time; each later one follows a change. Snapshots
// are cumulative, so a slow subscriber that misses one loses nothing once
// the next arrives.
//
// # Concurrency
//
// All methods are safe for concurrent use. The state lock is never held
// across the network exchange.
package conversation
