// Package echo implements a local assistant that speaks the chat wire
// contract, for development and end-to-end tests.
//
// # Overview
//
// POST /api/assistant/chat validates the transcript and replies with the
// last user message echoed back as markdown. Mentioning markdown, a list or
// bullets returns a fixed markdown sample instead.
//
// Requests that fail validation get 400 with an {"error": ...} body:
// invalid JSON, a missing client_id, an empty transcript, an unknown role, or
// a transcript whose last message is not from the user.
//
// # Failure Triggers
//
// A last message starting with "!fail" returns 500 with the remaining text as
// the error field. One starting with "!silent" returns 500 with no body.
//
// # Replay
//
// Successful replies are cached by X-Request-ID. A retried request with the
// same id within the replay window receives the cached reply.
package echo
