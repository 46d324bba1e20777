// Package webchat serves a conversation to a browser.
//
// # Overview
//
// The Server renders the chat page from an embedded template and keeps it
// current with Server-Sent Events. Assistant messages are converted from
// markdown with goldmark; raw HTML inside replies is dropped. User messages
// are shown as escaped text.
//
// # HTTP API
//
//	GET  /             chat page
//	GET  /api/state    {"messages":[{"role","message","html"}],"draft","pending"}
//	GET  /api/events   SSE stream of "state" events, current state first
//	POST /api/draft    {"text": "..."} replaces the draft, 204
//	POST /api/submit   Confirm; 202 {"accepted":true} or 200 {"accepted":false}
//	GET  /health       ok
//
// Submitted exchanges run on a server-owned context, so closing the browser
// tab does not cancel them. Shutdown cancels that context.
//
// # Listening
//
// Run listens on web.addr, or joins the tailnet with tsnet when
// web.tailscale.enabled is set and serves on port 80 of the node.
package webchat
