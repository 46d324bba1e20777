// Package assistant implements the HTTP client for the assistant service.
//
// # Overview
//
// The assistant service is a single HTTP endpoint. Each exchange posts the
// full transcript and receives one reply:
//
//	POST /api/assistant/chat
//	{"client_id": 42, "messages": [{"role": "user", "message": "Hello"}]}
//
//	200 {"reply": "Hi there"}
//	500 {"error": "Rate limited"}
//
// # Errors
//
// Chat returns a *chat.APIError for any non-2xx status and a
// *chat.TransportError when no well-formed response could be obtained
// (connection failure, timeout, cancellation, malformed body).
//
// # Timeouts
//
// Config.Timeout bounds each exchange. Zero waits indefinitely; callers can
// still cancel through the context passed to Chat.
//
// # Usage
//
//	client := assistant.NewClient(assistant.Config{
//	    Endpoint: "http://localhost:5000/api/assistant/chat",
//	    Timeout:  time.Minute,
//	})
//	reply, err := client.Chat(ctx, 42, transcript)
package assistant
