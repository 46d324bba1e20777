// Package chat defines the domain types shared by the conversation
// controller, the assistant client and the presentation surfaces.
//
// # Messages
//
// A Message is a single turn in the transcript. Messages are values: once
// appended to a transcript they are never edited or removed.
//
//	chat.Message{Role: chat.RoleUser, Text: "Hello"}
//
// # Errors
//
// An exchange with the assistant service fails in one of two ways:
//
//   - APIError: the service answered with a non-2xx status
//   - TransportError: no well-formed answer could be obtained (network
//     failure, timeout, cancellation, malformed payload)
//
// ReplyForError converts either kind into the text of the synthetic
// assistant message shown inline in the transcript.
package chat
