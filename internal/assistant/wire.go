// ABOUTME: JSON wire types for the assistant chat endpoint
// ABOUTME: Shared by the HTTP client and the local echo assistant

package assistant

import (
	"fmt"

	"github.com/2389/coven-chat/internal/chat"
)

// ChatPath is the conventional path of the assistant chat endpoint.
const ChatPath = "/api/assistant/chat"

// RequestIDHeader carries the per-exchange request id.
const RequestIDHeader = "X-Request-ID"

// ChatRequest is the JSON body posted to the assistant endpoint.
type ChatRequest struct {
	ClientID int64         `json:"client_id"`
	Messages []WireMessage `json:"messages"`
}

// WireMessage is a transcript entry as it appears on the wire.
type WireMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// ChatResponse is the success body. Reply is a pointer so a missing field
// can be told apart from an empty reply.
type ChatResponse struct {
	Reply *string `json:"reply"`
}

// ErrorResponse is the optional failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToWire converts a transcript into wire messages.
func ToWire(msgs []chat.Message) []WireMessage {
	out := make([]WireMessage, len(msgs))
	for i, m := range msgs {
		out[i] = WireMessage{Role: string(m.Role), Message: m.Text}
	}
	return out
}

// FromWire converts wire messages into a transcript, rejecting unknown roles.
func FromWire(msgs []WireMessage) ([]chat.Message, error) {
	out := make([]chat.Message, len(msgs))
	for i, m := range msgs {
		role, err := chat.ParseRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out[i] = chat.Message{Role: role, Text: m.Message}
	}
	return out, nil
}
