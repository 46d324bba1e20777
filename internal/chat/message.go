// ABOUTME: Transcript message types shared across the chat client
// ABOUTME: Defines roles, messages and the opaque client identity

package chat

import "fmt"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ClientID identifies the owner of a conversation. It is opaque to the
// client and passed through to the assistant service unchanged.
type ClientID int64

// Message is one turn of the transcript.
type Message struct {
	Role Role
	Text string
}

// UserMessage builds a message authored by the user.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage builds a message authored by the assistant.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// CloneMessages returns a copy of msgs that shares no backing array with it.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
