// ABOUTME: Error kinds for assistant exchanges and their transcript rendering
// ABOUTME: APIError covers failure statuses, TransportError covers everything else

package chat

import (
	"errors"
	"fmt"
)

const (
	// DefaultErrorText is shown when the service reports a failure without
	// an error message.
	DefaultErrorText = "Something went wrong"

	// NetworkErrorText is shown when no well-formed response was obtained.
	NetworkErrorText = "Network error. Please try again."
)

// APIError reports that the assistant service was reachable but answered
// with a failure status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("assistant returned status %d", e.Status)
	}
	return fmt.Sprintf("assistant returned status %d: %s", e.Status, e.Message)
}

// TransportError reports that no well-formed response could be obtained.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ReplyForError returns the assistant text that stands in for a failed
// exchange. Errors that are not an *APIError are treated as transport
// failures.
func ReplyForError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = DefaultErrorText
		}
		return "Error: " + msg
	}
	return NetworkErrorText
}
