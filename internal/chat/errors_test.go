// ABOUTME: Tests for exchange error kinds and their transcript text
// ABOUTME: Covers API errors with and without messages and transport failures

package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyForError_APIErrorWithMessage(t *testing.T) {
	err := &APIError{Status: 500, Message: "Rate limited"}
	assert.Equal(t, "Error: Rate limited", ReplyForError(err))
}

func TestReplyForError_APIErrorWithoutMessage(t *testing.T) {
	err := &APIError{Status: 502}
	assert.Equal(t, "Error: Something went wrong", ReplyForError(err))
}

func TestReplyForError_WrappedAPIError(t *testing.T) {
	err := fmt.Errorf("exchange: %w", &APIError{Status: 429, Message: "slow down"})
	assert.Equal(t, "Error: slow down", ReplyForError(err))
}

func TestReplyForError_TransportError(t *testing.T) {
	err := &TransportError{Op: "sending request", Err: errors.New("connection refused")}
	assert.Equal(t, "Network error. Please try again.", ReplyForError(err))
}

func TestReplyForError_UnknownErrorIsTransport(t *testing.T) {
	assert.Equal(t, NetworkErrorText, ReplyForError(errors.New("boom")))
}

func TestTransportError_Unwrap(t *testing.T) {
	err := &TransportError{Op: "sending request", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "sending request: context deadline exceeded", err.Error())
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "assistant returned status 500: Rate limited", (&APIError{Status: 500, Message: "Rate limited"}).Error())
	assert.Equal(t, "assistant returned status 503", (&APIError{Status: 503}).Error())
}
