// ABOUTME: Conversation controller holding transcript, draft and pending flag
// ABOUTME: Performs one assistant exchange per submit and appends the outcome

package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/2389/coven-chat/internal/chat"
)

// ErrNoAssistant is returned by New when no assistant is configured.
var ErrNoAssistant = errors.New("conversation: assistant is required")

// Assistant performs one exchange with the assistant service.
type Assistant interface {
	Chat(ctx context.Context, clientID chat.ClientID, transcript []chat.Message) (string, error)
}

// State is a snapshot of the conversation for rendering. Messages must be
// treated as read-only; it may be shared between subscribers.
type State struct {
	Messages []chat.Message
	Draft    string
	Pending  bool
}

// Config configures a Controller.
type Config struct {
	ClientID  chat.ClientID
	Assistant Assistant
	Logger    *slog.Logger
}

// Controller owns the state of one conversation.
type Controller struct {
	clientID    chat.ClientID
	assistant   Assistant
	logger      *slog.Logger
	broadcaster *StateBroadcaster

	inflight sync.WaitGroup

	mu       sync.Mutex
	messages []chat.Message
	draft    string
	pending  bool
}

// New creates a controller with an empty transcript.
func New(cfg Config) (*Controller, error) {
	if cfg.Assistant == nil {
		return nil, ErrNoAssistant
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		clientID:    cfg.ClientID,
		assistant:   cfg.Assistant,
		logger:      logger.With("component", "conversation"),
		broadcaster: NewStateBroadcaster(logger),
	}, nil
}

// ClientID returns the identity the controller sends with each exchange.
func (c *Controller) ClientID() chat.ClientID {
	return c.clientID
}

// UpdateDraft replaces the draft. It is allowed while a request is pending.
func (c *Controller) UpdateDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == text {
		return
	}
	c.draft = text
	c.publishLocked()
}

// Submit sends the trimmed draft as a user message and blocks until the
// exchange resolves. It returns false without touching state when the
// draft is blank or a request is already pending.
func (c *Controller) Submit(ctx context.Context) bool {
	transcript, ok := c.dispatch()
	if !ok {
		return false
	}
	defer c.inflight.Done()

	c.exchange(ctx, transcript)
	return true
}

// Confirm is the Enter-key intent. It submits only when no request is
// pending and is otherwise a no-op.
func (c *Controller) Confirm(ctx context.Context) bool {
	if c.Pending() {
		return false
	}
	return c.Submit(ctx)
}

// ConfirmAsync is Confirm for event-driven surfaces. The user message is
// appended before it returns; the exchange runs in the background under ctx.
// It returns false when nothing was submitted.
func (c *Controller) ConfirmAsync(ctx context.Context) bool {
	transcript, ok := c.dispatch()
	if !ok {
		return false
	}

	go func() {
		defer c.inflight.Done()
		c.exchange(ctx, transcript)
	}()
	return true
}

// Wait blocks until every accepted exchange has resolved.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// dispatch moves the draft into the transcript and marks the request
// pending. The caller must run exchange and then call inflight.Done.
func (c *Controller) dispatch() ([]chat.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := strings.TrimSpace(c.draft)
	if text == "" || c.pending {
		return nil, false
	}

	c.messages = append(c.messages, chat.UserMessage(text))
	c.draft = ""
	c.pending = true
	c.inflight.Add(1)
	transcript := chat.CloneMessages(c.messages)
	c.publishLocked()
	return transcript, true
}

func (c *Controller) exchange(ctx context.Context, transcript []chat.Message) {
	c.logger.Debug("dispatching transcript",
		"client_id", c.clientID,
		"message_count", len(transcript),
	)

	resolved := false
	defer func() {
		// Reached only when the assistant panicked.
		if !resolved {
			c.resolve(chat.AssistantMessage(chat.NetworkErrorText))
		}
	}()

	reply, err := c.assistant.Chat(ctx, c.clientID, transcript)
	if err != nil {
		c.logger.Warn("assistant exchange failed",
			"client_id", c.clientID,
			"error", err,
		)
		reply = chat.ReplyForError(err)
	} else {
		c.logger.Debug("assistant replied", "client_id", c.clientID)
	}

	c.resolve(chat.AssistantMessage(reply))
	resolved = true
}

// resolve appends the outcome of an exchange and clears the pending flag.
func (c *Controller) resolve(msg chat.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msg)
	c.pending = false
	c.publishLocked()
}

// Pending reports whether a request is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel of state snapshots, starting with the current
// state. The channel is closed when ctx is cancelled or the controller is
// closed.
func (c *Controller) Subscribe(ctx context.Context) <-chan State {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, _ := c.broadcaster.Subscribe(ctx, c.snapshotLocked())
	return ch
}

// Close releases all subscribers.
func (c *Controller) Close() {
	c.broadcaster.Close()
}

func (c *Controller) snapshotLocked() State {
	return State{
		Messages: chat.CloneMessages(c.messages),
		Draft:    c.draft,
		Pending:  c.pending,
	}
}

// publishLocked fans the current state out to subscribers. Publishing under
// mu keeps snapshots in change order.
func (c *Controller) publishLocked() {
	c.broadcaster.Publish(c.snapshotLocked())
}
