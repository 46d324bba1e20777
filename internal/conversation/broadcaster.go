// ABOUTME: In-memory fan-out of conversation state snapshots to surfaces
// ABOUTME: Latest snapshot wins when a subscriber falls behind

package conversation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// StateBroadcaster provides in-memory pub/sub for State snapshots.
// Subscribers never block the publisher: when a subscriber's buffer is full
// its oldest queued snapshot is discarded to make room for the newest.
type StateBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	closed      bool
	done        chan struct{} // closed by Close
	watchers    sync.WaitGroup
	logger      *slog.Logger
}

type subscriber struct {
	ch   chan State
	stop chan struct{} // closed on unsubscribe
}

// NewStateBroadcaster creates a broadcaster. Pass nil logger for default.
func NewStateBroadcaster(logger *slog.Logger) *StateBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateBroadcaster{
		subscribers: make(map[string]*subscriber),
		done:        make(chan struct{}),
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe registers a subscriber whose channel starts with initial.
// Returns the channel and a subscription ID for later unsubscription. The
// subscription is cleaned up automatically when ctx is cancelled.
func (b *StateBroadcaster) Subscribe(ctx context.Context, initial State) (<-chan State, string) {
	subID := uuid.New().String()
	ch := make(chan State, subscriberBufferSize)
	ch <- initial

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	sub := &subscriber{ch: ch, stop: make(chan struct{})}
	b.subscribers[subID] = sub
	b.watchers.Add(1)
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		defer b.watchers.Done()
		select {
		case <-ctx.Done():
			b.Unsubscribe(subID)
		case <-sub.stop:
		case <-b.done:
		}
	}()

	return ch, subID
}

// Publish sends state to every subscriber without blocking.
func (b *StateBroadcaster) Publish(state State) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	// Sends happen under the read lock so Unsubscribe cannot close a
	// channel mid-send; none of them block.
	for id, sub := range b.subscribers {
		ch := sub.ch
		select {
		case ch <- state:
			continue
		default:
		}

		// Full: discard the oldest queued snapshot, then retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
			b.logger.Debug("dropped snapshot for slow subscriber", "sub_id", id)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *StateBroadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(sub.ch)
	close(sub.stop)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// Len returns the number of active subscribers.
func (b *StateBroadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *StateBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for subID, sub := range b.subscribers {
		close(sub.ch)
		close(sub.stop)
		delete(b.subscribers, subID)
	}

	b.logger.Debug("broadcaster closed")
}
