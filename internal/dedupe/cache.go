// ABOUTME: Thread-safe TTL cache that remembers the result produced for a request key.
// ABOUTME: Lets a handler replay its earlier answer when a client retries the same request.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

const cleanupInterval = time.Minute

type entry[V any] struct {
	key    string
	value  V
	stored time.Time
}

// Cache maps request keys to the result first produced for them. Entries
// expire after the TTL and the oldest entry is evicted when maxSize is reached.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache and starts its background expiry loop. Call Close to stop it.
func New[V any](ttl time.Duration, maxSize int) *Cache[V] {
	if maxSize < 1 {
		maxSize = 1
	}
	c := &Cache[V]{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Lookup returns the value stored for key if it has not expired.
// An empty key never matches.
func (c *Cache[V]) Lookup(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[V])
	if c.expired(e, c.now()) {
		c.removeLocked(elem)
		return zero, false
	}
	return e.value, true
}

// Store records value for key, replacing any previous value. Empty keys are ignored.
func (c *Cache[V]) Store(key string, value V) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.stored = now
		c.order.MoveToBack(elem)
		return
	}

	for len(c.entries) >= c.maxSize {
		c.removeLocked(c.order.Front())
	}

	c.entries[key] = c.order.PushBack(&entry[V]{key: key, value: value, stored: now})
}

// Len returns the number of entries, including ones that expired but were not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}

func (c *Cache[V]) expired(e *entry[V], now time.Time) bool {
	return now.Sub(e.stored) >= c.ttl
}

// removeLocked must be called with mu held.
func (c *Cache[V]) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	e := elem.Value.(*entry[V])
	c.order.Remove(elem)
	delete(c.entries, e.key)
}

func (c *Cache[V]) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep drops expired entries. Entries are stored in time order, so it stops
// at the first live one.
func (c *Cache[V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for elem := c.order.Front(); elem != nil; elem = c.order.Front() {
		if !c.expired(elem.Value.(*entry[V]), now) {
			return
		}
		c.removeLocked(elem)
	}
}
