// Package coalesce collapses concurrent identical requests into one
// underlying invocation. Callers sharing a key while a call is in flight, or
// within the hold window after it settles, all observe the same settlement.
package coalesce

import (
	"context"
	"sync"
	"time"
)

// call tracks one underlying invocation and its settlement.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error

	// settledAt is set when done closes; the settlement is served to new
	// callers until settledAt+window.
	settledAt time.Time
}

// Group coalesces calls by key. The zero value is not usable; use NewGroup.
type Group[V any] struct {
	window time.Duration

	mu    sync.Mutex
	calls map[string]*call[V]
	now   func() time.Time // for testing; defaults to time.Now
}

// NewGroup creates a Group whose settlements are shared with callers arriving
// within window of each other. A zero window still deduplicates calls that
// overlap in flight.
func NewGroup[V any](window time.Duration) *Group[V] {
	return &Group[V]{
		window: window,
		calls:  make(map[string]*call[V]),
		now:    time.Now,
	}
}

// Do invokes fn at most once per coalescing window per key. Concurrent and
// window-sharing callers for the same key receive the same value or the same
// error; calls with different keys are independent and may run concurrently.
func (g *Group[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	g.mu.Lock()
	if c, ok := g.calls[key]; ok && !g.expired(c) {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn(ctx)

	g.mu.Lock()
	c.settledAt = g.now()
	close(c.done)
	if g.window <= 0 {
		delete(g.calls, key)
	} else {
		// Leave the settled call in place; expired entries are replaced by
		// the next caller for the key.
		go g.evictAfter(key, c)
	}
	g.mu.Unlock()

	return c.val, c.err
}

// expired reports whether c has settled and its hold window has passed.
// Must be called with g.mu held.
func (g *Group[V]) expired(c *call[V]) bool {
	select {
	case <-c.done:
	default:
		return false // still in flight
	}
	return g.now().Sub(c.settledAt) >= g.window
}

func (g *Group[V]) evictAfter(key string, c *call[V]) {
	timer := time.NewTimer(g.window)
	defer timer.Stop()
	<-timer.C

	g.mu.Lock()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()
}
