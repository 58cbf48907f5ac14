package flow

import (
	"sync"
	"time"
)

// ThrottleOptions tunes Throttle. The zero value disables both edges; use
// DefaultThrottleOptions for the usual leading+trailing behaviour.
type ThrottleOptions struct {
	// Leading invokes fn on the first call of a burst.
	Leading bool

	// Trailing invokes fn once more at the end of the window with the most
	// recent arguments, if any calls arrived during the window.
	Trailing bool
}

// DefaultThrottleOptions enables both the leading and trailing edge.
func DefaultThrottleOptions() ThrottleOptions {
	return ThrottleOptions{Leading: true, Trailing: true}
}

// Throttled invokes fn at most once per wait interval.
type Throttled[T any] struct {
	fn   func(T)
	wait time.Duration
	opts ThrottleOptions

	mu       sync.Mutex
	lastFire time.Time
	trailing *time.Timer
	pending  bool
	arg      T
}

// Throttle wraps fn so that it runs at most once per wait. Trailing-edge
// invocations run from a timer goroutine.
func Throttle[T any](fn func(T), wait time.Duration, opts ThrottleOptions) *Throttled[T] {
	return &Throttled[T]{fn: fn, wait: wait, opts: opts}
}

// Call requests an invocation with arg, respecting the throttle window.
func (t *Throttled[T]) Call(arg T) {
	t.mu.Lock()
	now := time.Now()

	if t.opts.Leading && t.trailing == nil && now.Sub(t.lastFire) >= t.wait {
		t.lastFire = now
		t.mu.Unlock()
		t.fn(arg)
		return
	}

	t.arg = arg
	t.pending = true
	if t.opts.Trailing && t.trailing == nil {
		delay := t.wait - now.Sub(t.lastFire)
		if delay <= 0 || t.lastFire.IsZero() {
			delay = t.wait
		}
		t.trailing = time.AfterFunc(delay, t.fireTrailing)
	}
	t.mu.Unlock()
}

// Cancel discards any pending trailing invocation.
func (t *Throttled[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.trailing != nil {
		t.trailing.Stop()
		t.trailing = nil
	}
	t.pending = false
}

func (t *Throttled[T]) fireTrailing() {
	t.mu.Lock()
	t.trailing = nil
	if !t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.lastFire = time.Now()
	arg := t.arg
	t.mu.Unlock()

	t.fn(arg)
}
