// Package flow provides the caller-side traffic-shaping primitives composed
// around refresh triggers: debounce, throttle, and batching. Each constructor
// returns a handle bundling the callable with its control operations instead
// of mutating the wrapped function.
package flow

import (
	"sync"
	"time"
)

// DebounceOptions tunes Debounce.
type DebounceOptions struct {
	// Leading additionally invokes fn immediately on the first call of a
	// burst; the trailing invocation still fires after the quiet period.
	Leading bool
}

// Debounced delays invocation of fn until a quiet period has elapsed. Each
// call within the window resets the timer and supersedes prior arguments.
type Debounced[T any] struct {
	fn   func(T)
	wait time.Duration
	opts DebounceOptions

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	arg     T
}

// Debounce wraps fn so that it runs only after wait of silence. fn is invoked
// from a timer goroutine on the trailing edge.
func Debounce[T any](fn func(T), wait time.Duration, opts DebounceOptions) *Debounced[T] {
	return &Debounced[T]{fn: fn, wait: wait, opts: opts}
}

// Call records the latest arguments and (re)starts the quiet-period timer.
// With Leading set, the first call of a burst invokes fn immediately as well.
func (d *Debounced[T]) Call(arg T) {
	d.mu.Lock()

	leading := d.opts.Leading && d.timer == nil && !d.pending
	d.arg = arg
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.fire)
	d.mu.Unlock()

	if leading {
		fn, a := d.fn, arg
		fn(a)
	}
}

// Cancel discards any pending invocation without side effects.
func (d *Debounced[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}

// Flush invokes fn immediately with the latest pending arguments, if any, and
// clears the pending state.
func (d *Debounced[T]) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	arg := d.arg
	d.mu.Unlock()

	d.fn(arg)
}

func (d *Debounced[T]) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	arg := d.arg
	d.mu.Unlock()

	d.fn(arg)
}
