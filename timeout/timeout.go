// Package timeout races an operation against a deadline, converting a missed
// deadline into a Timeout-classified error.
package timeout

import (
	"context"
	"time"

	"github.com/fxpulse/fxpulse/errclass"
)

type settled[T any] struct {
	val T
	err error
}

// Do runs fn with a context derived from ctx that expires after d. If fn
// settles first, its result is returned as-is. Once the deadline fires the
// guard returns a Timeout-kind error and fn's eventual settlement is
// discarded; fn itself is only signalled through its context, never killed.
// message is used for the timeout error; pass "" for a generic one.
func Do[T any](ctx context.Context, d time.Duration, message string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	// Buffered so the goroutine never leaks waiting on a reader that gave up.
	ch := make(chan settled[T], 1)
	go func() {
		v, err := fn(opCtx)
		ch <- settled[T]{val: v, err: err}
	}()

	select {
	case s := <-ch:
		return s.val, s.err
	case <-opCtx.Done():
		if message == "" {
			message = "operation timed out"
		}
		return zero, errclass.New(message, errclass.Timeout, map[string]any{
			"timeout_ms": d.Milliseconds(),
		})
	}
}
