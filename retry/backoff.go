// Package retry provides a generic retry executor with exponential backoff
// and jitter for the remote-fetch path. Whether an error is worth retrying is
// decided by a predicate over its classified kind, never by string matching.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// backoff returns the delay for the given attempt (0-indexed) according to
// exponential back-off with optional jitter. The returned duration is capped
// at opts.MaxBackoff when a cap is set.
func backoff(opts Options, attempt int) time.Duration {
	delay := float64(opts.InitialBackoff) * math.Pow(2, float64(attempt))
	if cap := float64(opts.MaxBackoff); cap > 0 && delay > cap {
		delay = cap
	}
	if opts.Jitter > 0 {
		// jitter adds up to ±Jitter fraction of the delay.
		delay += delay * opts.Jitter * (rand.Float64()*2 - 1)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
