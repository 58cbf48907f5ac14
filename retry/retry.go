package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fxpulse/fxpulse/errclass"
)

// Options controls the retry behaviour of [Do].
type Options struct {
	// Retries is the number of additional attempts after the first one, so
	// fn runs at most Retries+1 times. Negative values mean no retries.
	Retries int

	// InitialBackoff is the delay before the first retry. Subsequent retries
	// use exponential back-off: InitialBackoff * 2^attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed back-off delay. Zero means no cap.
	MaxBackoff time.Duration

	// Jitter adds randomness to the delay. A value of 0.2 means ±20 % of
	// the computed delay. Zero disables jitter.
	Jitter float64

	// ShouldRetry gates whether a failed attempt is retried, given the
	// classified error. Nil falls back to [DefaultShouldRetry].
	ShouldRetry func(*errclass.Error) bool

	// Logger records retry attempts. The zero logger is silent.
	Logger zerolog.Logger
}

// DefaultOptions returns the retry configuration used by the service when
// none is supplied.
func DefaultOptions() Options {
	return Options{
		Retries:        2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Jitter:         0.2,
	}
}

// DefaultShouldRetry retries everything except Parsing and Api failures;
// retrying a malformed or rejected response rarely helps.
func DefaultShouldRetry(err *errclass.Error) bool {
	switch err.Kind {
	case errclass.Parsing, errclass.Api:
		return false
	default:
		return true
	}
}

// Do calls fn up to opts.Retries+1 times. Failed attempts are classified and
// passed to opts.ShouldRetry; a false verdict aborts immediately with that
// error. Between attempts an exponential back-off delay (with optional
// jitter) is applied. The context is checked while sleeping; if ctx is done
// the last classified error is returned wrapped by the context error's kind.
// When every attempt fails, the last observed error is returned.
func Do[T any](ctx context.Context, opts Options, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := max(opts.Retries, 0) + 1
	shouldRetry := opts.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = DefaultShouldRetry
	}

	var last *errclass.Error
	for i := range attempts {
		result, err := fn(ctx)
		if err == nil {
			if i > 0 {
				opts.Logger.Debug().Int("attempt", i+1).Msg("succeeded after retry")
			}
			return result, nil
		}
		last = errclass.Wrap(err)

		// Last attempt: return immediately regardless of the verdict.
		if i == attempts-1 {
			break
		}

		if !shouldRetry(last) {
			opts.Logger.Debug().
				Str("kind", string(last.Kind)).
				Int("attempt", i+1).
				Msg("error not retryable")
			return zero, last
		}

		delay := backoff(opts, i)
		opts.Logger.Debug().
			Str("kind", string(last.Kind)).
			Int("attempt", i+1).
			Dur("backoff", delay).
			Msg("retrying after backoff")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, errclass.Wrap(ctx.Err())
		case <-timer.C:
		}
	}

	return zero, last
}
