// Package breaker guards the remote rate source with a circuit breaker so a
// hard upstream outage stops burning retries and timeouts on every lookup.
//
// States:
//   - Closed: fetches flow normally; infrastructure failures are counted.
//   - Open: fetches are refused; after ProbeAfter the breaker half-opens.
//   - HalfOpen: a limited number of probe fetches go through; success closes
//     the breaker, any failure reopens it.
//
// Only Network, Timeout and Api failures count against the breaker: a parsing
// failure says nothing about upstream availability and a storage failure is
// not the upstream's fault at all.
package breaker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fxpulse/fxpulse/errclass"
)

// State is the current breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	default:
		return "half-open"
	}
}

// Config holds the breaker parameters.
type Config struct {
	// TripThreshold is the number of consecutive counted failures in Closed
	// state before the breaker opens.
	TripThreshold int

	// ProbeAfter is how long the breaker stays Open before allowing probes.
	ProbeAfter time.Duration

	// ProbeSuccesses is the number of consecutive successful probes required
	// in HalfOpen state to close the breaker again.
	ProbeSuccesses int
}

// DefaultConfig returns the parameters used by the service when none are
// supplied.
func DefaultConfig() Config {
	return Config{
		TripThreshold:  5,
		ProbeAfter:     30 * time.Second,
		ProbeSuccesses: 2,
	}
}

// Breaker is a kind-aware circuit breaker. All methods are safe for
// concurrent use.
type Breaker struct {
	mu sync.Mutex

	cfg Config
	log zerolog.Logger

	state     State
	failures  int // consecutive counted failures in Closed
	successes int // consecutive successes in HalfOpen
	openedAt  time.Time
	nowFunc   func() time.Time // for testing; defaults to time.Now
}

// New creates a Breaker with the given configuration.
func New(cfg Config, log zerolog.Logger) *Breaker {
	return &Breaker{
		cfg:     cfg,
		log:     log,
		state:   Closed,
		nowFunc: time.Now,
	}
}

// State returns the current state. In Open state it may auto-transition to
// HalfOpen once ProbeAfter has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()
	return b.state
}

// Allow reports whether a fetch may proceed: always in Closed, in HalfOpen
// while probe slots remain, never in Open before ProbeAfter elapses.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		return b.successes < b.cfg.ProbeSuccesses
	default:
		return false
	}
}

// OnSuccess records a successful fetch.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.successes++
		if b.successes >= b.cfg.ProbeSuccesses {
			b.state = Closed
			b.failures = 0
			b.successes = 0
			b.log.Info().Msg("breaker closed after successful probes")
		}
	}
}

// OnFailure records a failed fetch of the given kind. Kinds that carry no
// signal about upstream availability are ignored.
func (b *Breaker) OnFailure(kind errclass.Kind) {
	if !counts(kind) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.TripThreshold {
			b.trip()
		}
	case HalfOpen:
		b.trip()
	}
}

func counts(kind errclass.Kind) bool {
	switch kind {
	case errclass.Network, errclass.Timeout, errclass.Api:
		return true
	default:
		return false
	}
}

// maybeHalfOpen transitions from Open to HalfOpen when ProbeAfter has
// elapsed. Must be called with b.mu held.
func (b *Breaker) maybeHalfOpen() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.ProbeAfter {
		b.state = HalfOpen
		b.successes = 0
		b.log.Info().Msg("breaker half-open, probing upstream")
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.successes = 0
	b.log.Warn().Int("failures", b.failures).Msg("breaker opened")
}

func (b *Breaker) now() time.Time {
	if b.nowFunc != nil {
		return b.nowFunc()
	}
	return time.Now()
}
