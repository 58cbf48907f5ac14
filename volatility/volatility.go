// Package volatility scores how fast the tracked rate has been moving.
//
// Raw clock age is a poor proxy for trust: a fast-moving price needs a short
// TTL even while the cache is technically fresh. The score produced here is
// the adapter between observed rate dynamics and the freshness engine's TTL.
package volatility

import (
	"math"
	"time"

	"github.com/fxpulse/fxpulse/quote"
)

// Config tunes the estimator.
type Config struct {
	// Sensitivity scales normalized change into the [0,1] score. The default
	// of 10 puts a 5 %-per-hour move at 0.5 and saturates at 10 % per hour.
	Sensitivity float64

	// MinInterval is the smallest elapsed time between two observations that
	// yields a meaningful rate of change; anything shorter scores 0 to guard
	// against divide-by-near-zero noise.
	MinInterval time.Duration
}

// DefaultConfig returns the calibration described above.
func DefaultConfig() Config {
	return Config{
		Sensitivity: 10,
		MinInterval: time.Minute,
	}
}

// Estimator computes volatility scores against a fixed Config.
type Estimator struct {
	cfg Config
}

// NewEstimator creates an Estimator. Zero fields fall back to the defaults.
func NewEstimator(cfg Config) *Estimator {
	def := DefaultConfig()
	if cfg.Sensitivity <= 0 {
		cfg.Sensitivity = def.Sensitivity
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	return &Estimator{cfg: cfg}
}

// Score returns a volatility score in [0,1] for the transition from oldV to
// newV. It returns 0 when either observation is missing or malformed, or when
// the elapsed time between them is below the minimum measurable interval.
// Otherwise the absolute percentage change of the primary rate is normalized
// by elapsed hours, scaled by Sensitivity, and clamped to [0,1].
func (e *Estimator) Score(newV, oldV *quote.Value) float64 {
	if newV == nil || oldV == nil || !newV.Valid() || !oldV.Valid() {
		return 0
	}

	elapsed := newV.Timestamp.Sub(oldV.Timestamp)
	if elapsed < e.cfg.MinInterval {
		return 0
	}

	change := math.Abs(newV.Primary-oldV.Primary) / math.Abs(oldV.Primary)
	perHour := change / elapsed.Hours()

	score := perHour * e.cfg.Sensitivity
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
