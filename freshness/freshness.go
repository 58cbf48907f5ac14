// Package freshness classifies the age of a cached rate into discrete tiers
// and computes the volatility-adaptive TTL used for tier writes.
package freshness

import "time"

// Tier is the discrete freshness classification of a cached value, ordered
// from most to least recent.
type Tier int

const (
	Fresh Tier = iota
	Stale
	VeryStale
	Expired
)

// String returns the lowercase name of the tier.
func (t Tier) String() string {
	switch t {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case VeryStale:
		return "very_stale"
	default:
		return "expired"
	}
}

// Config holds the ascending age boundaries. An age below FreshWindow is
// Fresh, below StaleWindow Stale, below VeryStaleWindow VeryStale, and
// Expired beyond that. FreshWindow is also the base window B for [Engine.TTL].
type Config struct {
	FreshWindow     time.Duration
	StaleWindow     time.Duration
	VeryStaleWindow time.Duration
}

// DefaultConfig returns the boundaries used when none are supplied.
func DefaultConfig() Config {
	return Config{
		FreshWindow:     5 * time.Minute,
		StaleWindow:     time.Hour,
		VeryStaleWindow: 24 * time.Hour,
	}
}

// Engine classifies ages and computes TTLs against a fixed Config.
type Engine struct {
	cfg Config
	now func() time.Time // for testing; defaults to time.Now
}

// NewEngine creates an Engine. Zero boundaries fall back to the defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.FreshWindow <= 0 {
		cfg.FreshWindow = def.FreshWindow
	}
	if cfg.StaleWindow <= 0 {
		cfg.StaleWindow = def.StaleWindow
	}
	if cfg.VeryStaleWindow <= 0 {
		cfg.VeryStaleWindow = def.VeryStaleWindow
	}
	return &Engine{cfg: cfg, now: time.Now}
}

// Classify maps a value timestamp to its freshness tier. A zero timestamp
// (nothing known about the value's age) is Expired.
func (e *Engine) Classify(ts time.Time) Tier {
	if ts.IsZero() {
		return Expired
	}
	age := e.now().Sub(ts)
	switch {
	case age < e.cfg.FreshWindow:
		return Fresh
	case age < e.cfg.StaleWindow:
		return Stale
	case age < e.cfg.VeryStaleWindow:
		return VeryStale
	default:
		return Expired
	}
}

// TTL computes the cache TTL for a value with the given volatility score.
// TTL scales inversely with volatility around the fresh window B:
// 2×B at volatility 0 (slow-moving, cache longer) down to 1×B at volatility 1
// (fast-moving, refresh sooner). Out-of-range scores are clamped, never
// rejected, and the zero score is the conservative default.
func (e *Engine) TTL(volatility float64) time.Duration {
	v := volatility
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return time.Duration(float64(e.cfg.FreshWindow) * (2.0 - v))
}
