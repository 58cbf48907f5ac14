// Package policy decides whether, and how urgently, a cache read warrants a
// refresh of the tracked rate.
package policy

import (
	"github.com/fxpulse/fxpulse/freshness"
	"github.com/fxpulse/fxpulse/store"
)

// Reason explains a refresh decision.
type Reason string

const (
	NoCache        Reason = "no_cache"
	CacheFresh     Reason = "cache_fresh"
	CacheStale     Reason = "cache_stale"
	CacheVeryStale Reason = "cache_very_stale"
	CacheExpired   Reason = "cache_expired"
)

// Decision is the outcome of inspecting a cache read. It is a pure value;
// nothing is persisted.
type Decision struct {
	// Refresh reports whether the remote source should be consulted.
	Refresh bool

	// Immediate distinguishes a blocking refresh from a background one. A
	// stale-but-usable entry refreshes in the background; missing, very
	// stale, or expired entries refresh before answering.
	Immediate bool

	Reason Reason
}

// Decide classifies a cache read into a refresh decision. The offline flag
// never changes the classification: the decision reports the refresh need
// truthfully, and the caller suppresses the actual network attempt while
// offline, serving the cached value regardless of tier.
func Decide(entry *store.Entry, offline bool) Decision {
	if entry == nil {
		return Decision{Refresh: true, Immediate: true, Reason: NoCache}
	}
	switch entry.Freshness {
	case freshness.Fresh:
		return Decision{Refresh: false, Immediate: false, Reason: CacheFresh}
	case freshness.Stale:
		return Decision{Refresh: true, Immediate: false, Reason: CacheStale}
	case freshness.VeryStale:
		return Decision{Refresh: true, Immediate: true, Reason: CacheVeryStale}
	default:
		return Decision{Refresh: true, Immediate: true, Reason: CacheExpired}
	}
}
