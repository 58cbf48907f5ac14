package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/fxpulse/fxpulse/freshness"
	"github.com/fxpulse/fxpulse/quote"
)

// Tiered arbitrates reads and writes across the ordered tiers, fastest and
// least durable first. A tier that fails is skipped, not fatal: reads select
// the most recent value among the tiers that answered, and writes are
// best-effort per tier, never all-or-nothing.
type Tiered struct {
	tiers []Tier
	fresh *freshness.Engine
	log   zerolog.Logger
}

// NewTiered creates a Tiered store over the given tiers, consulted in the
// order supplied. Nil tiers are skipped so callers can wire a subset.
func NewTiered(fresh *freshness.Engine, log zerolog.Logger, tiers ...Tier) *Tiered {
	kept := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &Tiered{tiers: kept, fresh: fresh, log: log}
}

// Read consults every reachable tier and returns the entry holding the most
// recent value, annotated with its freshness tier and origin. A freshly
// written local entry therefore outranks a stale synced one even though the
// synced tier is consulted. Returns nil when every tier is unreachable or
// empty.
func (t *Tiered) Read(ctx context.Context, key string) *Entry {
	var (
		best       *quote.Record
		bestOrigin TierID
	)

	for _, tier := range t.tiers {
		raw, ok, err := tier.Get(ctx, key)
		if err != nil {
			tierErrors.WithLabelValues(string(tier.ID()), "get").Inc()
			t.log.Warn().Err(err).Str("tier", string(tier.ID())).Msg("tier read failed, skipping")
			continue
		}
		if !ok {
			continue
		}

		var rec quote.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			tierErrors.WithLabelValues(string(tier.ID()), "decode").Inc()
			t.log.Warn().Err(err).Str("tier", string(tier.ID())).Msg("corrupt tier record, skipping")
			continue
		}
		if !rec.Value.Valid() {
			continue
		}

		tierHits.WithLabelValues(string(tier.ID())).Inc()
		if best == nil || rec.Value.Timestamp.After(best.Value.Timestamp) {
			r := rec
			best = &r
			bestOrigin = tier.ID()
		}
	}

	if best == nil {
		readMisses.Inc()
		return nil
	}

	readWins.WithLabelValues(string(bestOrigin)).Inc()
	return &Entry{
		Value:      best.Value,
		Freshness:  t.fresh.Classify(best.Value.Timestamp),
		Origin:     bestOrigin,
		FromMemory: bestOrigin == TierMemory,
	}
}

// Write stores value in every reachable tier independently. A failure on one
// tier is logged and ignored; it neither blocks the other tiers nor surfaces
// to the caller. All tier writes are issued before Write returns.
func (t *Tiered) Write(ctx context.Context, key string, value quote.Value, ttl time.Duration) {
	raw, err := json.Marshal(quote.NewRecord(value, time.Now()))
	if err != nil {
		// A quote.Record always marshals; guard anyway.
		t.log.Error().Err(err).Msg("encode cache record")
		return
	}

	for _, tier := range t.tiers {
		if err := tier.Set(ctx, key, raw, ttl); err != nil {
			tierErrors.WithLabelValues(string(tier.ID()), "set").Inc()
			t.log.Warn().Err(err).Str("tier", string(tier.ID())).Msg("tier write failed")
		}
	}
}

// ClearAll removes key from every tier. One tier's failure does not prevent
// clearing the others.
func (t *Tiered) ClearAll(ctx context.Context, key string) {
	for _, tier := range t.tiers {
		if err := tier.Remove(ctx, key); err != nil {
			tierErrors.WithLabelValues(string(tier.ID()), "remove").Inc()
			t.log.Warn().Err(err).Str("tier", string(tier.ID())).Msg("tier clear failed")
		}
	}
}
