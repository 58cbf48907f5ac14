// Package store reads and writes the cached rate across three storage tiers
// with independent failure modes: an in-process memory slot, a durable local
// store, and a durable synced store. Tier outages degrade reads and writes
// gracefully; they never make the value inaccessible while any tier holds a
// copy.
package store

import (
	"context"
	"time"

	"github.com/fxpulse/fxpulse/freshness"
	"github.com/fxpulse/fxpulse/quote"
)

// TierID identifies which tier a cache entry was read from.
type TierID string

const (
	TierMemory TierID = "memory"
	TierLocal  TierID = "local"
	TierSynced TierID = "synced"
)

// Tier is the capability a storage backend must provide. Any method may fail;
// the tiered store treats failure as "tier unavailable", never as fatal.
type Tier interface {
	// ID reports which tier this is.
	ID() TierID

	// Get retrieves the raw record bytes for key. The boolean indicates a
	// hit; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores raw record bytes under key. A zero TTL means the entry has
	// no automatic expiration.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error

	// Remove deletes the entry for key. Removing a missing key is not an
	// error.
	Remove(ctx context.Context, key string) error
}

// Entry is the result of a tiered read. It is constructed fresh on every read
// and never persisted: Freshness is always recomputed from the value's stored
// timestamp.
type Entry struct {
	Value     quote.Value
	Freshness freshness.Tier
	Origin    TierID

	// FromMemory marks entries served by the in-process tier, the last
	// resort when the durable tiers are unreachable.
	FromMemory bool
}
