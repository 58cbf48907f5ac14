// Package quote defines the exchange-rate payload cached and refreshed by
// fxpulse, plus the envelope in which it is persisted by the storage tiers.
package quote

import "time"

// Value is a single observation of the tracked exchange rate. A Value is
// immutable once constructed; refreshes replace it wholesale.
type Value struct {
	// Primary is the quoted rate for the tracked pair.
	Primary float64 `json:"primary"`

	// Derived is the secondary rate computed from Primary (typically the
	// inverse quote).
	Derived float64 `json:"derived"`

	// Timestamp is when the rate was fetched from the remote source.
	Timestamp time.Time `json:"timestamp"`

	// Source identifies which upstream produced the rate.
	Source string `json:"source"`
}

// Valid reports whether the value carries a usable rate observation.
func (v Value) Valid() bool {
	return v.Primary > 0 && !v.Timestamp.IsZero()
}

// Record is the persisted form of a Value. It is the only shape written to
// the durable tiers; freshness is never persisted, only recomputed on read.
type Record struct {
	Value Value `json:"value"`

	// WrittenAt is the UTC millisecond timestamp of the tier write.
	WrittenAt int64 `json:"written_at"`
}

// NewRecord wraps value in a Record stamped with the current write time.
func NewRecord(value Value, now time.Time) Record {
	return Record{Value: value, WrittenAt: now.UTC().UnixMilli()}
}
