package store

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is the in-process tier backed by ristretto. It involves no I/O, so
// writes are assumed always to succeed and reads survive any outage of the
// durable tiers.
type Memory struct {
	rc *ristretto.Cache[string, []byte]
}

// NewMemory creates the memory tier. maxCost controls the maximum cost the
// cache can hold (each entry has a cost of 1).
func NewMemory(maxCost int64) (*Memory, error) {
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        maxCost * 10,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{rc: rc}, nil
}

// ID reports the tier identity.
func (m *Memory) ID() TierID { return TierMemory }

// Get retrieves the raw record bytes for key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.rc.Get(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Set stores raw record bytes under key with the given TTL. Wait makes the
// write visible to an immediately following Get.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.rc.SetWithTTL(key, bytes.Clone(val), 1, ttl)
	m.rc.Wait()
	return nil
}

// Remove deletes the entry for key.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.rc.Del(key)
	return nil
}
