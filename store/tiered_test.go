package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fxpulse/fxpulse/freshness"
	"github.com/fxpulse/fxpulse/quote"
)

// fakeTier is an in-memory Tier whose operations can be forced to fail.
type fakeTier struct {
	id   TierID
	data map[string][]byte

	failGet    bool
	failSet    bool
	failRemove bool
	sets       int
}

func newFakeTier(id TierID) *fakeTier {
	return &fakeTier{id: id, data: make(map[string][]byte)}
}

func (f *fakeTier) ID() TierID { return f.id }

func (f *fakeTier) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("tier down")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeTier) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	if f.failSet {
		return errors.New("tier down")
	}
	f.sets++
	f.data[key] = val
	return nil
}

func (f *fakeTier) Remove(_ context.Context, key string) error {
	if f.failRemove {
		return errors.New("tier down")
	}
	delete(f.data, key)
	return nil
}

func (f *fakeTier) put(t *testing.T, key string, rate float64, age time.Duration) {
	t.Helper()
	v := quote.Value{
		Primary:   rate,
		Derived:   1 / rate,
		Timestamp: time.Now().Add(-age),
		Source:    "test",
	}
	raw, err := json.Marshal(quote.NewRecord(v, time.Now()))
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	f.data[key] = raw
}

func newTestTiered(tiers ...Tier) *Tiered {
	return NewTiered(freshness.NewEngine(freshness.DefaultConfig()), zerolog.Nop(), tiers...)
}

const key = "rate:USD/EUR"

func TestRead_MostRecentWinsAcrossTiers(t *testing.T) {
	local := newFakeTier(TierLocal)
	synced := newFakeTier(TierSynced)

	// The synced tier is consulted later in source order but holds the older
	// value; the fresher local entry must win.
	local.put(t, key, 1.10, time.Minute)
	synced.put(t, key, 1.05, time.Hour)

	ts := newTestTiered(local, synced)
	entry := ts.Read(t.Context(), key)
	if entry == nil {
		t.Fatal("expected an entry")
	}
	if entry.Origin != TierLocal {
		t.Fatalf("expected the local value to win, got %v", entry.Origin)
	}
	if entry.Value.Primary != 1.10 {
		t.Fatalf("expected rate 1.10, got %v", entry.Value.Primary)
	}
	if entry.Freshness != freshness.Fresh {
		t.Fatalf("expected Fresh for a 1-minute-old entry, got %v", entry.Freshness)
	}
}

func TestRead_NewerLaterTierWins(t *testing.T) {
	local := newFakeTier(TierLocal)
	synced := newFakeTier(TierSynced)

	local.put(t, key, 1.05, time.Hour)
	synced.put(t, key, 1.10, time.Minute)

	entry := newTestTiered(local, synced).Read(t.Context(), key)
	if entry == nil || entry.Origin != TierSynced {
		t.Fatalf("expected the synced value to win, got %+v", entry)
	}
}

func TestRead_FailingTierIsSkipped(t *testing.T) {
	local := newFakeTier(TierLocal)
	synced := newFakeTier(TierSynced)

	local.failGet = true
	synced.put(t, key, 1.07, time.Minute)

	entry := newTestTiered(local, synced).Read(t.Context(), key)
	if entry == nil {
		t.Fatal("expected the healthy tier to serve the read")
	}
	if entry.Origin != TierSynced {
		t.Fatalf("expected synced origin, got %v", entry.Origin)
	}
}

func TestRead_CorruptRecordIsSkipped(t *testing.T) {
	local := newFakeTier(TierLocal)
	synced := newFakeTier(TierSynced)

	local.data[key] = []byte("{definitely not json")
	synced.put(t, key, 1.07, time.Minute)

	entry := newTestTiered(local, synced).Read(t.Context(), key)
	if entry == nil || entry.Origin != TierSynced {
		t.Fatalf("expected the intact record to win, got %+v", entry)
	}
}

func TestRead_EmptyTiersReturnNil(t *testing.T) {
	entry := newTestTiered(newFakeTier(TierLocal), newFakeTier(TierSynced)).Read(t.Context(), key)
	if entry != nil {
		t.Fatalf("expected nil, got %+v", entry)
	}
}

func TestRead_MemoryServesWhenDurableTiersFail(t *testing.T) {
	memory, err := NewMemory(16)
	if err != nil {
		t.Fatalf("new memory tier: %v", err)
	}
	local := newFakeTier(TierLocal)
	synced := newFakeTier(TierSynced)

	ts := newTestTiered(memory, local, synced)
	value := quote.Value{Primary: 1.08, Derived: 0.93, Timestamp: time.Now(), Source: "test"}
	ts.Write(t.Context(), key, value, 0)

	local.failGet = true
	synced.failGet = true

	entry := ts.Read(t.Context(), key)
	if entry == nil {
		t.Fatal("expected the warmed memory tier to answer")
	}
	if !entry.FromMemory {
		t.Fatal("expected FromMemory to be set")
	}
	if entry.Value.Primary != 1.08 {
		t.Fatalf("expected rate 1.08, got %v", entry.Value.Primary)
	}
}

func TestWrite_BestEffortPerTier(t *testing.T) {
	a := newFakeTier(TierMemory)
	b := newFakeTier(TierLocal)
	c := newFakeTier(TierSynced)
	b.failSet = true

	ts := newTestTiered(a, b, c)
	value := quote.Value{Primary: 1.2, Derived: 0.83, Timestamp: time.Now(), Source: "test"}
	ts.Write(t.Context(), key, value, time.Minute)

	if a.sets != 1 || c.sets != 1 {
		t.Fatalf("expected writes to the healthy tiers, got memory=%d synced=%d", a.sets, c.sets)
	}
	if _, ok := b.data[key]; ok {
		t.Fatal("failing tier should hold nothing")
	}
}

func TestClearAll_ContinuesPastFailures(t *testing.T) {
	a := newFakeTier(TierMemory)
	b := newFakeTier(TierLocal)
	c := newFakeTier(TierSynced)
	a.put(t, key, 1.1, time.Minute)
	b.put(t, key, 1.1, time.Minute)
	c.put(t, key, 1.1, time.Minute)
	b.failRemove = true

	ts := newTestTiered(a, b, c)
	ts.ClearAll(t.Context(), key)

	if _, ok := a.data[key]; ok {
		t.Fatal("memory tier not cleared")
	}
	if _, ok := c.data[key]; ok {
		t.Fatal("synced tier not cleared")
	}
}

func TestNewTiered_SkipsNilTiers(t *testing.T) {
	local := newFakeTier(TierLocal)
	local.put(t, key, 1.3, time.Minute)

	ts := newTestTiered(nil, local, nil)
	if entry := ts.Read(t.Context(), key); entry == nil {
		t.Fatal("expected the non-nil tier to be consulted")
	}
}
