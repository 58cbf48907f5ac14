package freshness

import (
	"testing"
	"time"
)

func engineAt(now time.Time) *Engine {
	e := NewEngine(DefaultConfig())
	e.now = func() time.Time { return now }
	return e
}

func TestClassify_Boundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := engineAt(now)

	cases := []struct {
		age  time.Duration
		want Tier
	}{
		{0, Fresh},
		{4 * time.Minute, Fresh},
		{5 * time.Minute, Stale},
		{59 * time.Minute, Stale},
		{time.Hour, VeryStale},
		{23 * time.Hour, VeryStale},
		{24 * time.Hour, Expired},
		{400 * 24 * time.Hour, Expired},
	}
	for _, tc := range cases {
		if got := e.Classify(now.Add(-tc.age)); got != tc.want {
			t.Fatalf("age %v: expected %v, got %v", tc.age, tc.want, got)
		}
	}
}

func TestClassify_MonotoneInAge(t *testing.T) {
	now := time.Now()
	e := engineAt(now)

	prev := Fresh
	for age := time.Duration(0); age <= 25*time.Hour; age += time.Minute {
		got := e.Classify(now.Add(-age))
		if got < prev {
			t.Fatalf("freshness improved as age grew: %v at age %v after %v", got, age, prev)
		}
		prev = got
	}
}

func TestClassify_ZeroTimestampIsExpired(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if got := e.Classify(time.Time{}); got != Expired {
		t.Fatalf("expected Expired for zero timestamp, got %v", got)
	}
}

func TestTTL_ScalesInverselyWithVolatility(t *testing.T) {
	e := NewEngine(DefaultConfig())
	base := DefaultConfig().FreshWindow

	cases := []struct {
		vol  float64
		want time.Duration
	}{
		{0, 2 * base},
		{0.5, base + base/2},
		{1, base},
	}
	for _, tc := range cases {
		if got := e.TTL(tc.vol); got != tc.want {
			t.Fatalf("volatility %v: expected %v, got %v", tc.vol, tc.want, got)
		}
	}
}

func TestTTL_ClampsOutOfRange(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if e.TTL(-3) != e.TTL(0) {
		t.Fatal("expected negative volatility to clamp to 0")
	}
	if e.TTL(7) != e.TTL(1) {
		t.Fatal("expected oversized volatility to clamp to 1")
	}
}

func TestNewEngine_FillsZeroBoundaries(t *testing.T) {
	e := NewEngine(Config{FreshWindow: time.Minute})
	now := time.Now()
	e.now = func() time.Time { return now }

	if got := e.Classify(now.Add(-30 * time.Second)); got != Fresh {
		t.Fatalf("expected Fresh under the custom window, got %v", got)
	}
	if got := e.Classify(now.Add(-30 * time.Minute)); got != Stale {
		t.Fatalf("expected the default stale boundary to apply, got %v", got)
	}
}
