package flow

import (
	"sync"
	"testing"
	"time"
)

// recorder collects invocations for the traffic-shaping tests.
type recorder[T any] struct {
	mu    sync.Mutex
	calls []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestDebounce_OnlyLastCallOfBurstFires(t *testing.T) {
	var rec recorder[int]
	d := Debounce(rec.record, 30*time.Millisecond, DebounceOptions{})

	d.Call(1)
	d.Call(2)
	d.Call(3)

	time.Sleep(100 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0] != 3 {
		t.Fatalf("expected one trailing call with the latest args, got %v", calls)
	}
}

func TestDebounce_NewCallResetsTimer(t *testing.T) {
	var rec recorder[int]
	d := Debounce(rec.record, 50*time.Millisecond, DebounceOptions{})

	d.Call(1)
	time.Sleep(30 * time.Millisecond)
	d.Call(2) // resets the quiet period
	time.Sleep(30 * time.Millisecond)

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("expected no invocation before the quiet period elapses, got %v", calls)
	}

	time.Sleep(50 * time.Millisecond)
	calls := rec.snapshot()
	if len(calls) != 1 || calls[0] != 2 {
		t.Fatalf("expected the superseding args, got %v", calls)
	}
}

func TestDebounce_LeadingFiresImmediately(t *testing.T) {
	var rec recorder[int]
	d := Debounce(rec.record, 30*time.Millisecond, DebounceOptions{Leading: true})

	d.Call(1)
	if calls := rec.snapshot(); len(calls) != 1 || calls[0] != 1 {
		t.Fatalf("expected an immediate leading call, got %v", calls)
	}

	d.Call(2)
	time.Sleep(100 * time.Millisecond)
	calls := rec.snapshot()
	if len(calls) != 2 || calls[1] != 2 {
		t.Fatalf("expected the trailing call as well, got %v", calls)
	}
}

func TestDebounce_CancelDiscardsPending(t *testing.T) {
	var rec recorder[int]
	d := Debounce(rec.record, 30*time.Millisecond, DebounceOptions{})

	d.Call(1)
	d.Cancel()
	time.Sleep(80 * time.Millisecond)

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("expected cancel to discard the pending call, got %v", calls)
	}
}

func TestDebounce_FlushInvokesImmediately(t *testing.T) {
	var rec recorder[int]
	d := Debounce(rec.record, time.Hour, DebounceOptions{})

	d.Call(9)
	d.Flush()

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0] != 9 {
		t.Fatalf("expected flush to fire with the pending args, got %v", calls)
	}

	// Nothing pending anymore; a second flush is a no-op.
	d.Flush()
	if calls := rec.snapshot(); len(calls) != 1 {
		t.Fatalf("expected flush on empty state to do nothing, got %v", calls)
	}
}
