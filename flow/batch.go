package flow

import (
	"sync"
	"time"
)

// Batcher accumulates pushed items and hands them to a processor either when
// the wait interval elapses since the first unflushed item or immediately
// once maxSize items have accumulated, whichever comes first.
type Batcher[T any] struct {
	process func([]T)
	wait    time.Duration
	maxSize int

	mu    sync.Mutex
	timer *time.Timer
	items []T
}

// Batch creates a Batcher around process. A maxSize of 0 disables the size
// trigger; batches then flush on the timer alone.
func Batch[T any](process func([]T), wait time.Duration, maxSize int) *Batcher[T] {
	return &Batcher[T]{process: process, wait: wait, maxSize: maxSize}
}

// Push adds an item to the current batch. The first item of a batch starts
// the flush timer; reaching maxSize flushes immediately and cancels it.
func (b *Batcher[T]) Push(item T) {
	b.mu.Lock()
	b.items = append(b.items, item)
	if b.maxSize > 0 && len(b.items) >= b.maxSize {
		items := b.drain()
		b.mu.Unlock()
		b.process(items)
		return
	}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.wait, b.flushTimer)
	}
	b.mu.Unlock()
}

// Flush processes the accumulated items immediately, if any.
func (b *Batcher[T]) Flush() {
	b.mu.Lock()
	if len(b.items) == 0 {
		b.mu.Unlock()
		return
	}
	items := b.drain()
	b.mu.Unlock()
	b.process(items)
}

// Cancel discards the accumulated items without processing them.
func (b *Batcher[T]) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drain()
}

// drain clears the batch and stops the timer. Must be called with b.mu held.
func (b *Batcher[T]) drain() []T {
	items := b.items
	b.items = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	return items
}

func (b *Batcher[T]) flushTimer() {
	b.mu.Lock()
	if len(b.items) == 0 {
		b.timer = nil
		b.mu.Unlock()
		return
	}
	items := b.drain()
	b.mu.Unlock()
	b.process(items)
}
