// Package ring provides a bounded single-producer, single-consumer queue.
package ring

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Per-slot sequence numbers after Dmitry Vyukov's bounded queue:
// https://www.1024cores.net/home/lock-free-algorithms/queues/bounded-mpmc-queue
// With one producer and one consumer no CAS is needed on either side.

type slot[T any] struct {
	seq atomic.Uint64 // pos when free for the producer, pos+1 when holding a value
	val T
}

// SPSC is a bounded, non-blocking queue for exactly one producer goroutine
// and one consumer goroutine.
type SPSC[T any] struct {
	_        cpu.CacheLinePad
	mask     uint64
	capacity uint64
	slots    []slot[T]
	_        cpu.CacheLinePad
	enqueue  uint64 // producer only
	_        cpu.CacheLinePad
	dequeue  uint64 // consumer only
	_        cpu.CacheLinePad
}

// NewSPSC creates a queue. Capacity must be a power of two (1<<k).
func NewSPSC[T any](capacity uint64) *SPSC[T] {
	if capacity == 0 || (capacity&(capacity-1)) != 0 {
		panic("ring: capacity must be power of 2 and > 0")
	}

	slots := make([]slot[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		slots[i].seq.Store(i)
	}

	return &SPSC[T]{
		mask:     capacity - 1,
		capacity: capacity,
		slots:    slots,
	}
}

// Enqueue appends v. Returns false if the queue is full.
// Must be called from the producer goroutine only.
func (q *SPSC[T]) Enqueue(v T) bool {
	pos := q.enqueue
	s := &q.slots[pos&q.mask]

	if s.seq.Load() != pos {
		// consumer has not freed this slot yet
		return false
	}
	s.val = v
	q.enqueue = pos + 1
	s.seq.Store(pos + 1)
	return true
}

// Dequeue pops the oldest value. Returns (zero, false) if the queue is empty.
// Must be called from the consumer goroutine only.
func (q *SPSC[T]) Dequeue() (T, bool) {
	var zero T
	pos := q.dequeue
	s := &q.slots[pos&q.mask]

	if s.seq.Load() != pos+1 {
		return zero, false
	}
	v := s.val
	s.val = zero
	q.dequeue = pos + 1
	// the slot comes round again at pos+capacity
	s.seq.Store(pos + q.capacity)
	return v, true
}

// Capacity returns the fixed queue capacity.
func (q *SPSC[T]) Capacity() uint64 {
	return q.capacity
}
