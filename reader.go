package triplebuffer

import "sync/atomic"

// Reader is the consumer side of a triple buffer. It must be used from a
// single goroutine and must not be copied.
type Reader[T any] struct {
	_      noCopy
	core   *core[T]
	guards atomic.Int32 // live read guards
}

// ReadGuard gives shared read-only access to the current read slot. The
// value must not be modified. A guard must not be used after Release.
type ReadGuard[T any] struct {
	r    *Reader[T]
	slot *T
}

// Read returns a guard over the most recently published snapshot.
//
// While any guard from this Reader is alive, further Read calls return
// guards over the same slot and never advance. Only once every guard has
// been released can the next Read move on to newer data, so holding a guard
// indefinitely freezes the reader on one snapshot.
func (r *Reader[T]) Read() *ReadGuard[T] {
	return &ReadGuard[T]{r: r, slot: r.acquire()}
}

// View runs fn on the most recently published snapshot.
func (r *Reader[T]) View(fn func(v *T)) {
	slot := r.acquire()
	defer r.release()
	fn(slot)
}

// Updated reports whether a publish is waiting that the next Read (with no
// guards alive) would advance to.
func (r *Reader[T]) Updated() bool {
	return r.core.state().dirty
}

// Stats returns the buffer's activity counters.
func (r *Reader[T]) Stats() Stats {
	return r.core.stats()
}

func (r *Reader[T]) acquire() *T {
	var st state
	if r.guards.Load() == 0 {
		st = r.core.tryAdvance()
	} else {
		// read is only ever changed by tryAdvance, so this is the
		// slot the live guards are pinned to.
		st = r.core.state()
	}
	r.guards.Add(1)
	r.core.reads.Add(1)
	return &r.core.slots[st.read].val
}

func (r *Reader[T]) release() {
	if r.guards.Add(-1) < 0 {
		panic("triplebuffer: read guard released more than acquired")
	}
}

// Value returns the read slot.
func (g *ReadGuard[T]) Value() *T {
	return g.slot
}

// Release drops the guard. Releasing a guard twice panics.
func (g *ReadGuard[T]) Release() {
	if g.slot == nil {
		panic("triplebuffer: read guard released twice")
	}
	g.slot = nil
	g.r.release()
}
