package triplebuffer

import "sync/atomic"

// Writer is the producer side of a triple buffer. It must be used from a
// single goroutine and must not be copied.
type Writer[T any] struct {
	_      noCopy
	core   *core[T]
	guards atomic.Int32 // live write guards, 0 or 1
}

// WriteGuard gives exclusive mutable access to the current write slot.
// Release publishes the slot. A guard must not be used after Release.
type WriteGuard[T any] struct {
	w    *Writer[T]
	slot *T
}

// Write returns a guard over the current write slot. The slot still holds
// whatever it held when it last left the writer's hands, not necessarily
// the latest published value.
//
// Write panics if the previous guard has not been released.
func (w *Writer[T]) Write() *WriteGuard[T] {
	st := w.core.state()
	if !w.guards.CompareAndSwap(0, 1) {
		panic("triplebuffer: writer already has an active write guard")
	}
	w.core.writes.Add(1)

	return &WriteGuard[T]{w: w, slot: &w.core.slots[st.write].val}
}

// Update runs fn on the write slot and publishes it.
func (w *Writer[T]) Update(fn func(v *T)) {
	g := w.Write()
	defer g.Release()
	fn(g.Value())
}

// Stats returns the buffer's activity counters.
func (w *Writer[T]) Stats() Stats {
	return w.core.stats()
}

// Value returns the write slot.
func (g *WriteGuard[T]) Value() *T {
	return g.slot
}

// Release gives the slot up and publishes it to the reader.
// Releasing a guard twice panics.
func (g *WriteGuard[T]) Release() {
	if g.slot == nil {
		panic("triplebuffer: write guard released twice")
	}
	g.slot = nil
	g.w.guards.Add(-1)
	g.w.core.publish()
}
