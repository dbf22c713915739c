// Package triplebuffer implements a wait-free single-producer,
// single-consumer triple buffer.
//
// A producer repeatedly fills a snapshot of some state and publishes it; a
// consumer running at its own pace always sees the most recently published
// snapshot. Three slots rotate between the roles "being read", "ready" and
// "being written", and the roles are swapped through a single atomic word,
// so neither side ever blocks or copies the payload. Intermediate snapshots
// the consumer was too slow to see are skipped.
//
//	w, r := triplebuffer.New(Machine{})
//
//	// producer goroutine
//	g := w.Write()
//	g.Value().Step()
//	g.Release() // publish
//
//	// consumer goroutine
//	r.View(func(m *Machine) { render(m) })
//
// Exactly one goroutine may use the Writer and exactly one goroutine may use
// the Reader. Every operation completes in a bounded number of steps: a
// publish that keeps losing its CAS to the reader is dropped after
// DefaultPublishRetries (see WithPublishRetries) instead of spinning.
package triplebuffer

// Cloner is implemented by payloads that need a deep copy to give each of
// the three slots independent storage, e.g. types holding slices or maps.
type Cloner[T any] interface {
	Clone() T
}

// New creates a triple buffer whose three slots start as copies of initial
// and returns its only Writer and its only Reader. If T implements Cloner
// each slot receives initial.Clone(), otherwise a plain value copy.
func New[T any](initial T, opts ...Option) (*Writer[T], *Reader[T]) {
	return NewFunc(func() T { return clone(initial) }, opts...)
}

// NewFunc is like New but builds every slot by calling fn.
func NewFunc[T any](fn func() T, opts ...Option) (*Writer[T], *Reader[T]) {
	if fn == nil {
		panic("triplebuffer: nil slot constructor")
	}
	c := newCore(fn, applyOptions(opts))
	return &Writer[T]{core: c}, &Reader[T]{core: c}
}

func clone[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}

// noCopy may be embedded into structs which must not be copied after first
// use. go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
