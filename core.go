package triplebuffer

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

const (
	// DefaultPublishRetries is the number of extra publish attempts made
	// after a lost CAS before the publish is dropped.
	DefaultPublishRetries = 1

	// MaxPublishRetries bounds WithPublishRetries so publish stays wait-free.
	MaxPublishRetries = 8
)

// cell is one of the three payload slots.
type cell[T any] struct {
	val T
	_   cpu.CacheLinePad
}

// core is the storage shared by one Writer, one Reader and their guards.
// The packed state word is the only synchronization point: a slot is
// touched by the writer only while it is the write slot and by the reader
// only while it is the read slot.
type core[T any] struct {
	_     cpu.CacheLinePad
	word  atomic.Uint64 // packed state, see state.go
	_     cpu.CacheLinePad
	slots [3]cell[T]

	publishRetries int

	// writer side counters
	writes         atomic.Uint64
	published      atomic.Uint64
	publishRetried atomic.Uint64
	publishDropped atomic.Uint64
	_              cpu.CacheLinePad

	// reader side counters
	reads       atomic.Uint64
	advanced    atomic.Uint64
	advanceLost atomic.Uint64
	_           cpu.CacheLinePad
}

// contend, when set, runs between the load and the CAS of every state
// transition attempt. Only tests set it.
var contend func()

func newCore[T any](fill func() T, cfg config) *core[T] {
	c := &core[T]{publishRetries: cfg.publishRetries}
	for i := range c.slots {
		c.slots[i].val = fill()
	}
	c.word.Store(initialState.encode())
	return c
}

// state returns the current roles.
func (c *core[T]) state() state {
	return decodeState(c.word.Load())
}

// publish makes the write slot the new ready slot and hands the previous
// ready slot back to the writer. It gives up after 1+publishRetries lost
// CAS attempts and returns the last observed state unchanged; the data in
// the write slot then stays unpublished and is overwritten by the next write.
func (c *core[T]) publish() state {
	var last state
	for attempt := 0; attempt <= c.publishRetries; attempt++ {
		cur := c.word.Load()
		last = decodeState(cur)
		next := last.published()
		if contend != nil {
			contend()
		}
		if c.word.CompareAndSwap(cur, next.encode()) {
			c.published.Add(1)
			return next
		}
		c.publishRetried.Add(1)
	}
	c.publishDropped.Add(1)
	return last
}

// tryAdvance moves the reader to the ready slot if it holds an unread
// publish. It makes a single CAS attempt: losing to a concurrent publish
// leaves the reader on its current slot, which is still valid.
func (c *core[T]) tryAdvance() state {
	cur := c.word.Load()
	st := decodeState(cur)
	if !st.dirty {
		return st
	}
	next := st.advanced()
	if contend != nil {
		contend()
	}
	if c.word.CompareAndSwap(cur, next.encode()) {
		c.advanced.Add(1)
		return next
	}
	c.advanceLost.Add(1)
	return st
}

func (c *core[T]) stats() Stats {
	return Stats{
		Writes:         c.writes.Load(),
		Published:      c.published.Load(),
		PublishRetries: c.publishRetried.Load(),
		PublishDropped: c.publishDropped.Load(),
		Reads:          c.reads.Load(),
		Advanced:       c.advanced.Load(),
		AdvanceLost:    c.advanceLost.Load(),
	}
}

// Stats is a snapshot of the buffer's activity counters.
type Stats struct {
	Writes         uint64 // write guards issued
	Published      uint64 // successful publishes
	PublishRetries uint64 // publish CAS attempts lost to the reader
	PublishDropped uint64 // publishes abandoned after the last retry
	Reads          uint64 // read guards issued
	Advanced       uint64 // reads that moved to fresher data
	AdvanceLost    uint64 // advances lost to a concurrent publish
}
