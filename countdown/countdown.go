// Package countdown implements the delay and sound timers that run beside
// the emulation loop: two 8-bit registers counted down at a fixed rate by a
// ticker goroutine, with sound on/off edges reported to the consumer.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/aradilov/triplebuffer/internal/ring"
)

const (
	// DefaultRate is the tick frequency in Hz.
	DefaultRate = 60

	defaultEdgeCapacity = 16
)

// ErrRunning is returned by Run when the timers are already running.
var ErrRunning = errors.New("countdown: timers already running")

// Edge is a change of the sound state produced by a tick.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeOn        // sound timer became non-zero
	EdgeOff       // sound timer reached zero
)

func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeOn:
		return "on"
	case EdgeOff:
		return "off"
	default:
		return fmt.Sprintf("Edge(%d)", uint8(e))
	}
}

// Timers holds the delay and sound registers. Delay and Sound may be set
// from any goroutine; Tick and Run are the single producer of edges and
// NextEdge is their single consumer.
type Timers struct {
	Delay Register
	Sound Register

	clock    clock.Clock
	period   time.Duration
	sounding atomic.Bool
	running  atomic.Bool
	edges    *ring.SPSC[Edge]
}

// Option configures Timers.
type Option func(*config)

type config struct {
	clock        clock.Clock
	rate         int
	edgeCapacity uint64
}

// WithClock sets the clock driving Run. Tests pass clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

// WithRate sets the tick frequency in Hz.
func WithRate(hz int) Option {
	return func(cfg *config) {
		cfg.rate = hz
	}
}

// WithEdgeCapacity sets how many unconsumed edges are buffered before new
// ones are dropped. Must be a power of two.
func WithEdgeCapacity(n uint64) Option {
	return func(cfg *config) {
		cfg.edgeCapacity = n
	}
}

// New creates stopped timers with both registers at zero.
func New(opts ...Option) *Timers {
	cfg := config{
		clock:        clock.New(),
		rate:         DefaultRate,
		edgeCapacity: defaultEdgeCapacity,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.rate <= 0 {
		panic(fmt.Sprintf("countdown: rate must be > 0, got %d", cfg.rate))
	}

	return &Timers{
		clock:  cfg.clock,
		period: time.Second / time.Duration(cfg.rate),
		edges:  ring.NewSPSC[Edge](cfg.edgeCapacity),
	}
}

// Period returns the time between ticks.
func (t *Timers) Period() time.Duration {
	return t.period
}

// Tick counts both registers down once and returns the resulting sound
// edge, which is also queued for NextEdge. If the queue is full the edge is
// dropped; Sounding always reflects the latest state.
// Must not be called concurrently with itself or Run.
func (t *Timers) Tick() Edge {
	t.Delay.Decrement()
	t.Sound.Decrement()

	edge := EdgeNone
	st := t.Sound.Load()
	if st > 0 && !t.sounding.Load() {
		t.sounding.Store(true)
		edge = EdgeOn
	} else if st == 0 && t.sounding.Load() {
		t.sounding.Store(false)
		edge = EdgeOff
	}

	if edge != EdgeNone {
		t.edges.Enqueue(edge)
	}
	return edge
}

// Sounding reports whether the sound timer was non-zero at the last tick.
func (t *Timers) Sounding() bool {
	return t.sounding.Load()
}

// NextEdge pops the oldest unconsumed edge without blocking.
// Must be called from a single goroutine.
func (t *Timers) NextEdge() (Edge, bool) {
	return t.edges.Dequeue()
}

// Run ticks at the configured rate until ctx is done and returns ctx.Err().
// Only one Run may be active; a concurrent call returns ErrRunning.
func (t *Timers) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer t.running.Store(false)

	ticker := t.clock.Ticker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Tick()
		}
	}
}
