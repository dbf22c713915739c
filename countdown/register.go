package countdown

import "sync/atomic"

// Register is an 8-bit countdown register shared between the goroutine
// that sets it and the ticker that counts it down. The zero value reads 0.
type Register struct {
	v atomic.Uint32
}

// Set loads the register with v.
func (r *Register) Set(v uint8) {
	r.v.Store(uint32(v))
}

// Load returns the current value.
func (r *Register) Load() uint8 {
	return uint8(r.v.Load())
}

// Decrement counts the register down by one unless it is already zero.
// It reports whether the value changed.
func (r *Register) Decrement() bool {
	for {
		cur := r.v.Load()
		if cur == 0 {
			return false
		}
		// only a concurrent Set can make this fail
		if r.v.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}
