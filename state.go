package triplebuffer

// Packed layout of the shared state word. Each field gets a nibble:
// bits 0-3 read, 4-7 ready, 8-11 write, 12-15 dirty.
const (
	readShift  = 0
	readyShift = 4
	writeShift = 8
	dirtyShift = 12

	nibble = 0xF
)

// state describes which slot currently plays which role.
// read, ready and write always partition {0, 1, 2}.
type state struct {
	read  int
	ready int
	write int
	dirty bool // ready holds a publish the reader has not seen yet
}

var initialState = state{read: 0, ready: 1, write: 2}

// decodeState unpacks a state word. Bits above the dirty nibble are ignored.
func decodeState(word uint64) state {
	return state{
		read:  int((word >> readShift) & nibble),
		ready: int((word >> readyShift) & nibble),
		write: int((word >> writeShift) & nibble),
		dirty: (word>>dirtyShift)&nibble == 1,
	}
}

func (s state) encode() uint64 {
	var word uint64
	word |= uint64(s.read) << readShift
	word |= uint64(s.ready) << readyShift
	word |= uint64(s.write) << writeShift
	if s.dirty {
		word |= 1 << dirtyShift
	}
	return word
}

// published returns the state after the writer hands its slot over as ready.
func (s state) published() state {
	return state{read: s.read, ready: s.write, write: s.ready, dirty: true}
}

// advanced returns the state after the reader takes the ready slot.
func (s state) advanced() state {
	return state{read: s.ready, ready: s.read, write: s.write, dirty: false}
}

// valid reports whether the three roles name three distinct slots.
func (s state) valid() bool {
	if s.read < 0 || s.read > 2 || s.ready < 0 || s.ready > 2 || s.write < 0 || s.write > 2 {
		return false
	}
	return s.read != s.ready && s.read != s.write && s.ready != s.write
}
