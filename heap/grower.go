package heap

import "errors"

var (
	// ErrExhausted indicates the grower refused to extend the arena.
	ErrExhausted = errors.New("heap: growth refused")

	// ErrBadExtend indicates a non-positive or unaligned extension request.
	ErrBadExtend = errors.New("heap: bad extend size")
)

// Grower supplies contiguous memory on demand. Growth is monotonic: the
// arena never shrinks and every grant is contiguous with all prior grants.
//
// Bytes returns the current full arena. Implementations that move memory on
// growth (SliceGrower) invalidate previously returned slices; callers must
// re-fetch after every Extend.
type Grower interface {
	Extend(n int) error
	Bytes() []byte
}

// SliceGrower is an append-backed Grower. A positive Limit caps the arena
// size, turning further extensions into ErrExhausted; zero means unlimited.
type SliceGrower struct {
	buf   []byte
	limit int
}

// NewSliceGrower returns a slice-backed grower. limit <= 0 means no limit
// beyond the global int32 offset cap enforced by Heap.
func NewSliceGrower(limit int) *SliceGrower {
	return &SliceGrower{limit: limit}
}

// Extend appends n zero bytes to the arena.
func (g *SliceGrower) Extend(n int) error {
	if n <= 0 {
		return ErrBadExtend
	}
	if g.limit > 0 && len(g.buf)+n > g.limit {
		return ErrExhausted
	}
	g.buf = append(g.buf, make([]byte, n)...)
	return nil
}

// Bytes returns the current arena. Invalidated by the next Extend.
func (g *SliceGrower) Bytes() []byte {
	return g.buf
}
