package heap

import (
	"fmt"
	"io"

	"github.com/joshuapare/memkit/internal/format"
)

// Heap is the single growable arena an allocator manages. It wraps a Grower
// with offset bookkeeping: every extension returns the offset at which the
// fresh region starts, and that offset is always the previous arena size
// because growth is contiguous.
type Heap struct {
	g Grower
}

// New wraps a Grower. The heap starts empty; the allocator's init installs
// the prologue and epilogue with the first extension.
func New(g Grower) *Heap {
	return &Heap{g: g}
}

// Bytes returns the current full arena. Re-fetch after every Extend; the
// slice-backed grower moves memory on growth.
func (h *Heap) Bytes() []byte {
	return h.g.Bytes()
}

// Size returns the current arena size in bytes (the exclusive high bound).
func (h *Heap) Size() int {
	return len(h.g.Bytes())
}

// Extend grows the arena by n zeroed bytes and returns the offset of the new
// region's start. n must be positive and 8-byte aligned. A refusal from the
// underlying grower surfaces as ErrExhausted; the arena is unchanged.
func (h *Heap) Extend(n int) (int32, error) {
	if n <= 0 || n&format.AlignmentMask != 0 {
		return format.NilRef, fmt.Errorf("%w: %d", ErrBadExtend, n)
	}
	start := h.Size()
	if int64(start)+int64(n) > format.MaxHeapSize {
		return format.NilRef, fmt.Errorf("%w: %d+%d exceeds 2GB offset space", ErrExhausted, start, n)
	}
	if err := h.g.Extend(n); err != nil {
		return format.NilRef, err
	}
	return int32(start), nil
}

// Close releases the underlying grower if it holds OS resources.
func (h *Heap) Close() error {
	if c, ok := h.g.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
