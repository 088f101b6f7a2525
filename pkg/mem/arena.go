package mem

import (
	"fmt"
	"math"

	"github.com/joshuapare/memkit/heap"
	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/verify"
)

// Arena is one managed memory region. It owns a growable heap and the
// allocator placing blocks in it. Not safe for concurrent use.
type Arena struct {
	h *heap.Heap
	a *alloc.Allocator
}

// New creates a slice-backed arena that grows without bound. A nil config
// selects the balanced default policy.
//
// Example:
//
//	ar, err := mem.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ar.Close()
func New(cfg *Config) (*Arena, error) {
	return NewWithGrower(heap.NewSliceGrower(0), cfg)
}

// NewBounded creates a slice-backed arena capped at limit bytes. Growth past
// the cap fails the triggering allocation with ErrNoSpace.
func NewBounded(limit int, cfg *Config) (*Arena, error) {
	return NewWithGrower(heap.NewSliceGrower(limit), cfg)
}

// NewMapped creates an arena on an anonymous memory mapping of the given
// capacity. Mapped arenas never relocate, so payload slices stay valid
// across growth. Close releases the mapping.
func NewMapped(capacity int, cfg *Config) (*Arena, error) {
	g, err := heap.NewMmapGrower(capacity)
	if err != nil {
		return nil, err
	}
	return NewWithGrower(g, cfg)
}

// NewWithGrower creates an arena over a caller-supplied memory source.
func NewWithGrower(g heap.Grower, cfg *Config) (*Arena, error) {
	h := heap.New(g)
	a, err := alloc.New(h, cfg)
	if err != nil {
		return nil, err
	}
	return &Arena{h: h, a: a}, nil
}

// Alloc allocates a block with at least n usable bytes. n == 0 returns
// NilRef with no error.
func (ar *Arena) Alloc(n int) (Ref, []byte, error) {
	if n > math.MaxInt32 {
		return NilRef, nil, fmt.Errorf("%w: %d", ErrSizeOverflow, n)
	}
	return ar.a.Alloc(int32(n))
}

// Free returns a block to the arena.
func (ar *Arena) Free(ref Ref) error {
	return ar.a.Free(ref)
}

// Realloc resizes a block, in place when possible. A nil ref behaves as
// Alloc; n == 0 behaves as Free.
func (ar *Arena) Realloc(ref Ref, n int) (Ref, []byte, error) {
	if n > math.MaxInt32 {
		return NilRef, nil, fmt.Errorf("%w: %d", ErrSizeOverflow, n)
	}
	return ar.a.Realloc(ref, int32(n))
}

// Calloc allocates count*size bytes and zeroes the payload. The product is
// checked for overflow before anything is allocated.
func (ar *Arena) Calloc(count, size int) (Ref, []byte, error) {
	if count > math.MaxInt32 || size > math.MaxInt32 {
		return NilRef, nil, fmt.Errorf("%w: %d*%d", ErrSizeOverflow, count, size)
	}
	return ar.a.Calloc(int32(count), int32(size))
}

// Payload re-derives the current payload slice for a live reference. Needed
// after growth on slice-backed arenas, where old slices go stale.
func (ar *Arena) Payload(ref Ref) ([]byte, error) {
	return ar.a.Payload(ref)
}

// UsableSize returns the payload capacity of a live block, which may exceed
// the requested size due to alignment and splitting thresholds.
func (ar *Arena) UsableSize(ref Ref) (int, error) {
	n, err := ar.a.UsableSize(ref)
	return int(n), err
}

// Size returns the current arena size in bytes, sentinels included.
func (ar *Arena) Size() int {
	return ar.a.HeapSize()
}

// Stats returns a copy of the arena's allocation counters.
func (ar *Arena) Stats() Stats {
	return ar.a.Stats()
}

// Check validates the whole arena and returns every violation found. An
// empty result means the heap is consistent.
func (ar *Arena) Check() []ValidationError {
	return verify.Check(ar.a)
}

// Raw exposes the underlying allocator for low-level inspection.
func (ar *Arena) Raw() *alloc.Allocator {
	return ar.a
}

// Close releases OS resources held by the arena's memory source. Safe on
// slice-backed arenas, required on mapped ones.
func (ar *Arena) Close() error {
	return ar.h.Close()
}
