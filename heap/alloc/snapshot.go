package alloc

import (
	"math"

	"github.com/joshuapare/memkit/internal/format"
)

// Read-only inspection surface. heap/verify consumes these to cross-check
// the arena against the free-list index without reaching into internals.

// Bytes returns the current full arena. Read-only by convention.
func (a *Allocator) Bytes() []byte {
	return a.h.Bytes()
}

// HeapSize returns the current arena size in bytes.
func (a *Allocator) HeapSize() int {
	return a.h.Size()
}

// Base returns the prologue block's payload offset, the low sentinel of
// every heap walk.
func (a *Allocator) Base() int32 {
	return format.ProloguePayload
}

// BinCount returns the number of size classes.
func (a *Allocator) BinCount() int {
	return len(a.lists)
}

// BinRange returns the inclusive block-size range bin i covers. The top
// bin's upper bound is MaxInt32.
func (a *Allocator) BinRange(i int) (lo, hi int32) {
	if i == 0 {
		return format.MinBlockSize, a.bounds[0]
	}
	lo = a.bounds[i-1] + 1
	if a.bounds[i-1] == math.MaxInt32 {
		lo = math.MaxInt32
	}
	return lo, a.bounds[i]
}

// BinHead returns the payload offset of bin i's list head, or 0 when empty.
func (a *Allocator) BinHead(i int) int32 {
	return a.lists[i].head
}

// BinTail returns the payload offset of bin i's list tail, or 0 when empty.
func (a *Allocator) BinTail(i int) int32 {
	return a.lists[i].tail
}

// BinLen returns the tracked element count of bin i.
func (a *Allocator) BinLen(i int) int {
	return a.lists[i].count
}
