package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/heap"
	"github.com/joshuapare/memkit/heap/verify"
	"github.com/joshuapare/memkit/internal/format"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestAllocator builds an allocator on an unlimited slice-backed heap.
func newTestAllocator(t testing.TB, cfg *Config) *Allocator {
	t.Helper()
	a, err := New(heap.New(heap.NewSliceGrower(0)), cfg)
	require.NoError(t, err)
	return a
}

// newLimitedAllocator builds an allocator whose heap refuses to grow past
// limit bytes, for deterministic out-of-memory scenarios.
func newLimitedAllocator(t testing.TB, limit int, cfg *Config) *Allocator {
	t.Helper()
	a, err := New(heap.New(heap.NewSliceGrower(limit)), cfg)
	require.NoError(t, err)
	return a
}

// requireValidHeap asserts the validator finds zero violations.
func requireValidHeap(t testing.TB, a *Allocator, tag string) {
	t.Helper()
	errs := verify.Check(a)
	for i := range errs {
		t.Logf("[%s] %s", tag, errs[i].Error())
	}
	require.Empty(t, errs, "%s: heap invariants violated", tag)
}

// blockInfo is one entry of a linear heap walk.
type blockInfo struct {
	bp        int32
	size      int32
	allocated bool
}

// walkHeap linearly decodes every block between the sentinels.
func walkHeap(t testing.TB, a *Allocator) []blockInfo {
	t.Helper()
	data := a.Bytes()
	end := a.HeapSize() - format.EpilogueSize

	var blocks []blockInfo
	bp := int32(format.FirstPayload)
	for int(bp)-format.HeaderSize < end {
		word := format.ReadU32(data, int(bp)-format.HeaderSize)
		sz := format.SizeOf(word)
		require.GreaterOrEqual(t, sz, int32(format.MinBlockSize), "walk hit illegal size at %d", bp)
		blocks = append(blocks, blockInfo{bp: bp, size: sz, allocated: format.Allocated(word)})
		bp += sz
	}
	return blocks
}

// freeBlocks returns the free entries of a linear heap walk.
func freeBlocks(t testing.TB, a *Allocator) []blockInfo {
	t.Helper()
	var free []blockInfo
	for _, b := range walkHeap(t, a) {
		if !b.allocated {
			free = append(free, b)
		}
	}
	return free
}
