package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/format"
)

func Test_Alloc_ZeroSizeReturnsNilRef(t *testing.T) {
	a := newTestAllocator(t, nil)

	ref, payload, err := a.Alloc(0)
	require.NoError(t, err)
	require.Equal(t, NilRef, ref)
	require.Nil(t, payload)
	requireValidHeap(t, a, "after zero alloc")
}

func Test_Alloc_NegativeSizeRejected(t *testing.T) {
	a := newTestAllocator(t, nil)

	_, _, err := a.Alloc(-1)
	require.ErrorIs(t, err, ErrNeedSmall)
}

func Test_Alloc_AlignmentAndUsableSize(t *testing.T) {
	a := newTestAllocator(t, nil)

	for _, n := range []int32{1, 7, 8, 12, 13, 100, 255, 4096} {
		ref, payload, err := a.Alloc(n)
		require.NoError(t, err, "Alloc(%d)", n)
		require.NotEqual(t, NilRef, ref)
		require.Zero(t, int32(ref)%format.DWordSize, "Alloc(%d) payload not aligned", n)
		require.GreaterOrEqual(t, int32(len(payload)), n, "Alloc(%d) usable size", n)

		usable, err := a.UsableSize(ref)
		require.NoError(t, err)
		require.Equal(t, int32(len(payload)), usable)
		requireValidHeap(t, a, "after alloc")
	}
}

func Test_Alloc_OutOfMemory(t *testing.T) {
	// Room for the prefix, the initial chunk, and nothing more.
	a := newLimitedAllocator(t, format.HeapPrefixSize+256, nil)

	// First allocation fits the initial chunk.
	_, _, err := a.Alloc(64)
	require.NoError(t, err)

	// This one cannot fit and growth is refused.
	ref, payload, err := a.Alloc(4096)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, NilRef, ref)
	require.Nil(t, payload)

	// A failed growth must leave the heap consistent and usable.
	requireValidHeap(t, a, "after refused growth")
	_, _, err = a.Alloc(32)
	require.NoError(t, err)
}

func Test_Alloc_ImmediateReuseReturnsSameAddress(t *testing.T) {
	a := newTestAllocator(t, nil)

	ref, _, err := a.Alloc(48)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	again, _, err := a.Alloc(48)
	require.NoError(t, err)
	require.Equal(t, ref, again, "free(alloc(n)) then alloc(n) must reuse the block")
	requireValidHeap(t, a, "after reuse")
}

func Test_Alloc_SplitLeavesRemainderInMatchingBin(t *testing.T) {
	a := newTestAllocator(t, nil)

	refA, _, err := a.Alloc(32)
	require.NoError(t, err)
	_, _, err = a.Alloc(32)
	require.NoError(t, err)
	require.NoError(t, a.Free(refA))

	refC, _, err := a.Alloc(16)
	require.NoError(t, err)
	require.Equal(t, refA, refC, "the 16-byte block must reuse the freed block's prefix")
	requireValidHeap(t, a, "after split")

	// The split remainder is a minimum-size free block sitting in the bin
	// that covers 16-byte blocks.
	data := a.Bytes()
	rp := int32(refC) + blockSize(data, int32(refC))
	require.False(t, blockAllocated(data, rp))
	require.Equal(t, int32(format.MinBlockSize), blockSize(data, rp))

	bin := a.binFor(format.MinBlockSize)
	found := false
	for bp := a.BinHead(bin); bp != format.NilRef; bp = linkSucc(data, bp) {
		if bp == rp {
			found = true
		}
	}
	require.True(t, found, "remainder not reachable via its size class")
}

func Test_Alloc_ExactReuseKeepsHighWaterMark(t *testing.T) {
	a := newTestAllocator(t, nil)

	refA, _, err := a.Alloc(100)
	require.NoError(t, err)
	mark := a.HeapSize()

	require.NoError(t, a.Free(refA))
	refD, _, err := a.Alloc(100)
	require.NoError(t, err)

	require.Equal(t, refA, refD)
	require.Equal(t, mark, a.HeapSize(), "reuse must not grow the heap")
}

func Test_Alloc_PayloadsDoNotOverlap(t *testing.T) {
	a := newTestAllocator(t, nil)

	ref1, p1, err := a.Alloc(200)
	require.NoError(t, err)
	for i := range p1 {
		p1[i] = 0xAA
	}

	_, p2, err := a.Alloc(400)
	require.NoError(t, err)

	// Re-derive p1: the second allocation may have grown (and moved) the
	// slice-backed arena.
	p1, err = a.Payload(ref1)
	require.NoError(t, err)
	for i := range p1 {
		require.Equal(t, byte(0xAA), p1[i], "payload 1 corrupted at %d", i)
	}

	for i := range p2 {
		p2[i] = 0xBB
	}
	p1, err = a.Payload(ref1)
	require.NoError(t, err)
	for i := range p1 {
		require.Equal(t, byte(0xAA), p1[i], "payload 1 corrupted by neighbor write at %d", i)
	}
	requireValidHeap(t, a, "after pattern writes")
}

func Test_Free_BadRefRejected(t *testing.T) {
	a := newTestAllocator(t, nil)

	require.ErrorIs(t, a.Free(Ref(3)), ErrBadRef, "unaligned ref")
	require.ErrorIs(t, a.Free(Ref(1<<30)), ErrBadRef, "out of range ref")

	ref, _, err := a.Alloc(32)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))
	require.ErrorIs(t, a.Free(ref), ErrBadRef, "double free of a coalesced block")
}

func Test_New_RejectsPopulatedHeap(t *testing.T) {
	a := newTestAllocator(t, nil)

	_, err := New(a.h, nil)
	require.ErrorIs(t, err, ErrHeapState)
}

func Test_Stats_TrackCoreCounters(t *testing.T) {
	a := newTestAllocator(t, nil)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	s := a.Stats()
	require.Equal(t, 1, s.AllocCalls)
	require.Equal(t, 1, s.FreeCalls)
	require.Positive(t, s.GrowCalls)
	require.Positive(t, s.BytesAllocated)
	require.Equal(t, s.BytesAllocated, s.BytesFreed)
}
