package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/format"
)

// setupFreePair allocates victim blocks separated by barrier allocations so
// freeing the victims cannot coalesce, then frees them in the given order.
// Returns the victim refs in allocation (address) order.
func setupFreePair(t *testing.T, a *Allocator, sizes []int32, freeOrder []int) []Ref {
	t.Helper()
	refs := make([]Ref, len(sizes))
	for i, n := range sizes {
		ref, _, err := a.Alloc(n)
		require.NoError(t, err)
		refs[i] = ref
		_, _, err = a.Alloc(20) // barrier
		require.NoError(t, err)
	}
	for _, i := range freeOrder {
		require.NoError(t, a.Free(refs[i]))
	}
	return refs
}

func Test_Insert_LIFOPushesAtHead(t *testing.T) {
	cfg := ConfigFirstFit
	a := newTestAllocator(t, &cfg)

	// Three blocks in the 33..64 class, freed in address order.
	refs := setupFreePair(t, a, []int32{36, 44, 52}, []int{0, 1, 2})
	data := a.Bytes()

	bin := a.binFor(40)
	require.Equal(t, int32(refs[2]), a.BinHead(bin), "last freed block must be the list head")
	require.Equal(t, int32(refs[1]), linkSucc(data, a.BinHead(bin)))
	require.Equal(t, int32(refs[0]), linkSucc(data, int32(refs[1])))
	requireValidHeap(t, a, "after LIFO inserts")
}

func Test_Insert_AddressOrderedKeepsListSorted(t *testing.T) {
	cfg := ConfigBestFit
	a := newTestAllocator(t, &cfg)

	// Free out of address order; the list must still come out sorted.
	setupFreePair(t, a, []int32{36, 44, 52}, []int{1, 2, 0})
	data := a.Bytes()

	bin := a.binFor(40)
	prev := int32(0)
	for bp := a.BinHead(bin); bp != format.NilRef; bp = linkSucc(data, bp) {
		require.Greater(t, bp, prev, "address-ordered list out of order")
		prev = bp
	}
	require.Equal(t, a.BinTail(bin), prev)
	requireValidHeap(t, a, "after ordered inserts")
}

func Test_Remove_EndRemovalUpdatesHeadAndTail(t *testing.T) {
	cfg := ConfigFirstFit
	a := newTestAllocator(t, &cfg)

	refs := setupFreePair(t, a, []int32{36, 36}, []int{0, 1})
	bin := a.binFor(40)
	require.Equal(t, int32(refs[1]), a.BinHead(bin))
	require.Equal(t, int32(refs[0]), a.BinTail(bin))
	require.Equal(t, 2, a.BinLen(bin))

	// First-fit takes the head; the survivor becomes both head and tail.
	got, _, err := a.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, refs[1], got)
	require.Equal(t, int32(refs[0]), a.BinHead(bin))
	require.Equal(t, int32(refs[0]), a.BinTail(bin))
	require.Equal(t, 1, a.BinLen(bin))

	got, _, err = a.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, refs[0], got)
	require.Zero(t, a.BinHead(bin))
	require.Zero(t, a.BinTail(bin))
	require.Zero(t, a.BinLen(bin))
	requireValidHeap(t, a, "after emptying bin")
}

func Test_FindFit_BestFitChoosesTightestBlock(t *testing.T) {
	cfg := ConfigBestFit
	cfg.FitSlack = 0 // exact per-bin best fit
	a := newTestAllocator(t, &cfg)

	// Two candidates in the same class: a loose 64 at the lower address
	// and an exact 40 behind it. Best fit must skip the loose one.
	refs := setupFreePair(t, a, []int32{60, 36}, []int{0, 1})

	got, _, err := a.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, refs[1], got, "best fit must pick the tighter block")
	requireValidHeap(t, a, "after best-fit alloc")
}

func Test_FindFit_FirstFitTakesFirstSufficient(t *testing.T) {
	cfg := ConfigFirstFit
	a := newTestAllocator(t, &cfg)

	// LIFO order puts the loose 64 block at the head; first fit takes it
	// even though a tighter candidate exists further down.
	refs := setupFreePair(t, a, []int32{36, 60}, []int{0, 1})

	got, _, err := a.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, refs[1], got, "first fit must take the head block")
	requireValidHeap(t, a, "after first-fit alloc")
}

func Test_FindFit_SlackAcceptsTightEnoughCandidate(t *testing.T) {
	cfg := ConfigBestFit
	cfg.Insert = InsertLIFO
	cfg.FitSlack = 64
	a := newTestAllocator(t, &cfg)

	// Head candidate leaves a 24-byte remainder, under the slack: the
	// scan must stop there instead of walking on to the exact fit.
	refs := setupFreePair(t, a, []int32{36, 60}, []int{0, 1})

	got, _, err := a.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, refs[1], got, "tight-enough head must end the scan")
}

func Test_FindFit_EscalatesToLargerBins(t *testing.T) {
	a := newTestAllocator(t, nil)

	// Only free space is the initial chunk's large remainder; a small
	// request must find it in a higher bin rather than growing the heap.
	_, _, err := a.Alloc(32)
	require.NoError(t, err)
	grows := a.Stats().GrowCalls

	_, _, err = a.Alloc(24)
	require.NoError(t, err)
	require.Equal(t, grows, a.Stats().GrowCalls, "fit search must escalate bins before growing")
}
