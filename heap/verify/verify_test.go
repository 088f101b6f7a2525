package verify_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/heap"
	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/verify"
	"github.com/joshuapare/memkit/internal/format"
)

func newAllocator(t *testing.T) *alloc.Allocator {
	t.Helper()
	a, err := alloc.New(heap.New(heap.NewSliceGrower(0)), nil)
	require.NoError(t, err)
	return a
}

// typesOf collects the distinct violation types for containment asserts.
func typesOf(errs []verify.ValidationError) map[string]bool {
	set := make(map[string]bool, len(errs))
	for i := range errs {
		set[errs[i].Type] = true
	}
	return set
}

func Test_Check_CleanHeapHasNoViolations(t *testing.T) {
	a := newAllocator(t)

	refs := make([]alloc.Ref, 0, 8)
	for _, n := range []int32{16, 100, 48, 512, 24} {
		ref, _, err := a.Alloc(n)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	require.NoError(t, a.Free(refs[1]))
	require.NoError(t, a.Free(refs[3]))
	_, _, err := a.Realloc(refs[0], 200)
	require.NoError(t, err)

	require.Empty(t, verify.Check(a))
}

func Test_Check_DetectsAllocBitFlip(t *testing.T) {
	a := newAllocator(t)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	barrier, _, err := a.Alloc(64)
	require.NoError(t, err)
	_ = barrier
	require.NoError(t, a.Free(ref))

	// Flip the freed block's alloc bit without touching the bins: the
	// index now lists a block the heap walk considers allocated.
	data := a.Bytes()
	hdr := int(ref) - format.HeaderSize
	format.PutU32(data, hdr, format.ReadU32(data, hdr)|format.AllocBit)

	errs := verify.Check(a)
	require.NotEmpty(t, errs)
	types := typesOf(errs)
	require.True(t, types["FreeList"], "bin holding an allocated block must be reported")
	require.True(t, types["CrossCheck"], "free-set mismatch must be reported")
	require.Greater(t, len(errs), 1, "one run must surface every violation, not the first")
}

func Test_Check_DetectsFooterCorruption(t *testing.T) {
	a := newAllocator(t)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	barrier, _, err := a.Alloc(64)
	require.NoError(t, err)
	_ = barrier
	require.NoError(t, a.Free(ref))

	data := a.Bytes()
	sz := int32(72) // block size of a 64-byte request
	ftr := int(ref) + int(sz) - format.DWordSize
	format.PutU32(data, ftr, format.Pack(1024, false))

	types := typesOf(verify.Check(a))
	require.True(t, types["FooterMirror"])
}

func Test_Check_DetectsStalePrevAllocBit(t *testing.T) {
	a := newAllocator(t)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	next, _, err := a.Alloc(64)
	require.NoError(t, err)

	// Pretend the predecessor of next is free.
	data := a.Bytes()
	format.SetPrevAlloc(data, int(next)-format.HeaderSize, false)
	_ = ref

	types := typesOf(verify.Check(a))
	require.True(t, types["PrevAllocBit"])
}

func Test_Check_DetectsBrokenSentinels(t *testing.T) {
	a := newAllocator(t)

	data := a.Bytes()
	format.PutU32(data, a.HeapSize()-format.EpilogueSize, format.Pack(64, false))

	errs := verify.Check(a)
	require.NotEmpty(t, errs)
	require.True(t, typesOf(errs)["Sentinel"])
}

func Test_Check_DetectsSeveredFreeListLink(t *testing.T) {
	a := newAllocator(t)

	// Two isolated free blocks in the same class, then cut the first's
	// succ link so the second becomes unreachable from its bin.
	var frees []alloc.Ref
	for i := 0; i < 2; i++ {
		ref, _, err := a.Alloc(40)
		require.NoError(t, err)
		_, _, err = a.Alloc(40) // barrier
		require.NoError(t, err)
		frees = append(frees, ref)
	}
	require.NoError(t, a.Free(frees[0]))
	require.NoError(t, a.Free(frees[1]))

	data := a.Bytes()
	first := a.BinHead(binOf(a, 48))
	format.PutU32(data, int(first)+format.LinkSize, uint32(format.NilRef))

	errs := verify.Check(a)
	types := typesOf(errs)
	require.True(t, types["CrossCheck"], "orphaned free block must fail the set cross-check")
}

// binOf finds the bin index whose range covers size.
func binOf(a *alloc.Allocator, size int32) int {
	for i := 0; i < a.BinCount(); i++ {
		lo, hi := a.BinRange(i)
		if size >= lo && size <= hi {
			return i
		}
	}
	return a.BinCount() - 1
}

func Test_Report_RendersEveryViolation(t *testing.T) {
	errs := []verify.ValidationError{
		{Type: "FreeList", Message: "bad link", Offset: 0x40},
		{Type: "CrossCheck", Message: "orphan block", Offset: -1},
	}

	var buf bytes.Buffer
	verify.Report(&buf, "after-free", errs)

	out := buf.String()
	require.Equal(t, 2, strings.Count(out, "[after-free]"))
	require.Contains(t, out, "FreeList at offset 0x40: bad link")
	require.Contains(t, out, "CrossCheck: orphan block")

	buf.Reset()
	verify.Report(&buf, "quiet", nil)
	require.Empty(t, buf.String(), "no violations must produce no output")
}
