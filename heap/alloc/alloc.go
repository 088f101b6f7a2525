package alloc

import (
	"fmt"
	"os"

	"github.com/joshuapare/memkit/heap"
	"github.com/joshuapare/memkit/internal/format"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugAlloc = false

// Runtime debug flag for allocation logging - controlled by MEMKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

// Ref is a block reference: the payload's offset from the arena base.
// NilRef (0) is "no block"; the prologue keeps offset 0 unreachable.
type Ref int32

// NilRef is the zero block reference.
const NilRef Ref = format.NilRef

// Allocator implements allocate/free/resize/zero-allocate over one growable
// heap, using segregated free lists with immediate coalescing.
//
//   - Block headers cache the predecessor's allocation state, so allocated
//     blocks carry no footer.
//   - Free-list links are offsets from the arena base, which keeps the
//     minimum block size at 16 bytes.
//   - Coalescing is unconditional and immediate: at every quiescent point no
//     two adjacent blocks are both free.
//
// Not safe for concurrent use; callers serialize externally. Distinct
// Allocator values over distinct heaps are fully independent.
type Allocator struct {
	h      *heap.Heap
	cfg    Config
	bounds []int32
	lists  []freeList
	stats  Stats
}

// New initializes an allocator on an empty heap: installs the prologue and
// epilogue sentinels and requests the initial extension. The sentinels are
// permanently allocated boundary blocks, so successor/predecessor walks
// never read past owned memory.
func New(h *heap.Heap, config *Config) (*Allocator, error) {
	if config == nil {
		config = &DefaultConfig
	}
	cfg := config.normalize()

	if h.Size() != 0 {
		return nil, fmt.Errorf("%w: heap not empty (%d bytes)", ErrHeapState, h.Size())
	}

	a := &Allocator{
		h:      h,
		cfg:    cfg,
		bounds: cfg.binBounds(),
		lists:  make([]freeList, cfg.BinCount),
	}

	if _, err := h.Extend(format.HeapPrefixSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeapState, err)
	}
	data := h.Bytes()

	// Padding word stays zero. Prologue: an 8-byte allocated block whose
	// header and footer both read size=8/alloc. Epilogue: a size-0
	// allocated header with the prev-alloc bit reflecting the prologue.
	format.PutHeader(data, format.PadSize, format.PrologueSize, true, true)
	format.PutU32(data, format.ProloguePayload, headerWord(data, format.ProloguePayload))
	format.PutHeader(data, hdrOff(format.FirstPayload), 0, true, true)

	if _, err := a.extendHeap(cfg.ChunkSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeapState, err)
	}
	return a, nil
}

// Alloc allocates a block with at least n usable bytes and returns its
// reference plus the payload slice. n == 0 returns NilRef with no error.
// The only failure mode is ErrNoSpace when heap growth is refused.
//
// With a moving grower the payload slice is invalidated by any later call
// that grows the heap; re-derive it via Payload. The mmap grower keeps
// slices stable.
func (a *Allocator) Alloc(n int32) (Ref, []byte, error) {
	a.stats.AllocCalls++

	if n < 0 {
		return NilRef, nil, ErrNeedSmall
	}
	if n == 0 {
		return NilRef, nil, nil
	}
	asize, err := adjustedSize(n)
	if err != nil {
		return NilRef, nil, err
	}

	bp := a.findFit(asize)
	grew := false
	if bp == format.NilRef {
		ext := asize
		if ext < a.cfg.ChunkSize {
			ext = a.cfg.ChunkSize
		}
		bp, err = a.extendHeap(ext)
		if err != nil {
			return NilRef, nil, err
		}
		grew = true
	}

	a.place(bp, asize)

	if grew {
		a.stats.AllocSlowPath++
	} else {
		a.stats.AllocFastPath++
	}

	data := a.h.Bytes()
	size := blockSize(data, bp)
	a.stats.BytesAllocated += int64(size)

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] n=%d asize=%d bp=%d block=%d grew=%v\n",
			n, asize, bp, size, grew)
	}

	return Ref(bp), data[bp : int(bp)+int(size)-format.HeaderSize], nil
}

// Free returns a block to the free-list index and coalesces it immediately
// with any free neighbor. Infallible for references previously returned by
// this allocator; foreign or double-freed references are undefined behavior
// by contract, though cheap bounds checks surface the obvious cases as
// ErrBadRef.
func (a *Allocator) Free(ref Ref) error {
	a.stats.FreeCalls++

	bp := int32(ref)
	data := a.h.Bytes()
	if !a.validBlock(data, bp) || !blockAllocated(data, bp) {
		return ErrBadRef
	}

	sz := blockSize(data, bp)
	a.stats.BytesFreed += int64(sz)

	format.SoftPutHeader(data, hdrOff(bp), sz, false)
	writeFooter(data, bp)
	format.SetPrevAlloc(data, hdrOff(nextBlock(data, bp)), false)

	a.insertFreeBlock(bp)
	a.coalesce(bp)
	return nil
}

// Realloc resizes a block. A nil ref behaves as Alloc; n == 0 behaves as
// Free and returns NilRef. The block is resized in place whenever the
// current block (plus an already-free successor, when one exists) can hold
// the new size; only the final alloc-copy-free path may return a different
// reference. On failure the original block is untouched.
func (a *Allocator) Realloc(ref Ref, n int32) (Ref, []byte, error) {
	a.stats.ReallocCalls++

	if ref == NilRef {
		return a.Alloc(n)
	}
	if n < 0 {
		return NilRef, nil, ErrNeedSmall
	}
	if n == 0 {
		return NilRef, nil, a.Free(ref)
	}

	bp := int32(ref)
	data := a.h.Bytes()
	if !a.validBlock(data, bp) || !blockAllocated(data, bp) {
		return NilRef, nil, ErrBadRef
	}
	asize, err := adjustedSize(n)
	if err != nil {
		return NilRef, nil, err
	}

	old := blockSize(data, bp)
	next := nextBlock(data, bp)
	combined := old
	nextFree := !blockAllocated(data, next)
	if nextFree {
		combined += blockSize(data, next)
	}

	if old >= asize || (nextFree && combined >= asize) {
		// In-place: absorb the free successor when it helps, then split
		// off a trailing remainder if one of at least minimum block size
		// falls out.
		size := old
		if nextFree && (old < asize || combined-asize >= format.MinBlockSize) {
			a.removeFreeBlock(next)
			size = combined
		}

		rem := size - asize
		if rem >= format.MinBlockSize {
			format.SoftPutHeader(data, hdrOff(bp), asize, true)
			rp := bp + asize
			format.PutHeader(data, hdrOff(rp), rem, false, true)
			writeFooter(data, rp)
			format.SetPrevAlloc(data, hdrOff(rp+rem), false)
			a.insertFreeBlock(rp)
			size = asize
		} else {
			format.SoftPutHeader(data, hdrOff(bp), size, true)
			format.SetPrevAlloc(data, hdrOff(bp+size), true)
		}

		a.stats.ReallocInPlace++
		return ref, data[bp : int(bp)+int(size)-format.HeaderSize], nil
	}

	// Move: allocate fresh, copy the surviving prefix, release the old
	// block. The only path whose result address may differ from the input.
	newRef, newPayload, err := a.Alloc(n)
	if err != nil {
		return NilRef, nil, err
	}
	data = a.h.Bytes()
	copyLen := int(old) - format.HeaderSize
	if copyLen > int(n) {
		copyLen = int(n)
	}
	copy(newPayload[:copyLen], data[bp:int(bp)+copyLen])
	if err := a.Free(ref); err != nil {
		return NilRef, nil, err
	}
	a.stats.ReallocMoved++
	return newRef, newPayload, nil
}

// Calloc allocates count*size bytes and zeroes the payload. The product is
// guarded against overflow before any allocation happens.
func (a *Allocator) Calloc(count, size int32) (Ref, []byte, error) {
	a.stats.CallocCalls++

	if count < 0 || size < 0 {
		return NilRef, nil, ErrNeedSmall
	}
	total := int64(count) * int64(size)
	if total > format.MaxHeapSize {
		return NilRef, nil, fmt.Errorf("%w: %d*%d", ErrSizeOverflow, count, size)
	}

	ref, payload, err := a.Alloc(int32(total))
	if err != nil || ref == NilRef {
		return ref, payload, err
	}
	clear(payload)
	return ref, payload, nil
}

// Payload re-derives the current payload slice for a live block reference.
func (a *Allocator) Payload(ref Ref) ([]byte, error) {
	bp := int32(ref)
	data := a.h.Bytes()
	if !a.validBlock(data, bp) || !blockAllocated(data, bp) {
		return nil, ErrBadRef
	}
	return data[bp : int(bp)+int(blockSize(data, bp))-format.HeaderSize], nil
}

// UsableSize returns the payload capacity of a live block.
func (a *Allocator) UsableSize(ref Ref) (int32, error) {
	bp := int32(ref)
	data := a.h.Bytes()
	if !a.validBlock(data, bp) || !blockAllocated(data, bp) {
		return 0, ErrBadRef
	}
	return blockSize(data, bp) - format.HeaderSize, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// adjustedSize converts a request into a block size: header overhead added,
// alignment applied, minimum block size enforced.
func adjustedSize(n int32) (int32, error) {
	a64 := int64(n) + format.HeaderSize
	a64 = (a64 + format.AlignmentMask) &^ int64(format.AlignmentMask)
	if a64 < format.MinBlockSize {
		a64 = format.MinBlockSize
	}
	if a64 > format.MaxHeapSize {
		return 0, fmt.Errorf("%w: request %d", ErrNoSpace, n)
	}
	return int32(a64), nil
}

// extendHeap grows the arena and shapes the fresh region into one free
// block. Growth is contiguous, so the old epilogue header becomes the new
// block's header (its prev-alloc bit is preserved via soft write) and a new
// epilogue is stamped at the far end. The new block is coalesced with a free
// predecessor before being returned.
func (a *Allocator) extendHeap(n int32) (int32, error) {
	size := format.Align8I32(n)
	start, err := a.h.Extend(int(size))
	if err != nil {
		return format.NilRef, fmt.Errorf("%w: %v", ErrNoSpace, err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)

	data := a.h.Bytes()
	bp := start // old epilogue header sits at bp-4

	format.SoftPutHeader(data, hdrOff(bp), size, false)
	writeFooter(data, bp)
	format.PutHeader(data, hdrOff(nextBlock(data, bp)), 0, true, false)

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[GROW] #%d: +%d bytes, heap=%d\n",
			a.stats.GrowCalls, size, a.h.Size())
	}

	a.insertFreeBlock(bp)
	return a.coalesce(bp), nil
}

// place carves an allocated block of asize bytes out of the free block at
// bp. The block leaves its bin first (its size may change); a remainder of
// at least minimum block size is split off and reinserted, anything smaller
// is absorbed whole so no sliver blocks exist.
func (a *Allocator) place(bp, asize int32) {
	a.removeFreeBlock(bp)
	data := a.h.Bytes()
	csize := blockSize(data, bp)

	if rem := csize - asize; rem >= format.MinBlockSize {
		a.stats.SplitCount++
		format.SoftPutHeader(data, hdrOff(bp), asize, true)
		rp := bp + asize
		format.PutHeader(data, hdrOff(rp), rem, false, true)
		writeFooter(data, rp)
		a.insertFreeBlock(rp)
	} else {
		format.SoftPutHeader(data, hdrOff(bp), csize, true)
		format.SetPrevAlloc(data, hdrOff(bp+csize), true)
	}
}

// coalesce merges bp with free neighbors. Four cases; in every merging case
// all participants leave the index first, headers are rewritten with the
// summed size, and the canonical block is reinserted once. Returns the
// canonical reference (the predecessor when one was absorbed).
func (a *Allocator) coalesce(bp int32) int32 {
	data := a.h.Bytes()
	prevFree := !blockPrevAllocated(data, bp)
	next := nextBlock(data, bp)
	nextFree := !blockAllocated(data, next)

	switch {
	case !prevFree && !nextFree:
		return bp

	case !prevFree && nextFree:
		a.stats.CoalesceForward++
		a.removeFreeBlock(bp)
		a.removeFreeBlock(next)
		sz := blockSize(data, bp) + blockSize(data, next)
		format.SoftPutHeader(data, hdrOff(bp), sz, false)
		writeFooter(data, bp)

	case prevFree && !nextFree:
		a.stats.CoalesceBackward++
		pb := prevBlock(data, bp)
		a.removeFreeBlock(bp)
		a.removeFreeBlock(pb)
		sz := blockSize(data, pb) + blockSize(data, bp)
		format.SoftPutHeader(data, hdrOff(pb), sz, false)
		writeFooter(data, pb)
		bp = pb

	default:
		a.stats.CoalesceBoth++
		pb := prevBlock(data, bp)
		a.removeFreeBlock(pb)
		a.removeFreeBlock(bp)
		a.removeFreeBlock(next)
		sz := blockSize(data, pb) + blockSize(data, bp) + blockSize(data, next)
		format.SoftPutHeader(data, hdrOff(pb), sz, false)
		writeFooter(data, pb)
		bp = pb
	}

	a.insertFreeBlock(bp)
	return bp
}

// validBlock performs the cheap sanity checks on a reference: aligned,
// inside the usable range, with a size that stays inside the arena.
func (a *Allocator) validBlock(data []byte, bp int32) bool {
	if bp < format.FirstPayload || !format.Aligned(bp) {
		return false
	}
	if int(bp) >= len(data) {
		return false
	}
	sz := blockSize(data, bp)
	if sz < format.MinBlockSize {
		return false
	}
	// The block must end at or before the epilogue header.
	return int(bp)+int(sz)-format.HeaderSize <= len(data)
}
