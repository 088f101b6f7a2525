// Package verify provides read-only invariant checking for allocator heaps.
// One call walks the full arena and every free-list bin, cross-checks the
// two views, and reports every violation found rather than stopping at the
// first, so a single run surfaces all inconsistencies. It is a diagnostic
// and test-support component, not part of the allocation hot path.
package verify

import (
	"fmt"
	"io"

	"github.com/joshuapare/memkit/internal/format"
)

// ValidationError describes one invariant violation.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Snapshot is the read-only allocator surface the checks run against.
// *alloc.Allocator implements it.
type Snapshot interface {
	Bytes() []byte
	HeapSize() int
	Base() int32
	BinCount() int
	BinRange(i int) (lo, hi int32)
	BinHead(i int) int32
	BinTail(i int) int32
	BinLen(i int) int
}

// Check runs every invariant against the snapshot and returns all
// violations found. An empty slice means the heap is consistent.
func Check(s Snapshot) []ValidationError {
	var errs []ValidationError

	heapFree, ok := checkSentinels(s, &errs)
	if !ok {
		// Without intact sentinels the walks below would read garbage.
		return errs
	}
	checkHeapWalk(s, heapFree, &errs)
	listFree := checkBins(s, &errs)
	checkCrossReference(heapFree, listFree, &errs)

	return errs
}

// Report writes every violation to w under a caller-supplied tag. With no
// violations it stays silent, so it can run after every mutating call in a
// diagnostic build without drowning the output.
func Report(w io.Writer, tag string, errs []ValidationError) {
	for i := range errs {
		fmt.Fprintf(w, "[%s] %s\n", tag, errs[i].Error())
	}
}

// checkSentinels validates the prologue and epilogue boundary blocks and
// returns an empty free-block set plus whether the walk frame is usable.
func checkSentinels(s Snapshot, errs *[]ValidationError) (map[int32]int32, bool) {
	data := s.Bytes()
	size := s.HeapSize()

	if size < format.HeapPrefixSize {
		*errs = append(*errs, ValidationError{
			Type:    "Sentinel",
			Message: fmt.Sprintf("heap too small: %d bytes (need %d)", size, format.HeapPrefixSize),
			Offset:  -1,
		})
		return nil, false
	}

	ok := true
	pro := s.Base()
	proHdr := format.ReadU32(data, int(pro)-format.HeaderSize)
	if format.SizeOf(proHdr) != format.PrologueSize || !format.Allocated(proHdr) {
		*errs = append(*errs, ValidationError{
			Type:    "Sentinel",
			Message: fmt.Sprintf("bad prologue header: size=%d alloc=%v", format.SizeOf(proHdr), format.Allocated(proHdr)),
			Offset:  int(pro) - format.HeaderSize,
		})
		ok = false
	}
	proFtr := format.ReadU32(data, int(pro))
	if format.SizeOf(proFtr) != format.PrologueSize || !format.Allocated(proFtr) {
		*errs = append(*errs, ValidationError{
			Type:    "Sentinel",
			Message: "prologue footer does not mirror header",
			Offset:  int(pro),
		})
		ok = false
	}

	epiOff := size - format.EpilogueSize
	epi := format.ReadU32(data, epiOff)
	if format.SizeOf(epi) != 0 || !format.Allocated(epi) {
		*errs = append(*errs, ValidationError{
			Type:    "Sentinel",
			Message: fmt.Sprintf("bad epilogue header: size=%d alloc=%v", format.SizeOf(epi), format.Allocated(epi)),
			Offset:  epiOff,
		})
		ok = false
	}

	return make(map[int32]int32), ok
}

// checkHeapWalk performs the full linear walk, validating per-block layout
// invariants and collecting every free block into heapFree.
func checkHeapWalk(s Snapshot, heapFree map[int32]int32, errs *[]ValidationError) {
	data := s.Bytes()
	size := s.HeapSize()
	epiHdr := size - format.EpilogueSize

	prevAllocated := true // prologue
	prevFree := false
	prevBP := int32(0)

	bp := int32(format.FirstPayload)
	for int(bp)-format.HeaderSize < epiHdr {
		word := format.ReadU32(data, int(bp)-format.HeaderSize)
		sz := format.SizeOf(word)
		allocated := format.Allocated(word)

		if !format.Aligned(bp) {
			*errs = append(*errs, ValidationError{
				Type:    "BlockLayout",
				Message: fmt.Sprintf("payload offset %d not 8-byte aligned", bp),
				Offset:  int(bp),
			})
			return // walk cannot continue from a misaligned block
		}
		if sz < format.MinBlockSize || !format.Aligned(sz) {
			*errs = append(*errs, ValidationError{
				Type:    "BlockLayout",
				Message: fmt.Sprintf("illegal block size %d", sz),
				Offset:  int(bp),
			})
			return // size field is the walk's induction variable
		}
		if int(bp)-format.HeaderSize+int(sz) > epiHdr {
			*errs = append(*errs, ValidationError{
				Type:    "BlockLayout",
				Message: fmt.Sprintf("block overruns heap: size=%d end=%d heap=%d", sz, int(bp)+int(sz), size),
				Offset:  int(bp),
			})
			return
		}

		if format.PrevAllocated(word) != prevAllocated {
			*errs = append(*errs, ValidationError{
				Type:    "PrevAllocBit",
				Message: fmt.Sprintf("cached bit %v but predecessor allocated=%v", format.PrevAllocated(word), prevAllocated),
				Offset:  int(bp),
				Details: map[string]interface{}{"pred": prevBP},
			})
		}

		if !allocated {
			ftr := format.ReadU32(data, int(bp)+int(sz)-format.DWordSize)
			if format.SizeOf(ftr) != sz || format.Allocated(ftr) != allocated {
				*errs = append(*errs, ValidationError{
					Type:    "FooterMirror",
					Message: fmt.Sprintf("footer size=%d alloc=%v, header size=%d alloc=%v", format.SizeOf(ftr), format.Allocated(ftr), sz, allocated),
					Offset:  int(bp) + int(sz) - format.DWordSize,
				})
			}
			if prevFree {
				*errs = append(*errs, ValidationError{
					Type:    "AdjacentFree",
					Message: fmt.Sprintf("free block follows free block at %d (coalescing missed)", prevBP),
					Offset:  int(bp),
				})
			}
			heapFree[bp] = sz
		}

		prevAllocated = allocated
		prevFree = !allocated
		prevBP = bp
		bp += sz
	}

	// Epilogue's cached bit must reflect the final block.
	epi := format.ReadU32(data, epiHdr)
	if format.PrevAllocated(epi) != prevAllocated {
		*errs = append(*errs, ValidationError{
			Type:    "PrevAllocBit",
			Message: fmt.Sprintf("epilogue cached bit %v but last block allocated=%v", format.PrevAllocated(epi), prevAllocated),
			Offset:  epiHdr,
		})
	}
}

// checkBins walks every size-class list, validating link integrity and size
// segregation, and returns the set of free blocks reachable via the index.
func checkBins(s Snapshot, errs *[]ValidationError) map[int32]int32 {
	data := s.Bytes()
	size := s.HeapSize()
	listFree := make(map[int32]int32)

	// A well-formed heap cannot hold more free blocks than this; anything
	// beyond it is a link cycle.
	maxBlocks := size/format.MinBlockSize + 1

	for i := 0; i < s.BinCount(); i++ {
		lo, hi := s.BinRange(i)
		seen := 0
		prev := int32(format.NilRef)

		for bp := s.BinHead(i); bp != format.NilRef; bp = linkSucc(data, bp) {
			if bp < format.FirstPayload || int(bp) >= size || !format.Aligned(bp) {
				*errs = append(*errs, ValidationError{
					Type:    "FreeList",
					Message: fmt.Sprintf("bin %d link points outside heap: %d", i, bp),
					Offset:  int(bp),
				})
				break
			}
			if seen++; seen > maxBlocks {
				*errs = append(*errs, ValidationError{
					Type:    "FreeList",
					Message: fmt.Sprintf("bin %d list exceeds %d entries (cycle?)", i, maxBlocks),
					Offset:  int(bp),
				})
				break
			}

			word := format.ReadU32(data, int(bp)-format.HeaderSize)
			sz := format.SizeOf(word)
			if format.Allocated(word) {
				*errs = append(*errs, ValidationError{
					Type:    "FreeList",
					Message: fmt.Sprintf("bin %d lists allocated block", i),
					Offset:  int(bp),
				})
			}
			if sz < lo || sz > hi {
				*errs = append(*errs, ValidationError{
					Type:    "SizeClass",
					Message: fmt.Sprintf("block size %d outside bin %d range [%d, %d]", sz, i, lo, hi),
					Offset:  int(bp),
				})
			}
			if linkPred(data, bp) != prev {
				*errs = append(*errs, ValidationError{
					Type:    "FreeList",
					Message: fmt.Sprintf("bin %d pred link %d, expected %d", i, linkPred(data, bp), prev),
					Offset:  int(bp),
				})
			}
			if _, dup := listFree[bp]; dup {
				*errs = append(*errs, ValidationError{
					Type:    "FreeList",
					Message: "block reachable through more than one bin position",
					Offset:  int(bp),
				})
			}
			listFree[bp] = sz
			prev = bp
		}

		if s.BinTail(i) != prev {
			*errs = append(*errs, ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("bin %d tail is %d, walk ended at %d", i, s.BinTail(i), prev),
				Offset:  int(s.BinTail(i)),
			})
		}
		if s.BinLen(i) != seen {
			*errs = append(*errs, ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("bin %d tracks %d entries, walk found %d", i, s.BinLen(i), seen),
				Offset:  -1,
			})
		}
	}
	return listFree
}

// checkCrossReference asserts the free blocks found by the linear heap walk
// equal, as a set, the free blocks reachable via all bins.
func checkCrossReference(heapFree, listFree map[int32]int32, errs *[]ValidationError) {
	for bp, sz := range heapFree {
		if _, ok := listFree[bp]; !ok {
			*errs = append(*errs, ValidationError{
				Type:    "CrossCheck",
				Message: fmt.Sprintf("free block of %d bytes not reachable via any bin", sz),
				Offset:  int(bp),
			})
		}
	}
	for bp := range listFree {
		if _, ok := heapFree[bp]; !ok {
			*errs = append(*errs, ValidationError{
				Type:    "CrossCheck",
				Message: "bin entry not found as a free block by the heap walk",
				Offset:  int(bp),
			})
		}
	}
}

func linkPred(data []byte, bp int32) int32 {
	return int32(format.ReadU32(data, int(bp)))
}

func linkSucc(data []byte, bp int32) int32 {
	return int32(format.ReadU32(data, int(bp)+format.LinkSize))
}
