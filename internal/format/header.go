package format

// Header word codec.
//
// A block header is one little-endian uint32 at payload-4:
//
//	bits 3..31  block size in bytes (always 8-byte aligned)
//	bit  2      unused alignment slack
//	bit  1      prev-alloc: the immediately preceding block is allocated
//	bit  0      alloc: this block is allocated
//
// Free blocks mirror the full header word in a footer at payload+size-8 so
// the predecessor walk can recover their size; allocated blocks omit the
// footer and rely on the successor's prev-alloc bit instead.

// Pack encodes a header word from an aligned size and the allocation state.
// The prev-alloc bit is left clear; use PackPrev or SetPrevAlloc when the
// predecessor state is known.
func Pack(size int32, allocated bool) uint32 {
	w := uint32(size)
	if allocated {
		w |= AllocBit
	}
	return w
}

// PackPrev encodes a header word with an explicit prev-alloc bit.
func PackPrev(size int32, allocated, prevAllocated bool) uint32 {
	w := Pack(size, allocated)
	if prevAllocated {
		w |= PrevAllocBit
	}
	return w
}

// SizeOf extracts the aligned block size from a header or footer word.
func SizeOf(word uint32) int32 {
	return int32(word & SizeMask)
}

// Allocated reports the allocation bit of a header or footer word.
func Allocated(word uint32) bool {
	return word&AllocBit != 0
}

// PrevAllocated reports the cached predecessor-allocation bit.
func PrevAllocated(word uint32) bool {
	return word&PrevAllocBit != 0
}

// PutHeader writes a full header word at off, overwriting every field.
func PutHeader(b []byte, off int, size int32, allocated, prevAllocated bool) {
	PutU32(b, off, PackPrev(size, allocated, prevAllocated))
}

// SoftPutHeader updates the size and alloc fields at off while preserving
// whatever prev-alloc bit is already stored there. This is the only safe way
// to rewrite a header whose predecessor state the caller does not know.
func SoftPutHeader(b []byte, off int, size int32, allocated bool) {
	prev := ReadU32(b, off) & PrevAllocBit
	PutU32(b, off, Pack(size, allocated)|prev)
}

// SetPrevAlloc flips only the prev-alloc bit of the word at off.
func SetPrevAlloc(b []byte, off int, on bool) {
	w := ReadU32(b, off)
	if on {
		w |= PrevAllocBit
	} else {
		w &^= PrevAllocBit
	}
	PutU32(b, off, w)
}
