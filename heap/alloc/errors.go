package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found and
	// heap growth was refused. This is the allocator's only out-of-memory
	// signal; it is never retried internally.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadRef indicates an invalid or out-of-bounds block reference.
	ErrBadRef = errors.New("alloc: bad block reference")

	// ErrSizeOverflow indicates a Calloc count*size product that does not
	// fit in the heap's 31-bit offset space.
	ErrSizeOverflow = errors.New("alloc: allocation size overflows")

	// ErrNeedSmall indicates a negative request size.
	ErrNeedSmall = errors.New("alloc: request size must be non-negative")

	// ErrHeapState indicates the allocator was handed a heap it cannot
	// initialize on (already populated, or the initial extension failed).
	ErrHeapState = errors.New("alloc: unusable heap state")
)
