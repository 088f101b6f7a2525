// Package alloc implements a general-purpose dynamic memory allocator over
// a single growable byte arena: allocate, free, resize, and zero-allocate,
// built on segregated free lists with immediate coalescing.
//
// # Block layout
//
// Every block carries a 4-byte header word at payload-4 encoding its 8-byte
// aligned size, its allocation bit, and a cached bit recording whether the
// immediately preceding block is allocated. Free blocks additionally carry a
// footer mirroring the header and thread two 4-byte free-list links through
// their payload; allocated blocks carry no footer at all, which is what the
// cached predecessor bit pays for. The minimum block is 16 bytes.
//
// # Free-list index
//
// Free blocks are segregated into a fixed set of doubling size classes, the
// last unbounded. Insertion is LIFO or address-ordered and fit search is
// first-fit or best-fit with a configurable early-exit slack threshold; see
// Config and its presets.
//
// # Growth and failure
//
// When no free block satisfies a request the heap grows by
// max(request, ChunkSize) through the heap package's Grower. A refused
// growth surfaces as ErrNoSpace and is never retried internally; that is
// the allocator's only failure mode. Zero-size allocations return NilRef
// with no error.
//
// # Contract
//
// One logical caller at a time; there is no internal locking. Freeing or
// resizing a reference this allocator did not return, or double-freeing,
// is undefined behavior by contract — cheap bounds checks catch the obvious
// cases and return ErrBadRef, nothing more is promised.
//
// # Usage
//
//	h := heap.New(heap.NewSliceGrower(0))
//	a, err := alloc.New(h, nil)
//	if err != nil {
//		return err
//	}
//	ref, buf, err := a.Alloc(64)
//	if err != nil {
//		return err
//	}
//	copy(buf, payload)
//	_ = a.Free(ref)
//
// Invariant checking for tests and diagnostics lives in heap/verify.
package alloc
