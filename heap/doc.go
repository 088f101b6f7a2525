// Package heap provides the growable byte arena that the allocator manages,
// together with the growth primitive behind it.
//
// The arena is a single contiguous byte range addressed by int32 offsets
// from its base. It only ever grows, and growth is always contiguous with
// all prior grants. The Grower interface is the supplied external primitive
// ("extend the heap by n bytes"); two implementations ship with the package:
//
//   - SliceGrower: append-backed, with an optional hard byte limit so tests
//     can provoke growth refusal deterministically.
//   - MmapGrower (linux/darwin): reserves one anonymous mapping of fixed
//     capacity up front, so the arena's base address never moves and slices
//     handed out earlier stay valid across growth.
//
// Package heap knows nothing about blocks or free lists; block layout lives
// in internal/format and policy in heap/alloc.
package heap
