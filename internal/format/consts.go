// Package format houses the low-level block layout codec for the heap: word
// encoding, alignment helpers, and the constants describing how a block's
// size and state bits are packed into its header word. The goal is to keep
// every piece of pointer-free layout arithmetic in one place so higher-level
// packages can treat blocks as structured records instead of raw bytes.
package format

const (
	// WordSize is the width in bytes of a block header or footer word.
	WordSize = 4

	// DWordSize is the allocation alignment granularity. Every block size is
	// rounded up to a multiple of this, which frees the low 3 bits of the
	// size field for state flags.
	DWordSize = 8

	// AlignmentMask selects the low bits that must be zero in an aligned size.
	AlignmentMask = DWordSize - 1

	// HeaderSize is the per-block metadata overhead preceding the payload.
	HeaderSize = WordSize

	// FooterSize is the trailing mirror word carried by free blocks only.
	FooterSize = WordSize

	// LinkSize is the width of one free-list link field. Links are stored as
	// payload offsets from the arena base rather than full pointers, which is
	// what lets MinBlockSize stay at 16 bytes.
	LinkSize = WordSize

	// MinBlockSize is the smallest legal block: header + two link fields +
	// footer. Splits never produce a remainder below this.
	MinBlockSize = HeaderSize + 2*LinkSize + FooterSize

	// Arena prefix geometry. The arena opens with one padding word, an
	// 8-byte permanently-allocated prologue block, and a size-0 allocated
	// epilogue header. The prologue pins the first usable payload offset
	// away from 0, so link value 0 can mean "no link".
	PadSize         = WordSize
	PrologueSize    = 2 * WordSize
	ProloguePayload = PadSize + HeaderSize
	EpilogueSize    = WordSize
	HeapPrefixSize  = PadSize + PrologueSize + EpilogueSize
	FirstPayload    = HeapPrefixSize

	// Header word bit layout: size occupies the bits above the alignment,
	// bit 0 is the allocation state, bit 1 caches whether the immediately
	// preceding block is allocated (which is what lets allocated blocks omit
	// their footer).
	AllocBit     = 0x1
	PrevAllocBit = 0x2

	// MaxHeapSize caps the arena at 2GB-1. All block references and link
	// fields are int32 payload offsets, so the heap must stay addressable
	// in 31 bits.
	MaxHeapSize = 0x7FFFFFFF

	// NilRef is the reserved "no block" reference / "no link" value.
	NilRef = 0
)

// SizeMask selects the size field of a header word.
const SizeMask = ^uint32(AlignmentMask)
