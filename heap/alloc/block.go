package alloc

import "github.com/joshuapare/memkit/internal/format"

// Block arithmetic over the raw arena. A block reference bp is the int32
// offset of its payload from the arena base; the header word sits at bp-4.
// These helpers are pure address translation; bounds discipline is the
// caller's job, which is what keeps them branch-free on the hot path.

func hdrOff(bp int32) int {
	return int(bp) - format.HeaderSize
}

func headerWord(data []byte, bp int32) uint32 {
	return format.ReadU32(data, hdrOff(bp))
}

func blockSize(data []byte, bp int32) int32 {
	return format.SizeOf(headerWord(data, bp))
}

func blockAllocated(data []byte, bp int32) bool {
	return format.Allocated(headerWord(data, bp))
}

func blockPrevAllocated(data []byte, bp int32) bool {
	return format.PrevAllocated(headerWord(data, bp))
}

// nextBlock returns the successor's payload offset. Always derivable; the
// epilogue sentinel guarantees the walk terminates inside owned memory.
func nextBlock(data []byte, bp int32) int32 {
	return bp + blockSize(data, bp)
}

// prevBlock returns the predecessor's payload offset via its footer.
// Only valid when the predecessor is free; allocated blocks have no footer,
// which is why callers must consult the prev-alloc bit first.
func prevBlock(data []byte, bp int32) int32 {
	return bp - format.SizeOf(format.ReadU32(data, int(bp)-format.DWordSize))
}

// footerOff returns the arena offset of bp's footer word.
func footerOff(data []byte, bp int32) int {
	return int(bp) + int(blockSize(data, bp)) - format.DWordSize
}

func footerWord(data []byte, bp int32) uint32 {
	return format.ReadU32(data, footerOff(data, bp))
}

// writeFooter mirrors bp's current header word into its footer. Free blocks
// only; the header must be settled first.
func writeFooter(data []byte, bp int32) {
	format.PutU32(data, footerOff(data, bp), headerWord(data, bp))
}

// Free-list links occupy the payload's first two words, stored as payload
// offsets from the arena base. 0 means "no link"; the prologue keeps offset
// 0 out of the usable range.

func linkPred(data []byte, bp int32) int32 {
	return int32(format.ReadU32(data, int(bp)))
}

func linkSucc(data []byte, bp int32) int32 {
	return int32(format.ReadU32(data, int(bp)+format.LinkSize))
}

func setLinkPred(data []byte, bp, to int32) {
	format.PutU32(data, int(bp), uint32(to))
}

func setLinkSucc(data []byte, bp, to int32) {
	format.PutU32(data, int(bp)+format.LinkSize, uint32(to))
}
