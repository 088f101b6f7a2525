package format

// Alignment utilities. Block sizes and heap extensions must be 8-byte
// aligned so the low bits of every header word are available for flags.

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// Align8I32 returns n aligned up to the next 8-byte boundary.
// int32 version for use in allocator code to avoid G115 warnings.
func Align8I32(n int32) int32 {
	return (n + AlignmentMask) & ^int32(AlignmentMask)
}

// Aligned reports whether n sits on an 8-byte boundary.
func Aligned(n int32) bool {
	return n&AlignmentMask == 0
}
