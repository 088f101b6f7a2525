package alloc

// Stats holds internal allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls    int   // Total Alloc() calls
	AllocFastPath int   // Allocations satisfied from the free lists
	AllocSlowPath int   // Allocations that required heap growth
	FreeCalls     int   // Total Free() calls
	ReallocCalls  int   // Total Realloc() calls
	CallocCalls   int   // Total Calloc() calls
	GrowCalls     int   // Heap extensions performed
	GrowBytes     int64 // Total bytes added via heap extension

	BytesAllocated int64 // Total block bytes handed out (including headers)
	BytesFreed     int64 // Total block bytes returned

	SplitCount       int // Blocks split during placement
	CoalesceForward  int // Merges with a free successor only
	CoalesceBackward int // Merges with a free predecessor only
	CoalesceBoth     int // Three-way merges
	ReallocInPlace   int // Reallocs resolved without moving the block
	ReallocMoved     int // Reallocs that allocated, copied, and freed

	FitProbes int64 // Free blocks inspected by fit searches
}

// Stats returns a copy of the current counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}
