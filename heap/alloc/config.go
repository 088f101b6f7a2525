package alloc

import (
	"math"

	"github.com/joshuapare/memkit/internal/format"
)

// InsertPolicy selects how freed blocks enter their size-class list.
type InsertPolicy int

const (
	// InsertLIFO pushes at the list head. O(1), no ordering.
	InsertLIFO InsertPolicy = iota

	// InsertAddressOrdered splices into address-sorted position, scanning
	// from whichever list end is closer to the new block. O(n) worst case
	// but gives predictable coalescing locality.
	InsertAddressOrdered
)

// FitPolicy selects how a bin is searched for a block of sufficient size.
type FitPolicy int

const (
	// FirstFit takes the first sufficient block in scan order.
	FirstFit FitPolicy = iota

	// BestFit scans the whole bin tracking the minimum sufficient block,
	// with an early exit once a candidate's remainder drops below FitSlack.
	BestFit
)

// Config defines the allocator's placement strategy. Different
// configurations trade throughput against fragmentation; the presets below
// cover the useful corners.
type Config struct {
	// Name for this configuration (for benchmarking)
	Name string

	// BinCount is the number of size classes. Class upper bounds double
	// from MinBinSize; the last class is unbounded above.
	BinCount int

	// MinBinSize is the upper bound of the smallest size class. Must be at
	// least the minimum block size.
	MinBinSize int32

	// Insert selects the free-list insertion policy.
	Insert InsertPolicy

	// Fit selects the within-bin search policy.
	Fit FitPolicy

	// FitSlack is the best-fit early-exit threshold: a candidate whose
	// remainder (size - requested) falls below this is accepted
	// immediately without scanning further. 0 disables the early exit and
	// yields a true per-bin best fit. Ignored under FirstFit.
	FitSlack int32

	// ChunkSize is the minimum heap extension. Requests larger than this
	// grow the heap by exactly their own (aligned) size.
	ChunkSize int32
}

// Predefined configurations.
var (
	// ConfigFirstFit: cheapest bookkeeping. LIFO insertion and first-fit
	// search, O(1) on the hot path at the cost of more fragmentation.
	ConfigFirstFit = Config{
		Name:       "FirstFit",
		BinCount:   12,
		MinBinSize: 16,
		Insert:     InsertLIFO,
		Fit:        FirstFit,
		ChunkSize:  256,
	}

	// ConfigBestFit: address-ordered lists with best-fit search and a
	// one-min-block slack threshold. The balanced default.
	ConfigBestFit = Config{
		Name:       "BestFit",
		BinCount:   12,
		MinBinSize: 16,
		Insert:     InsertAddressOrdered,
		Fit:        BestFit,
		FitSlack:   16,
		ChunkSize:  256,
	}

	// ConfigCompact: more classes, exact best fit, small growth increments.
	// Slowest, tightest packing.
	ConfigCompact = Config{
		Name:       "Compact",
		BinCount:   16,
		MinBinSize: 16,
		Insert:     InsertAddressOrdered,
		Fit:        BestFit,
		FitSlack:   0,
		ChunkSize:  128,
	}

	// DefaultConfig is used when New is handed a nil config.
	DefaultConfig = ConfigBestFit
)

// normalize clamps a config into a usable state.
func (c Config) normalize() Config {
	if c.BinCount < 2 {
		c.BinCount = 2
	}
	if c.MinBinSize < format.MinBlockSize {
		c.MinBinSize = format.MinBlockSize
	}
	c.MinBinSize = format.Align8I32(c.MinBinSize)
	if c.ChunkSize < format.MinBlockSize {
		c.ChunkSize = format.MinBlockSize
	}
	c.ChunkSize = format.Align8I32(c.ChunkSize)
	if c.FitSlack < 0 {
		c.FitSlack = 0
	}
	return c
}

// binBounds computes the inclusive upper bound of each size class. The last
// entry is MaxInt32: the top bin is a catch-all.
func (c Config) binBounds() []int32 {
	bounds := make([]int32, c.BinCount)
	bound := c.MinBinSize
	for i := 0; i < c.BinCount-1; i++ {
		bounds[i] = bound
		if bound <= math.MaxInt32/2 {
			bound <<= 1
		} else {
			bound = math.MaxInt32
		}
	}
	bounds[c.BinCount-1] = math.MaxInt32
	return bounds
}
