package mem

import (
	"github.com/joshuapare/memkit/heap/alloc"
	"github.com/joshuapare/memkit/heap/verify"
)

// Ref is a block reference (re-exported for convenience).
type Ref = alloc.Ref

// NilRef is the zero block reference.
const NilRef = alloc.NilRef

// Config defines the arena's placement strategy.
type Config = alloc.Config

// Stats holds the arena's allocation counters.
type Stats = alloc.Stats

// ValidationError is one violation found by Check.
type ValidationError = verify.ValidationError

// Placement presets (re-exported for convenience).
var (
	// FirstFit: cheapest bookkeeping, most fragmentation.
	FirstFit = alloc.ConfigFirstFit

	// BestFit: the balanced default.
	BestFit = alloc.ConfigBestFit

	// Compact: tightest packing, slowest.
	Compact = alloc.ConfigCompact
)

// Sentinel errors (re-exported for convenience).
var (
	ErrNoSpace      = alloc.ErrNoSpace
	ErrBadRef       = alloc.ErrBadRef
	ErrSizeOverflow = alloc.ErrSizeOverflow
)
