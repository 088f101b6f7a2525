package trace

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/memkit/heap"
	"github.com/joshuapare/memkit/heap/alloc"
)

// ErrBadTrace indicates an op referencing an id in an impossible state
// (freeing or resizing an id that holds no live block).
var ErrBadTrace = errors.New("trace: op on dead id")

// Result summarizes one replay.
type Result struct {
	Ops      int
	Allocs   int
	Reallocs int
	Frees    int

	PeakLive    int64   // high-water mark of live payload bytes
	HeapSize    int     // final heap size, sentinels included
	Utilization float64 // PeakLive / HeapSize, the classic figure of merit

	Stats alloc.Stats
}

// Hook runs after each completed op; returning an error aborts the replay.
// Used by the CLI's check mode to validate the heap at every quiescent
// point.
type Hook func(a *alloc.Allocator, step int, op Op) error

// Run replays a trace against a fresh allocator on an unbounded slice
// heap. Every id must be live exactly when the script says it is; a trace
// violating that fails with ErrBadTrace.
func Run(tr *Trace, cfg *alloc.Config, hook Hook) (*Result, error) {
	h := heap.New(heap.NewSliceGrower(0))
	a, err := alloc.New(h, cfg)
	if err != nil {
		return nil, err
	}

	refs := make(map[int]alloc.Ref, tr.IDs)
	sizes := make(map[int]int64, tr.IDs)
	res := &Result{Ops: len(tr.Ops)}
	var live, peak int64

	for i, op := range tr.Ops {
		switch op.Kind {
		case Alloc:
			if op.Size > math.MaxInt32 {
				return nil, fmt.Errorf("%w: step %d: size %d", ErrBadTrace, i, op.Size)
			}
			ref, _, allocErr := a.Alloc(int32(op.Size))
			if allocErr != nil {
				return nil, fmt.Errorf("trace %s step %d: %w", tr.Name, i, allocErr)
			}
			refs[op.ID] = ref
			sizes[op.ID] = int64(op.Size)
			live += int64(op.Size)
			res.Allocs++

		case Realloc:
			ref, ok := refs[op.ID]
			if !ok || op.Size > math.MaxInt32 {
				return nil, fmt.Errorf("%w: step %d: r %d", ErrBadTrace, i, op.ID)
			}
			newRef, _, reErr := a.Realloc(ref, int32(op.Size))
			if reErr != nil {
				return nil, fmt.Errorf("trace %s step %d: %w", tr.Name, i, reErr)
			}
			live += int64(op.Size) - sizes[op.ID]
			if op.Size == 0 {
				delete(refs, op.ID)
				delete(sizes, op.ID)
			} else {
				refs[op.ID] = newRef
				sizes[op.ID] = int64(op.Size)
			}
			res.Reallocs++

		case Free:
			ref, ok := refs[op.ID]
			if !ok {
				return nil, fmt.Errorf("%w: step %d: f %d", ErrBadTrace, i, op.ID)
			}
			// A zero-size alloc produced NilRef; freeing it is a no-op.
			if ref != alloc.NilRef {
				if freeErr := a.Free(ref); freeErr != nil {
					return nil, fmt.Errorf("trace %s step %d: %w", tr.Name, i, freeErr)
				}
			}
			live -= sizes[op.ID]
			delete(refs, op.ID)
			delete(sizes, op.ID)
			res.Frees++
		}

		if live > peak {
			peak = live
		}
		if hook != nil {
			if hookErr := hook(a, i, op); hookErr != nil {
				return nil, hookErr
			}
		}
	}

	res.PeakLive = peak
	res.HeapSize = a.HeapSize()
	if res.HeapSize > 0 {
		res.Utilization = float64(peak) / float64(res.HeapSize)
	}
	res.Stats = a.Stats()
	return res, nil
}
