//go:build !linux && !darwin

package heap

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/format"
)

// NewMmapGrower falls back to a limit-capped slice grower on platforms
// without anonymous mmap support. Semantics match the unix implementation
// except that growth may move the arena.
func NewMmapGrower(capacity int) (Grower, error) {
	if capacity <= 0 || capacity > format.MaxHeapSize {
		return nil, fmt.Errorf("%w: capacity %d", ErrBadExtend, capacity)
	}
	return NewSliceGrower(capacity), nil
}
