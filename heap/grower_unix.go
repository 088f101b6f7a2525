//go:build linux || darwin

package heap

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/memkit/internal/format"
)

// mmapGrower reserves one anonymous read-write mapping of fixed capacity and
// commits it in increments. Because the reservation happens once, the arena
// base never moves: payload slices handed out before a growth stay valid
// after it, unlike the slice-backed grower.
type mmapGrower struct {
	mem  []byte
	used int
}

// NewMmapGrower returns a Grower backed by a single anonymous mapping of the
// given capacity. Extensions past the capacity fail with ErrExhausted.
func NewMmapGrower(capacity int) (Grower, error) {
	if capacity <= 0 || capacity > format.MaxHeapSize {
		return nil, fmt.Errorf("%w: capacity %d", ErrBadExtend, capacity)
	}
	mem, err := unix.Mmap(
		-1,
		0,
		capacity,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		return nil, fmt.Errorf("heap: mmap failed: %w", err)
	}
	return &mmapGrower{mem: mem}, nil
}

func (g *mmapGrower) Extend(n int) error {
	if n <= 0 {
		return ErrBadExtend
	}
	if g.used+n > len(g.mem) {
		return ErrExhausted
	}
	g.used += n
	return nil
}

func (g *mmapGrower) Bytes() []byte {
	return g.mem[:g.used]
}

// Close releases the mapping. The arena must not be touched afterwards.
func (g *mmapGrower) Close() error {
	if g.mem == nil {
		return nil
	}
	err := unix.Munmap(g.mem)
	g.mem = nil
	g.used = 0
	return err
}
