package alloc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Config_NormalizeClamps(t *testing.T) {
	cfg := Config{BinCount: 0, MinBinSize: 8, ChunkSize: 0, FitSlack: -5}
	n := cfg.normalize()

	require.Equal(t, 2, n.BinCount)
	require.Equal(t, int32(16), n.MinBinSize)
	require.Equal(t, int32(16), n.ChunkSize)
	require.Zero(t, n.FitSlack)
}

func Test_Config_BinBoundsDoubleWithCatchAllTop(t *testing.T) {
	bounds := DefaultConfig.normalize().binBounds()
	require.Len(t, bounds, DefaultConfig.BinCount)

	want := int32(16)
	for i := 0; i < len(bounds)-1; i++ {
		require.Equal(t, want, bounds[i], "bin %d bound", i)
		want <<= 1
	}
	require.Equal(t, int32(math.MaxInt32), bounds[len(bounds)-1], "top bin must be unbounded")
}

func Test_BinFor_MapsSizesToClasses(t *testing.T) {
	a := newTestAllocator(t, nil)

	require.Equal(t, 0, a.binFor(16))
	require.Equal(t, 1, a.binFor(17))
	require.Equal(t, 1, a.binFor(32))
	require.Equal(t, 2, a.binFor(33))
	require.Equal(t, a.BinCount()-1, a.binFor(math.MaxInt32))
}

func Test_BinRange_ContiguousDisjointCoverage(t *testing.T) {
	a := newTestAllocator(t, nil)

	prevHi := int32(15)
	for i := 0; i < a.BinCount(); i++ {
		lo, hi := a.BinRange(i)
		require.Equal(t, prevHi+1, lo, "bin %d must start where bin %d ended", i, i-1)
		require.GreaterOrEqual(t, hi, lo)
		prevHi = hi
	}
	require.Equal(t, int32(math.MaxInt32), prevHi)
}
