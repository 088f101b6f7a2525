package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Extend_ReturnsContiguousStarts(t *testing.T) {
	h := New(NewSliceGrower(0))

	start, err := h.Extend(16)
	require.NoError(t, err)
	require.Equal(t, int32(0), start)
	require.Equal(t, 16, h.Size())

	start, err = h.Extend(256)
	require.NoError(t, err)
	require.Equal(t, int32(16), start, "second grant must start where the first ended")
	require.Equal(t, 272, h.Size())
}

func Test_Extend_RejectsBadSizes(t *testing.T) {
	h := New(NewSliceGrower(0))

	_, err := h.Extend(0)
	require.ErrorIs(t, err, ErrBadExtend)

	_, err = h.Extend(-8)
	require.ErrorIs(t, err, ErrBadExtend)

	// Unaligned extensions are a caller bug.
	_, err = h.Extend(12)
	require.ErrorIs(t, err, ErrBadExtend)
}

func Test_Extend_RefusalLeavesArenaUnchanged(t *testing.T) {
	h := New(NewSliceGrower(64))

	_, err := h.Extend(64)
	require.NoError(t, err)

	_, err = h.Extend(8)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 64, h.Size())
}

func Test_Extend_ZeroFillsNewRegion(t *testing.T) {
	h := New(NewSliceGrower(0))

	_, err := h.Extend(32)
	require.NoError(t, err)

	data := h.Bytes()
	for i := range data {
		require.Zero(t, data[i], "fresh heap byte %d must be zero", i)
	}

	// Dirty the region, grow, and confirm old bytes survive and new bytes
	// come back zeroed.
	for i := range data {
		data[i] = 0xCC
	}
	start, err := h.Extend(32)
	require.NoError(t, err)

	data = h.Bytes()
	for i := 0; i < int(start); i++ {
		require.Equal(t, byte(0xCC), data[i])
	}
	for i := int(start); i < h.Size(); i++ {
		require.Zero(t, data[i])
	}
}
