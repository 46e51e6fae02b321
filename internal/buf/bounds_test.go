package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok, "adding to MaxInt must overflow")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok, "subtracting from MinInt must underflow")
}

func TestMulOverflowSafe(t *testing.T) {
	p, ok := MulOverflowSafe(255, 8)
	require.True(t, ok)
	require.Equal(t, 2040, p)

	p, ok = MulOverflowSafe(0, math.MaxInt)
	require.True(t, ok)
	require.Zero(t, p)

	_, ok = MulOverflowSafe(math.MaxInt/2+1, 2)
	require.False(t, ok)

	_, ok = MulOverflowSafe(-1, 8)
	require.False(t, ok)
}

func TestCheckListBounds(t *testing.T) {
	end, err := CheckListBounds(4096, 32, 255, 8)
	require.NoError(t, err)
	require.Equal(t, 32+255*8, end)

	_, err = CheckListBounds(4096, 32, 1000, 8)
	require.ErrorContains(t, err, "bounds")

	_, err = CheckListBounds(4096, -1, 1, 8)
	require.ErrorContains(t, err, "negative offset")

	_, err = CheckListBounds(4096, 0, math.MaxInt, 8)
	require.ErrorContains(t, err, "overflow")
}
