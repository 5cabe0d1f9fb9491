package rawmem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rawmem/testutil"
)

func TestCheckBounds(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for _, capacity := range []int64{0, 1, 7, 1024, 1 << 40} {
		for _, r := range rng.Ranges(500, capacity) {
			assert.NoError(t, CheckBounds(r.Offset, r.Length, capacity), "%+v cap %d", r, capacity)
		}
		for _, r := range rng.BadRanges(500, capacity) {
			err := CheckBounds(r.Offset, r.Length, capacity)
			assert.ErrorIs(t, err, ErrOutOfRange, "%+v cap %d", r, capacity)
		}
	}

	t.Run("Overflow", func(t *testing.T) {
		assert.Error(t, CheckBounds(math.MaxInt64, 1, math.MaxInt64))
		assert.Error(t, CheckBounds(1, math.MaxInt64, math.MaxInt64))
		assert.NoError(t, CheckBounds(0, math.MaxInt64, math.MaxInt64))
	})

	t.Run("ErrorDetails", func(t *testing.T) {
		var be *BoundsError
		require.ErrorAs(t, CheckBounds(5, 4, 8), &be)
		assert.Equal(t, BoundsError{Offset: 5, Length: 4, Capacity: 8}, *be)
	})
}

func TestCheckPositions(t *testing.T) {
	assert.NoError(t, checkPositions(0, 0, 0, 0))
	assert.NoError(t, checkPositions(1, 2, 3, 3))

	for _, c := range [][4]int64{
		{-1, 0, 0, 0},
		{2, 1, 3, 3},
		{0, 4, 3, 5},
		{0, 0, 6, 5},
	} {
		var pe *PositionError
		err := checkPositions(c[0], c[1], c[2], c[3])
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.ErrorAs(t, err, &pe)
	}
}

func TestOverlaps(t *testing.T) {
	b := make([]byte, 16)

	assert.True(t, overlaps(b[0:8], b[4:12]))
	assert.True(t, overlaps(b[4:12], b[0:8]))
	assert.False(t, overlaps(b[0:8], b[8:16]))
	assert.False(t, overlaps(b[0:0], b[0:8]))
	assert.False(t, overlaps(b, make([]byte, 16)))

	assert.True(t, sameStart(b[2:4], b[2:10]))
	assert.False(t, sameStart(b[2:2], b[2:10]))
}
