package idpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchUnique(t *testing.T) {
	pool, err := New(1, 1000, WithSeed(1))
	require.NoError(t, err)

	seen := make(map[uint64]bool)
	for round := 0; round < 10; round++ {
		ids, err := pool.Batch(10)
		require.NoError(t, err)
		require.Len(t, ids, 10)

		for _, id := range ids {
			assert.False(t, seen[id], "identifier %d proposed twice", id)
			assert.GreaterOrEqual(t, id, uint64(1))
			assert.LessOrEqual(t, id, uint64(1000))
			seen[id] = true
		}
	}

	assert.Equal(t, uint64(100), pool.MarkedCount())
}

func TestBatchMarksImmediately(t *testing.T) {
	pool, err := New(1, 100, WithSeed(2))
	require.NoError(t, err)

	ids, err := pool.Batch(5)
	require.NoError(t, err)

	for _, id := range ids {
		assert.True(t, pool.Marked(id))
	}
}

func TestReleaseMakesEligibleAgain(t *testing.T) {
	// Range of exactly 5: every batch of 5 must contain every identifier,
	// so a released value is provably resampled.
	pool, err := New(1, 5, WithSeed(3))
	require.NoError(t, err)

	first, err := pool.Batch(5)
	require.NoError(t, err)

	for _, id := range first {
		pool.Release(id)
	}
	assert.Equal(t, uint64(0), pool.MarkedCount())

	second, err := pool.Batch(5)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
}

func TestReleaseUnmarkedIsNoop(t *testing.T) {
	pool, err := New(10, 20, WithSeed(4))
	require.NoError(t, err)

	pool.Release(15)  // never drawn
	pool.Release(999) // out of range
	assert.Equal(t, uint64(0), pool.MarkedCount())
}

func TestExhaustion(t *testing.T) {
	pool, err := New(1, 10, WithSeed(5))
	require.NoError(t, err)

	_, err = pool.Batch(10)
	require.NoError(t, err)

	_, err = pool.Batch(1)
	require.ErrorIs(t, err, ErrExhausted)

	// Failed call must not leave partial marks behind.
	assert.Equal(t, uint64(10), pool.MarkedCount())
}

func TestBatchLargerThanCapacity(t *testing.T) {
	pool, err := New(1, 4, WithSeed(6))
	require.NoError(t, err)

	_, err = pool.Batch(5)
	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, uint64(0), pool.MarkedCount())
}

func TestBatchZero(t *testing.T) {
	pool, err := New(1, 10)
	require.NoError(t, err)

	ids, err := pool.Batch(0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInvalidRange(t *testing.T) {
	_, err := New(10, 1)
	require.Error(t, err)
}

func TestSingleValueRange(t *testing.T) {
	pool, err := New(7, 7, WithSeed(7))
	require.NoError(t, err)

	ids, err := pool.Batch(1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, ids)

	_, err = pool.Batch(1)
	require.ErrorIs(t, err, ErrExhausted)
}
