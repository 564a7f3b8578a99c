package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductIDRetriesOnCollision(t *testing.T) {
	draws := []int{4, 4, 7} // 0-based draws: ids 5, 5, 8
	a := NewWithRand(10, func(int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	})
	id, err := a.ProductID(map[int]bool{5: true})
	require.NoError(t, err)
	assert.Equal(t, 8, id)
}

func TestProductIDScansWhenDrawsExhaust(t *testing.T) {
	// Every draw collides; the fallback scan must still find the free id.
	a := NewWithRand(3, func(int) int { return 0 }) // always id 1
	id, err := a.ProductID(map[int]bool{1: true, 3: true})
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestProductIDSpaceExhausted(t *testing.T) {
	a := New(3)
	_, err := a.ProductID(map[int]bool{1: true, 2: true, 3: true})
	require.ErrorIs(t, err, ErrSpaceExhausted)
}

func TestProductIDNeverReturnsTaken(t *testing.T) {
	a := New(50)
	taken := make(map[int]bool)
	for i := 1; i <= 25; i++ {
		taken[i] = true
	}
	for i := 0; i < 1000; i++ {
		id, err := a.ProductID(taken)
		require.NoError(t, err)
		assert.False(t, taken[id], "allocated taken id %d", id)
		assert.GreaterOrEqual(t, id, 1)
		assert.LessOrEqual(t, id, 50)
	}
}

func TestCartIDIsSequential(t *testing.T) {
	a := New(100)
	assert.Equal(t, 1, a.CartID(0))
	assert.Equal(t, 2, a.CartID(1))
	assert.Equal(t, 42, a.CartID(41))
}
