package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleIsPermutation(t *testing.T) {
	original := []string{"a", "b", "c", "d", "e", "f"}
	shuffled := make([]string, len(original))
	copy(shuffled, original)

	require.NoError(t, Shuffle(shuffled))
	assert.ElementsMatch(t, original, shuffled)
}

func TestShuffleSmallSlices(t *testing.T) {
	require.NoError(t, Shuffle([]int{}))
	require.NoError(t, Shuffle([]int{1}))

	pair := []int{1, 2}
	require.NoError(t, Shuffle(pair))
	assert.ElementsMatch(t, []int{1, 2}, pair)
}

func TestIntn(t *testing.T) {
	for i := 0; i < 100; i++ {
		v, err := Intn(5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}

	_, err := Intn(0)
	assert.Error(t, err)
}
