package answerkey

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func spread(counts []int, alphabet int) int {
	c := counts[:alphabet]
	return slices.Max(c) - slices.Min(c)
}

func TestAssignBalanced(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7, 12, 23, 40} {
		for s := uint64(0); s < 10; s++ {
			sizes := make([]int, n)
			for i := range sizes {
				sizes[i] = 5
			}
			key := Assign(sizes, true, rng(s))
			require.Len(t, key, n)
			assert.LessOrEqual(t, spread(key.Counts(), 5), 1, "n=%d seed=%d key=%v", n, s, key)
		}
	}
}

func TestAssignBalancedSmallAlphabet(t *testing.T) {
	sizes := []int{4, 4, 4, 4, 4, 4, 4, 4, 4}
	key := Assign(sizes, true, rng(3))
	assert.LessOrEqual(t, spread(key.Counts(), 4), 1)
	assert.Equal(t, 0, key.Counts()[4])
}

func TestAssignMixedPositions(t *testing.T) {
	sizes := []int{5, 0, 3, 0, 5, 2}
	key := Assign(sizes, true, rng(1))

	assert.Equal(t, -1, key[1])
	assert.Equal(t, -1, key[3])
	for i, n := range sizes {
		if n > 0 {
			assert.GreaterOrEqual(t, key[i], 0)
			assert.Less(t, key[i], n)
		}
	}
}

func TestAssignSingleAndUnbalanced(t *testing.T) {
	key := Assign([]int{0, 3, 0}, true, rng(1))
	assert.GreaterOrEqual(t, key[1], 0)
	assert.Less(t, key[1], 3)

	key = Assign([]int{5, 5, 5}, false, rng(1))
	for _, l := range key {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 5)
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	sizes := []int{5, 5, 4, 5, 3}
	assert.Equal(t, Assign(sizes, true, rng(8)), Assign(sizes, true, rng(8)))
}

func TestRotate(t *testing.T) {
	assert.Equal(t, 1, Rotate(0, 1, 5))
	assert.Equal(t, 0, Rotate(4, 1, 5))
	assert.Equal(t, 2, Rotate(1, 4, 3))
	assert.Equal(t, 4, Rotate(0, -1, 5))
	assert.Equal(t, -1, Rotate(-1, 3, 5))
}

func TestRotationDeterminismAndPeriod(t *testing.T) {
	sizes := []int{5, 4, 0, 3}
	base := Key{2, 3, -1, 0}
	for _, step := range []int{1, 2, 3} {
		for v := range 12 {
			got := base.ForVersion(v, step, sizes)
			for i, l := range base {
				assert.Equal(t, Rotate(l, v*step, sizes[i]), got[i])
				if sizes[i] > 0 {
					assert.Equal(t, got[i], base.ForVersion(v+sizes[i], step, sizes)[i], "period %d", sizes[i])
				}
			}
		}
	}
	assert.Equal(t, base, base.ForVersion(0, 1, sizes))
}

func TestLetter(t *testing.T) {
	assert.Equal(t, "A", Letter(0))
	assert.Equal(t, "E", Letter(4))
	assert.Equal(t, "", Letter(5))
	assert.Equal(t, "", Letter(-1))
}
