package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIsStable(t *testing.T) {
	a := Derive(uint64(42), 1, 2, int64(7), 0)
	b := Derive(uint64(42), 1, 2, int64(7), 0)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Derive(uint64(42), 1, 2, int64(7), 1))
	assert.NotEqual(t, Derive("a", "bc"), Derive("ab", "c"))
}

func TestRandIsReproducible(t *testing.T) {
	r1 := Rand(9)
	r2 := Rand(9)
	for range 10 {
		assert.Equal(t, r1.Uint64(), r2.Uint64())
	}
}
