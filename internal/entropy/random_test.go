package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamIsReproducible(t *testing.T) {
	a, b := NewStream(99), NewStream(99)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}

	a.Seed(5)
	b.Seed(5)
	assert.Equal(t, a.Uint64(), b.Uint64())
	assert.Equal(t, int64(5), a.Current())
}

func TestHelpersStayInRange(t *testing.T) {
	s := NewStream(1)
	for i := 0; i < 1000; i++ {
		f := Float64(s)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)

		n := Intn(s, 8)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 8)

		r := Range(s, 10, 30)
		assert.GreaterOrEqual(t, r, uint32(10))
		assert.LessOrEqual(t, r, uint32(30))
	}
	assert.Equal(t, uint32(4), Range(s, 4, 4))
}

func TestChanceExtremes(t *testing.T) {
	s := NewStream(3)
	for i := 0; i < 100; i++ {
		assert.False(t, Chance(s, 0))
		assert.True(t, Chance(s, 1))
	}
}

func TestIntnPanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { Intn(NewStream(1), 0) })
}

func TestCryptoSeedNonZero(t *testing.T) {
	assert.NotZero(t, CryptoSeed())
}
