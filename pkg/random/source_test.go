package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoNextIntWithinBound(t *testing.T) {
	src := NewCrypto()
	seen := make(map[int]bool)

	for i := 0; i < 500; i++ {
		n, err := src.NextInt(6)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 6)
		seen[n] = true
	}

	assert.Len(t, seen, 6, "500 draws should hit every face of a die")
}

func TestCryptoNextIntRejectsBadBound(t *testing.T) {
	_, err := NewCrypto().NextInt(0)
	assert.ErrorIs(t, err, ErrInvalidBound)
}

func TestCryptoNextDoubleRange(t *testing.T) {
	src := NewCrypto()
	for i := 0; i < 200; i++ {
		f, err := src.NextDouble()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}
