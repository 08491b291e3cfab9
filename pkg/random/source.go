package random

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var ErrInvalidBound = errors.New("bound must be positive")

// Source supplies random numbers for shuffling and cosmetic choices
type Source interface {
	// NextInt returns a uniform integer in [0, bound)
	NextInt(bound int) (int, error)
	// NextDouble returns a uniform float in [0, 1)
	NextDouble() (float64, error)
}

const doubleBits = 53

// Crypto is a Source backed by the operating system CSPRNG
type Crypto struct{}

// NewCrypto creates a crypto-backed Source
func NewCrypto() *Crypto {
	return &Crypto{}
}

// NextInt implements Source
func (Crypto) NextInt(bound int) (int, error) {
	if bound <= 0 {
		return 0, ErrInvalidBound
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(bound)))
	if err != nil {
		return 0, fmt.Errorf("error reading random int: %w", err)
	}
	return int(n.Int64()), nil
}

// NextDouble implements Source
func (Crypto) NextDouble() (float64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<doubleBits))
	if err != nil {
		return 0, fmt.Errorf("error reading random double: %w", err)
	}
	return float64(n.Int64()) / float64(int64(1)<<doubleBits), nil
}
