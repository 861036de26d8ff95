package profile

import (
	"crypto/rand"
	"math/big"
)

// Source provides uniformly distributed random integers.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn returns a random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0 or if crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("profile: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("profile: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}
