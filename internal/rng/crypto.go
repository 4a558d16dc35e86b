package rng

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Crypto draws from crypto/rand and is safe for concurrent use
type Crypto struct{}

// Intn returns a random number from 0 <= x < n
// It panics if n <= 0 or the system source fails, the same as math/rand
func (Crypto) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("rng: invalid argument to Intn: %d", n))
	}

	b, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Errorf("rng: could not read from crypto/rand: %w", err))
	}

	return int(b.Int64())
}
