package rng

import (
	"math/rand"
	"sync"
)

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Seeded is a deterministic Generator backed by math/rand
// It is not safe for concurrent use and should only be used by tests and replays
type Seeded struct {
	r *rand.Rand
}

// NewSeeded returns a deterministic generator
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: rand.New(rand.NewSource(seed))} // nolint:gosec
}

// Intn returns a random number from 0 <= x < n
func (s *Seeded) Intn(n int) int {
	return s.r.Intn(n)
}

// Locked serializes calls to a Generator that is not safe for concurrent use
type Locked struct {
	mu sync.Mutex
	g  Generator
}

// NewLocked wraps g
func NewLocked(g Generator) *Locked {
	return &Locked{g: g}
}

// Intn returns a random number from 0 <= x < n
func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.g.Intn(n)
}
