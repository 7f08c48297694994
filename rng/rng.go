// Package rng provides the uniform randomness source used by the search.
// Every draw in a run goes through one Source from a single goroutine, so a
// fixed seed reproduces the run exactly.
package rng

import "math/rand/v2"

// Source supplies integer-in-range and Bernoulli draws.
type Source interface {
	// Intn returns a uniform integer in [0, n). n must be positive.
	Intn(n int) int
	// Chance returns true with probability p.
	Chance(p float64) bool
}

// PCG is a deterministic Source backed by math/rand/v2's PCG generator.
type PCG struct {
	r *rand.Rand
}

// New creates a PCG source seeded with seed.
func New(seed uint64) *PCG {
	p := &PCG{}
	p.Reseed(seed)
	return p
}

// Reseed restarts the sequence from seed.
func (p *PCG) Reseed(seed uint64) {
	p.r = rand.New(rand.NewPCG(seed, 0))
}

// Intn returns a uniform integer in [0, n).
func (p *PCG) Intn(n int) int {
	return p.r.IntN(n)
}

// Chance returns true with probability prob. prob <= 0 never fires and prob >= 1
// always does, without consuming a draw.
func (p *PCG) Chance(prob float64) bool {
	if prob <= 0 {
		return false
	}
	if prob >= 1 {
		return true
	}
	return p.r.Float64() < prob
}

// Element returns a uniformly chosen element of s. s must not be empty.
func Element[T any](src Source, s []T) T {
	return s[src.Intn(len(s))]
}
