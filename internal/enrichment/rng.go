package enrichment

import (
	"math/rand"
	"sync"
)

// SeededRNG draws sample indexes from a seeded stream. Two instances created
// with the same seed return the same draws in the same order.
type SeededRNG struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRNG creates a sampler seeded with seed
func NewSeededRNG(seed int64) *SeededRNG {
	return &SeededRNG{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns min(k, n) distinct indexes from [0, n) using a partial
// Fisher-Yates shuffle
func (s *SeededRNG) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
