package ports

// RNGPort provides the random draws used for row sampling. Implementations
// seeded with the same value must return the same sequence of draws.
type RNGPort interface {
	// Sample returns min(k, n) distinct indexes from [0, n) in draw order
	Sample(n, k int) []int
}
