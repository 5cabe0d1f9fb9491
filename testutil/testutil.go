package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// FillBytes fills dst with random bytes.
// Locks only once per call (preferred over calling Intn in a loop).
func (r *RNG) FillBytes(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(dst)
}

// Bytes returns n random bytes.
func (r *RNG) Bytes(n int) []byte {
	b := make([]byte, n)
	r.FillBytes(b)
	return b
}

// Range is a half-open byte range [Offset, Offset+Length).
type Range struct {
	Offset int64
	Length int64
}

// Ranges generates n ranges that lie within a resource of capacity bytes.
// Zero-length ranges and ranges touching either end are included.
func (r *RNG) Ranges(n int, capacity int64) []Range {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Range, n)
	for i := range n {
		off := r.rand.Int63n(capacity + 1)
		switch i % 4 {
		case 0:
			out[i] = Range{Offset: off, Length: 0}
		case 1:
			out[i] = Range{Offset: off, Length: capacity - off}
		default:
			out[i] = Range{Offset: off, Length: r.rand.Int63n(capacity - off + 1)}
		}
	}
	return out
}

// BadRanges generates n ranges that violate the bounds of a resource of
// capacity bytes: negative offsets or lengths, or an end past capacity.
func (r *RNG) BadRanges(n int, capacity int64) []Range {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Range, n)
	for i := range n {
		switch i % 3 {
		case 0:
			out[i] = Range{Offset: -1 - r.rand.Int63n(capacity+1), Length: r.rand.Int63n(capacity + 1)}
		case 1:
			out[i] = Range{Offset: r.rand.Int63n(capacity + 1), Length: -1 - r.rand.Int63n(capacity+1)}
		default:
			off := r.rand.Int63n(capacity + 1)
			out[i] = Range{Offset: off, Length: capacity - off + 1 + r.rand.Int63n(16)}
		}
	}
	return out
}

// Pattern returns n bytes where byte i is i modulo 251. Unlike Bytes the
// content does not depend on a seed, so a mismatch points at the offset.
func Pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}
