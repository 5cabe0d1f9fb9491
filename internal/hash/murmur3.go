package hash

import "github.com/twmb/murmur3"

// Murmur3 returns the 128-bit MurmurHash3 (x64 variant) of data. Both
// internal lanes start from seed.
func Murmur3(data []byte, seed uint64) (h1, h2 uint64) {
	return murmur3.SeedSum128(seed, seed, data)
}

// NewMurmur3 returns a streaming digest producing the same value as Murmur3
// over the concatenation of everything written to it.
func NewMurmur3(seed uint64) murmur3.Hash128 {
	return murmur3.SeedNew128(seed, seed)
}
