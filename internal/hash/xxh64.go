package hash

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

const (
	prime1 uint64 = 11400714785074694791
	prime2 uint64 = 14029467366897019727
	prime3 uint64 = 1609587929392839161
	prime4 uint64 = 9650029242287828579
	prime5 uint64 = 2870177450012600261
)

// XXH64 computes the 64-bit xxHash of data with the given seed.
func XXH64(data []byte, seed uint64) uint64 {
	if seed == 0 {
		return xxhash.Sum64(data)
	}
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(data)
	return d.Sum64()
}

// NewXXH64 returns a streaming xxHash64 digest with the given seed.
// Feeding it in pieces yields the same value as XXH64 over the concatenation.
func NewXXH64(seed uint64) *xxhash.Digest {
	return xxhash.NewWithSeed(seed)
}

// XXH64Uint64 hashes a single 64-bit value as if it were the 8 bytes of its
// little-endian encoding, without materializing them.
func XXH64Uint64(v, seed uint64) uint64 {
	h := seed + prime5 + 8

	k := bits.RotateLeft64(v*prime2, 31) * prime1
	h ^= k
	h = bits.RotateLeft64(h, 27)*prime1 + prime4

	h ^= h >> 33
	h *= prime2
	h ^= h >> 29
	h *= prime3
	h ^= h >> 32
	return h
}
