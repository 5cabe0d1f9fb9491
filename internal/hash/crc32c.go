package hash

import (
	"hash"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// NewCRC32C returns a streaming CRC-32 digest over the Castagnoli polynomial.
// Snapshots checksum their uncompressed content with it, one block at a time.
func NewCRC32C() hash.Hash32 {
	return crc32.New(castagnoli)
}
