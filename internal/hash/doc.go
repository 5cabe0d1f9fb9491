// Package hash provides the checksums and hash functions used for content
// hashing and data integrity.
//
// # xxHash64
//
// XXH64 is the content hash for raw memory ranges. The byte stream is always
// interpreted little-endian, so results are identical across platforms and
// independent of the byte order a resource is viewed with. XXH64Uint64 is a
// dedicated path for a single 64-bit value that avoids building a byte slice.
//
//	h := hash.XXH64(data, seed)
//
//	d := hash.NewXXH64(seed)
//	d.Write(chunk1)
//	d.Write(chunk2)
//	h = d.Sum64()
//
// # MurmurHash3
//
// Murmur3 is the 128-bit x64 variant, for callers that need hashes compatible
// with sketches and other tools built on MurmurHash3. Like XXH64 it reads the
// bytes as stored.
//
//	h1, h2 := hash.Murmur3(data, seed)
//
// # CRC32-Castagnoli (CRC32C)
//
// A CRC32C digest covers the uncompressed content of every snapshot.
//
//	d := hash.NewCRC32C()
//	d.Write(block)
//	checksum := d.Sum32()
package hash
