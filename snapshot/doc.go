// Package snapshot persists the content of a rawmem resource and loads it
// back as a heap resource.
//
// A snapshot is a 32-byte header followed by blocks of at most the block
// size. Each block is stored raw or compressed with LZ4 or Zstandard, and the
// header carries a CRC32C of the whole content:
//
//	n, err := snapshot.Save(ctx, w, mem, snapshot.WithCompression(snapshot.CompressionZstd))
//	mem, err := snapshot.Load(ctx, r)
//
// SaveFile writes through a temporary file and a rename, so a crash never
// leaves a partial snapshot at the target path.
package snapshot
