package snapshot

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/rawmem/internal/conv"
)

// Compression selects how snapshot blocks are encoded.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, modest ratio).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard (slower, better ratio).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool { return c <= CompressionZstd }

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// blockHeaderSize is the size of [uncompressed u32][compressed u32].
// A compressed size of 0 means the block is stored raw.
const blockHeaderSize = 8

// appendBlock appends the encoded form of data, header included, to dst.
// Blocks that do not shrink below 90% of their size are stored raw.
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	raw := len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9
	payload := compressed
	if raw {
		payload = data
	}

	size, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, err
	}
	var csize uint32
	if !raw {
		if csize, err = conv.IntToUint32(len(compressed)); err != nil {
			return nil, err
		}
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], size)
	binary.LittleEndian.PutUint32(hdr[4:], csize)
	dst = append(dst, hdr[:]...)
	return append(dst, payload...), nil
}

// decodeBlock decodes payload into dst, which has the uncompressed length.
func decodeBlock(dst, payload []byte, c Compression) error {
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if n != len(dst) {
			return fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorrupt, n, len(dst))
		}
		return nil
	case CompressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, dst[:0])
		if err != nil {
			return fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if len(out) != len(dst) {
			return fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorrupt, len(out), len(dst))
		}
		return nil
	default:
		return fmt.Errorf("%w: compressed block in uncompressed snapshot", ErrCorrupt)
	}
}
