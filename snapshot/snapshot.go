package snapshot

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/hupe1980/rawmem"
	"github.com/hupe1980/rawmem/internal/budget"
	"github.com/hupe1980/rawmem/internal/conv"
	ihash "github.com/hupe1980/rawmem/internal/hash"
)

const (
	// Version is the snapshot format written by Save.
	Version = 1

	headerSize    = 32
	flagBigEndian = 1 << 0
)

var magic = [8]byte{'R', 'M', 'S', 'N', 'A', 'P', '0', '1'}

// Source is the content a snapshot is taken of. *rawmem.Memory and
// *rawmem.Buffer satisfy it.
type Source interface {
	Capacity() int64
	ByteOrder() binary.ByteOrder
	GetBytes(off int64, dst []byte) error
}

// header is the fixed prefix of every snapshot. All fields are little-endian.
//
//	[0:8]   magic "RMSNAP01"
//	[8:10]  version
//	[10:12] flags
//	[12]    compression
//	[13:16] reserved
//	[16:24] capacity
//	[24:28] CRC32C of the uncompressed content
//	[28:32] block size
type header struct {
	version     uint16
	flags       uint16
	compression Compression
	capacity    int64
	checksum    uint32
	blockSize   uint32
}

func (h *header) encode() ([]byte, error) {
	m, err := rawmem.Allocate(headerSize, rawmem.WithByteOrder(binary.LittleEndian))
	if err != nil {
		return nil, err
	}
	b, err := m.AsWritableBuffer(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	if _, err := b.Write(magic[:]); err != nil {
		return nil, err
	}
	err = errors.Join(
		b.WriteUint16(h.version),
		b.WriteUint16(h.flags),
		b.WriteByte(byte(h.compression)),
		b.IncrementPosition(3),
		b.WriteInt64(h.capacity),
		b.WriteUint32(h.checksum),
		b.WriteUint32(h.blockSize),
	)
	if err != nil {
		return nil, err
	}
	return m.Array()
}

func decodeHeader(p []byte) (header, error) {
	var h header
	m, err := rawmem.Wrap(p, rawmem.WithByteOrder(binary.LittleEndian), rawmem.WithReadOnly(true))
	if err != nil {
		return h, err
	}
	b, err := m.AsBuffer(binary.LittleEndian)
	if err != nil {
		return h, err
	}

	var got [8]byte
	if err := b.ReadFull(got[:]); err != nil {
		return h, err
	}
	if got != magic {
		return h, ErrBadMagic
	}

	var comp byte
	if h.version, err = b.ReadUint16(); err != nil {
		return h, err
	}
	if h.version != Version {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.version)
	}
	if h.flags, err = b.ReadUint16(); err != nil {
		return h, err
	}
	if comp, err = b.ReadByte(); err != nil {
		return h, err
	}
	if err := b.IncrementPosition(3); err != nil {
		return h, err
	}
	capacity, err := b.ReadUint64()
	if err != nil {
		return h, err
	}
	if h.capacity, err = conv.Uint64ToInt64(capacity); err != nil {
		return h, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if h.checksum, err = b.ReadUint32(); err != nil {
		return h, err
	}
	if h.blockSize, err = b.ReadUint32(); err != nil {
		return h, err
	}

	h.compression = Compression(comp)
	switch {
	case !h.compression.valid():
		return h, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, comp)
	case h.blockSize == 0 || h.blockSize > MaxBlockSize:
		return h, fmt.Errorf("%w: block size %d", ErrCorrupt, h.blockSize)
	}
	return h, nil
}

func isBigEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{0, 1}) == 1
}

// Save writes the content of src to w and returns the number of bytes
// written. The content is read twice: once for the checksum in the header and
// once for the blocks, so src must not change while Save runs.
func Save(ctx context.Context, w io.Writer, src Source, opts ...Option) (int64, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return 0, err
	}
	n, err := save(ctx, w, src, &o)
	if err != nil {
		o.logger.Error("snapshot save failed", "capacity", src.Capacity(), "error", err)
		return n, err
	}
	o.logger.Debug("snapshot saved", "capacity", src.Capacity(), "bytes", n, "compression", o.compression.String())
	return n, nil
}

func save(ctx context.Context, w io.Writer, src Source, o *options) (int64, error) {
	capacity := src.Capacity()
	block := make([]byte, min(int64(o.blockSize), capacity))

	crc := ihash.NewCRC32C()
	if err := eachBlock(src, block, func(p []byte) error {
		_, err := crc.Write(p)
		return err
	}); err != nil {
		return 0, err
	}

	h := header{
		version:     Version,
		compression: o.compression,
		capacity:    capacity,
		checksum:    crc.Sum32(),
		blockSize:   uint32(o.blockSize),
	}
	if isBigEndian(src.ByteOrder()) {
		h.flags |= flagBigEndian
	}
	hdr, err := h.encode()
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: budget.NewRateLimitedWriter(ctx, w, o.budget)}
	if _, err := cw.Write(hdr); err != nil {
		return cw.n, err
	}

	var out []byte
	err = eachBlock(src, block, func(p []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if out, err = appendBlock(out[:0], p, o.compression); err != nil {
			return err
		}
		_, err = cw.Write(out)
		return err
	})
	return cw.n, err
}

func eachBlock(src Source, block []byte, fn func([]byte) error) error {
	capacity := src.Capacity()
	for off := int64(0); off < capacity; {
		p := block[:min(int64(len(block)), capacity-off)]
		if err := src.GetBytes(off, p); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		off += int64(len(p))
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Load reads a snapshot from r into a new heap resource. Unless WithByteOrder
// is given, the resource has the byte order the snapshot was saved in.
// Truncated input fails with io.ErrUnexpectedEOF; when the header was intact
// the error also matches ErrCorrupt.
func Load(ctx context.Context, r io.Reader, opts ...Option) (*rawmem.Memory, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	m, err := load(ctx, r, &o)
	if err != nil {
		o.logger.Error("snapshot load failed", "error", err)
		return nil, err
	}
	o.logger.Debug("snapshot loaded", "capacity", m.Capacity())
	return m, nil
}

func load(ctx context.Context, r io.Reader, o *options) (*rawmem.Memory, error) {
	r = budget.NewRateLimitedReader(ctx, r, o.budget)

	hdr := make([]byte, headerSize)
	if err := readFull(r, hdr); err != nil {
		return nil, err
	}
	h, err := decodeHeader(hdr)
	if err != nil {
		return nil, err
	}
	if o.maxCapacity > 0 && h.capacity > o.maxCapacity {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, h.capacity, o.maxCapacity)
	}

	order := o.order
	if order == nil {
		order = binary.ByteOrder(binary.LittleEndian)
		if h.flags&flagBigEndian != 0 {
			order = binary.BigEndian
		}
	}

	// The header capacity is untrusted: content is staged as blocks arrive,
	// so a lying header costs no more memory than the stream delivers.
	crc := ihash.NewCRC32C()
	data, err := readBlocks(ctx, r, h, crc)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: stream ends before %d bytes of content: %w", ErrCorrupt, h.capacity, err)
	}
	if err != nil {
		return nil, err
	}
	if got := crc.Sum32(); got != h.checksum {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, h.checksum)
	}
	return rawmem.Wrap(data, append(o.memOpts, rawmem.WithByteOrder(order), rawmem.WithReadOnly(false))...)
}

func readBlocks(ctx context.Context, r io.Reader, h header, crc hash.Hash32) ([]byte, error) {
	var (
		bh      [blockHeaderSize]byte
		payload []byte
		block   = make([]byte, min(int64(h.blockSize), h.capacity))
		data    = make([]byte, 0, len(block))
	)
	for off := int64(0); off < h.capacity; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readFull(r, bh[:]); err != nil {
			return nil, err
		}
		size := int64(binary.LittleEndian.Uint32(bh[0:]))
		csize, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(bh[4:]))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if size == 0 || size > int64(h.blockSize) || size > h.capacity-off {
			return nil, fmt.Errorf("%w: block of %d bytes at offset %d", ErrCorrupt, size, off)
		}
		if csize > int(h.blockSize)*2 {
			return nil, fmt.Errorf("%w: compressed block of %d bytes at offset %d", ErrCorrupt, csize, off)
		}

		dst := block[:size]
		if csize == 0 {
			if err := readFull(r, dst); err != nil {
				return nil, err
			}
		} else {
			if cap(payload) < csize {
				payload = make([]byte, csize)
			}
			payload = payload[:csize]
			if err := readFull(r, payload); err != nil {
				return nil, err
			}
			if err := decodeBlock(dst, payload, h.compression); err != nil {
				return nil, err
			}
		}

		_, _ = crc.Write(dst)
		data = append(data, dst...)
		off += size
	}
	return data, nil
}

func readFull(r io.Reader, p []byte) error {
	_, err := io.ReadFull(r, p)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// SaveFile writes a snapshot of src to path. The snapshot is written to a
// temporary file, synced and renamed into place, so path never holds a
// partial snapshot.
func SaveFile(ctx context.Context, path string, src Source, opts ...Option) error {
	o, err := applyOptions(opts)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := o.fsys.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(f, 64<<10)
	if _, err := Save(ctx, bw, src, opts...); err != nil {
		_ = f.Close()
		_ = o.fsys.Remove(tmp)
		return err
	}
	if err := errors.Join(bw.Flush(), f.Sync()); err != nil {
		_ = f.Close()
		_ = o.fsys.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = o.fsys.Remove(tmp)
		return err
	}
	return o.fsys.Rename(tmp, path)
}

// LoadFile reads the snapshot at path into a new heap resource.
func LoadFile(ctx context.Context, path string, opts ...Option) (*rawmem.Memory, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	f, err := o.fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(ctx, bufio.NewReaderSize(f, 64<<10), opts...)
}
