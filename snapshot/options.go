package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/rawmem"
	"github.com/hupe1980/rawmem/internal/fs"
)

const (
	// DefaultBlockSize is the uncompressed size of a snapshot block.
	DefaultBlockSize = 256 << 10
	// MaxBlockSize bounds the block size accepted on save and load.
	MaxBlockSize = 16 << 20
)

// Option configures Save and Load.
type Option func(*options)

type options struct {
	compression Compression
	blockSize   int
	budget      *rawmem.Budget
	order       binary.ByteOrder
	maxCapacity int64
	memOpts     []rawmem.Option
	logger      *rawmem.Logger
	fsys        fs.FileSystem
}

// WithCompression sets the block encoding used by Save.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed block size used by Save.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithBudget throttles snapshot IO with the budget's IO limit.
func WithBudget(b *rawmem.Budget) Option {
	return func(o *options) {
		o.budget = b
	}
}

// WithByteOrder makes Load return a resource in order instead of the order
// the snapshot was saved in.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithMaxCapacity rejects snapshots larger than n bytes before allocating.
func WithMaxCapacity(n int64) Option {
	return func(o *options) {
		o.maxCapacity = n
	}
}

// WithMemoryOptions passes opts to rawmem.Wrap when Load creates the
// resource.
func WithMemoryOptions(opts ...rawmem.Option) Option {
	return func(o *options) {
		o.memOpts = append(o.memOpts, opts...)
	}
}

// WithLogger sets the logger for snapshot operations.
func WithLogger(l *rawmem.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// withFileSystem swaps the file system used by SaveFile and LoadFile.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

func applyOptions(opts []Option) (options, error) {
	o := options{
		blockSize: DefaultBlockSize,
		logger:    rawmem.NoopLogger(),
		fsys:      fs.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if !o.compression.valid() {
		return o, fmt.Errorf("%w: unknown compression %v", rawmem.ErrInvalidArgument, o.compression)
	}
	if o.blockSize <= 0 || o.blockSize > MaxBlockSize {
		return o, fmt.Errorf("%w: block size %d not in (0, %d]", rawmem.ErrInvalidArgument, o.blockSize, MaxBlockSize)
	}
	if o.maxCapacity < 0 {
		return o, fmt.Errorf("%w: negative max capacity %d", rawmem.ErrInvalidArgument, o.maxCapacity)
	}
	return o, nil
}
