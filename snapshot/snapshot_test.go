package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rawmem"
	"github.com/hupe1980/rawmem/internal/fs"
	"github.com/hupe1980/rawmem/testutil"
)

func newSource(t *testing.T, data []byte, order binary.ByteOrder) *rawmem.Memory {
	t.Helper()
	m, err := rawmem.Allocate(int64(len(data)), rawmem.WithByteOrder(order))
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, m.PutBytes(0, data))
	}
	return m
}

func contents(t *testing.T, m *rawmem.Memory) []byte {
	t.Helper()
	out := make([]byte, m.Capacity())
	require.NoError(t, m.GetBytes(0, out))
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(4711)

	// Half random, half repetitive so both raw and compressed blocks occur.
	data := append(rng.Bytes(40_000), make([]byte, 60_000)...)
	copy(data[70_000:], testutil.Pattern(20_000))

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			src := newSource(t, data, binary.LittleEndian)

			var buf bytes.Buffer
			n, err := Save(ctx, &buf, src, WithCompression(c), WithBlockSize(16<<10))
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)
			if c != CompressionNone {
				assert.Less(t, n, int64(len(data)))
			}

			m, err := Load(ctx, &buf)
			require.NoError(t, err)
			assert.Equal(t, data, contents(t, m))
			assert.False(t, m.IsReadOnly())
			assert.Equal(t, binary.ByteOrder(binary.LittleEndian), m.ByteOrder())
		})
	}
}

func TestLoadKeepsByteOrder(t *testing.T) {
	ctx := context.Background()
	src := newSource(t, make([]byte, 16), binary.BigEndian)
	require.NoError(t, src.PutUint32(0, 0xCAFEBABE))

	var buf bytes.Buffer
	_, err := Save(ctx, &buf, src)
	require.NoError(t, err)
	raw := buf.Bytes()

	m, err := Load(ctx, bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, binary.ByteOrder(binary.BigEndian), m.ByteOrder())
	v, err := m.GetUint32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), v)

	m, err = Load(ctx, bytes.NewReader(raw), WithByteOrder(binary.LittleEndian))
	require.NoError(t, err)
	v, err = m.GetUint32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xBEBAFECA), v)
}

func TestSaveBuffer(t *testing.T) {
	ctx := context.Background()
	src := newSource(t, testutil.Pattern(100), binary.LittleEndian)
	b, err := src.AsBuffer(binary.LittleEndian)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Save(ctx, &buf, b)
	require.NoError(t, err)

	m, err := Load(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, testutil.Pattern(100), contents(t, m))
}

func TestEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	src, err := rawmem.Allocate(0)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := Save(ctx, &buf, src)
	require.NoError(t, err)
	assert.Equal(t, int64(headerSize), n)

	m, err := Load(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Capacity())
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	src := newSource(t, testutil.Pattern(1000), binary.LittleEndian)

	var buf bytes.Buffer
	_, err := Save(ctx, &buf, src, WithBlockSize(256))
	require.NoError(t, err)
	good := buf.Bytes()

	mutate := func(f func([]byte)) []byte {
		b := bytes.Clone(good)
		f(b)
		return b
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"Empty", nil, io.ErrUnexpectedEOF},
		{"ShortHeader", good[:10], io.ErrUnexpectedEOF},
		{"Truncated", good[:len(good)-1], io.ErrUnexpectedEOF},
		{"BadMagic", mutate(func(b []byte) { b[0] = 'X' }), ErrBadMagic},
		{"Version", mutate(func(b []byte) { b[8] = 9 }), ErrUnsupportedVersion},
		{"Compression", mutate(func(b []byte) { b[12] = 7 }), ErrCorrupt},
		{"BlockSize", mutate(func(b []byte) { binary.LittleEndian.PutUint32(b[28:], 0) }), ErrCorrupt},
		{"Checksum", mutate(func(b []byte) { b[24] ^= 0xFF }), ErrChecksum},
		{"Content", mutate(func(b []byte) { b[len(b)-1] ^= 0xFF }), ErrChecksum},
		{"OversizedBlock", mutate(func(b []byte) { binary.LittleEndian.PutUint32(b[headerSize:], 4096) }), ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(ctx, bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("MaxCapacity", func(t *testing.T) {
		_, err := Load(ctx, bytes.NewReader(good), WithMaxCapacity(999))
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestLoadUnbackedCapacity(t *testing.T) {
	ctx := context.Background()

	block := func(data []byte) []byte {
		b := binary.LittleEndian.AppendUint32(nil, uint32(len(data)))
		b = binary.LittleEndian.AppendUint32(b, 0)
		return append(b, data...)
	}

	tests := []struct {
		name     string
		capacity int64
		blocks   []byte
	}{
		{"HeaderOnly", 1 << 62, nil},
		{"OneBlock", 1 << 40, block(testutil.Pattern(16))},
		{"MaxInt64", math.MaxInt64, block(testutil.Pattern(64 << 10))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr, err := (&header{version: Version, capacity: tt.capacity, blockSize: 64 << 10}).encode()
			require.NoError(t, err)

			var m *rawmem.Memory
			require.NotPanics(t, func() {
				m, err = Load(ctx, bytes.NewReader(append(hdr, tt.blocks...)))
			})
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}

	t.Run("InflatedHeader", func(t *testing.T) {
		src := newSource(t, testutil.Pattern(1000), binary.LittleEndian)
		var buf bytes.Buffer
		_, err := Save(ctx, &buf, src, WithBlockSize(256))
		require.NoError(t, err)
		b := buf.Bytes()
		binary.LittleEndian.PutUint64(b[16:], 1<<62)

		_, err = Load(ctx, bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestInvalidOptions(t *testing.T) {
	ctx := context.Background()
	src := newSource(t, []byte{1}, binary.LittleEndian)

	_, err := Save(ctx, io.Discard, src, WithBlockSize(0))
	assert.ErrorIs(t, err, rawmem.ErrInvalidArgument)

	_, err = Save(ctx, io.Discard, src, WithCompression(Compression(9)))
	assert.ErrorIs(t, err, rawmem.ErrInvalidArgument)
}

func TestSaveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := newSource(t, testutil.Pattern(1000), binary.LittleEndian)
	_, err := Save(ctx, io.Discard, src)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveWithBudget(t *testing.T) {
	ctx := context.Background()
	b := rawmem.NewBudget(rawmem.BudgetConfig{IOLimitBytesPerSec: 1 << 30})
	src := newSource(t, testutil.Pattern(4096), binary.LittleEndian)

	var buf bytes.Buffer
	_, err := Save(ctx, &buf, src, WithBudget(b))
	require.NoError(t, err)

	m, err := Load(ctx, &buf, WithBudget(b))
	require.NoError(t, err)
	assert.Equal(t, testutil.Pattern(4096), contents(t, m))
}

func TestSaveFileLoadFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mem.snap")
	data := testutil.NewRNG(1).Bytes(10_000)
	src := newSource(t, data, binary.LittleEndian)

	require.NoError(t, SaveFile(ctx, path, src, WithCompression(CompressionLZ4)))

	m, err := LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, data, contents(t, m))

	_, err = fs.Default.Stat(path + ".tmp")
	assert.Error(t, err)
}

func TestSaveFileFaults(t *testing.T) {
	ctx := context.Background()
	src := newSource(t, testutil.Pattern(10_000), binary.LittleEndian)

	faults := map[string]fs.Fault{
		"Write": {FailAfterBytes: 100, FailAfterRead: -1},
		"Sync":  {FailAfterBytes: -1, FailAfterRead: -1, FailOnSync: true},
		"Close": {FailAfterBytes: -1, FailAfterRead: -1, FailOnClose: true},
		"Open":  {FailAfterBytes: -1, FailAfterRead: -1, FailOnOpen: true},
	}
	for name, fault := range faults {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mem.snap")
			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule(".tmp", fault)

			err := SaveFile(ctx, path, src, withFileSystem(ffs))
			assert.ErrorIs(t, err, fs.ErrInjected)

			_, err = fs.Default.Stat(path)
			assert.Error(t, err, "target must not exist after a failed save")
			_, err = fs.Default.Stat(path + ".tmp")
			assert.Error(t, err, "temporary file must be removed")
		})
	}
}

func TestLoadFileReadFault(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mem.snap")
	src := newSource(t, testutil.Pattern(10_000), binary.LittleEndian)
	require.NoError(t, SaveFile(ctx, path, src))

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("mem.snap", fs.Fault{FailAfterBytes: -1, FailAfterRead: 0})

	_, err := LoadFile(ctx, path, withFileSystem(ffs))
	assert.ErrorIs(t, err, fs.ErrInjected)
}
