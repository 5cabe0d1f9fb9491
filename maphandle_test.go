package rawmem

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rawmem/internal/fs"
	"github.com/hupe1980/rawmem/testutil"
)

func TestMapReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	b := NewBudget(BudgetConfig{})

	mh, err := Map(path, 0, 4096, WithByteOrder(binary.BigEndian), WithBudget(b))
	require.NoError(t, err)
	assert.Equal(t, path, mh.Path())

	m := mh.Memory()
	assert.True(t, m.Tag().IsMapped())
	assert.True(t, m.Tag().IsDirect())
	assert.False(t, m.IsReadOnly())
	assert.Nil(t, m.GrowthServer())
	assert.Equal(t, int64(4096), b.Stats().MappedBytes)

	require.NoError(t, m.PutUint32(100, 0xCAFEBABE))
	require.NoError(t, mh.Force())
	require.NoError(t, mh.Close())
	assert.Zero(t, b.Stats().MappedBytes)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, 4096)
	assert.Equal(t, uint32(0xCAFEBABE), binary.BigEndian.Uint32(raw[100:]))

	_, err = m.GetUint32(100)
	assert.ErrorIs(t, err, ErrNotAlive)
	assert.ErrorIs(t, mh.Force(), ErrNotAlive)
	assert.NoError(t, mh.Close())
}

func TestMapBudgetAccounting(t *testing.T) {
	// A direct limit smaller than the mapping does not apply to mapped files.
	b := NewBudget(BudgetConfig{MemoryLimitBytes: 1})
	dir := t.TempDir()

	var handles []*MapHandle
	for i := range 3 {
		mh, err := Map(filepath.Join(dir, strconv.Itoa(i)), 0, 8192, WithBudget(b))
		require.NoError(t, err)
		handles = append(handles, mh)
	}
	st := b.Stats()
	assert.Equal(t, int64(3), st.MappedAllocations)
	assert.Equal(t, int64(3*8192), st.MappedBytes)
	assert.Zero(t, st.DirectBytes)

	_, err := AllocateDirect(4096, WithBudget(b))
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

	for _, mh := range handles {
		require.NoError(t, mh.Close())
	}
	assert.Equal(t, BudgetStats{Limit: 1}, b.Stats())
}

func TestMapUnalignedOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	data := testutil.Pattern(10_000)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	mh, err := Map(path, 5000, 100, WithReadOnly(true))
	require.NoError(t, err)
	defer mh.Close()

	got := make([]byte, 100)
	require.NoError(t, mh.Memory().GetBytes(0, got))
	assert.Equal(t, data[5000:5100], got)

	assert.True(t, mh.Memory().IsReadOnly())
	assert.ErrorIs(t, mh.Memory().PutByte(0, 1), ErrReadOnly)
	assert.ErrorIs(t, mh.Force(), ErrReadOnly)
}

func TestMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	data := testutil.NewRNG(5).Bytes(3 * 4096)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	mh, err := MapFile(path)
	require.NoError(t, err)
	defer mh.Close()

	m := mh.Memory()
	assert.Equal(t, int64(len(data)), m.Capacity())
	assert.True(t, m.IsReadOnly())

	h1, err := m.XXHash64(0, m.Capacity(), 0)
	require.NoError(t, err)
	w, err := Wrap(data)
	require.NoError(t, err)
	h2, err := w.XXHash64(0, w.Capacity(), 0)
	require.NoError(t, err)
	assert.Equal(t, h2, h1)

	require.NoError(t, mh.Advise(AccessSequential))
	require.NoError(t, mh.Load())

	loaded, err := mh.IsLoaded()
	if errors.Is(err, ErrUnsupported) {
		t.Skip("page residency not available on this platform")
	}
	require.NoError(t, err)
	assert.True(t, loaded)

	pages, err := mh.Resident()
	require.NoError(t, err)
	assert.False(t, pages.IsEmpty())
	assert.True(t, pages.Contains(0))
}

func TestMapRegionAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	mh, err := Map(path, 0, 64)
	require.NoError(t, err)

	r, err := mh.Memory().WritableRegion(32, 32, NativeOrder)
	require.NoError(t, err)
	require.NoError(t, r.PutByte(0, 1))

	require.NoError(t, mh.Close())
	assert.ErrorIs(t, r.PutByte(0, 1), ErrNotAlive)
	_, err = mh.Resident()
	assert.ErrorIs(t, err, ErrNotAlive)
	assert.ErrorIs(t, mh.Load(), ErrNotAlive)
}

func TestMapErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o600))

	_, err := Map(path, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Map(path, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Map(path, 50, 100, WithReadOnly(true))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Map(filepath.Join(dir, "missing"), 0, 10, WithReadOnly(true))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = MapFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMapZeroCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	mh, err := MapFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), mh.Memory().Capacity())
	assert.True(t, mh.Memory().Tag().IsHeap())
	assert.NoError(t, mh.Force())
	assert.NoError(t, mh.Load())

	pages, err := mh.Resident()
	require.NoError(t, err)
	assert.True(t, pages.IsEmpty())
	assert.NoError(t, mh.Close())
}

func TestMapFaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("data.bin", fs.Fault{FailAfterBytes: -1, FailAfterRead: -1, FailOnOpen: true})

	mc := &BasicMetricsCollector{}
	_, err := Map(path, 0, 64, withFileSystem(ffs), WithMetricsCollector(mc))
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Equal(t, int64(1), mc.GetStats().AllocateErrors)

	ffs = fs.NewFaultyFS(nil)
	ffs.AddRule("data.bin", fs.Fault{FailAfterBytes: -1, FailAfterRead: -1, FailOnTruncate: true})
	_, err = Map(path, 0, 64, withFileSystem(ffs))
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestMapReadOnlyFallback(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can open read-only files for writing")
	}
	path := filepath.Join(t.TempDir(), "ro.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o400))

	mh, err := Map(path, 0, 64)
	require.NoError(t, err)
	defer mh.Close()
	assert.True(t, mh.Memory().IsReadOnly())
}
