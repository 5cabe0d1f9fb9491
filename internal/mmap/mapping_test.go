package mmap

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mmap_test.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

// mapReadOnly maps the whole file at path read-only.
func mapReadOnly(t *testing.T, path string) *Mapping {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	fi, err := f.Stat()
	require.NoError(t, err)
	m, err := Map(f, 0, int(fi.Size()), ReadOnly)
	require.NoError(t, err)
	return m
}

func TestMmap_ReadOnly(t *testing.T) {
	content := []byte("Hello, Mmap!")
	m := mapReadOnly(t, writeTemp(t, content))
	defer m.Close()

	assert.Equal(t, content, m.Bytes())
	assert.Equal(t, "Mmap!", string(m.Bytes()[7:]))
	assert.ErrorIs(t, m.Flush(), ErrReadOnly)
}

func TestMmap_EmptyFile(t *testing.T) {
	m := mapReadOnly(t, writeTemp(t, nil))
	defer m.Close()

	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Load())
	loaded, err := m.IsLoaded()
	require.NoError(t, err)
	assert.True(t, loaded)
}

func TestMmap_UnalignedOffset(t *testing.T) {
	page := PageSize()
	content := make([]byte, 2*page+100)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := writeTemp(t, content)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	off := int64(page + 13)
	m, err := Map(f, off, 50, ReadOnly)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, content[off:off+50], m.Bytes())
	assert.Equal(t, 50, cap(m.Bytes()))
}

func TestMmap_ReadOnlyPastEnd(t *testing.T) {
	f, err := os.Open(writeTemp(t, make([]byte, 64)))
	require.NoError(t, err)
	defer f.Close()

	_, err = Map(f, 32, 64, ReadOnly)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = Map(f, -1, 8, ReadOnly)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = Map(f, 0, -8, ReadOnly)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMmap_ReadWriteExtendsAndFlushes(t *testing.T) {
	path := writeTemp(t, []byte("abc"))
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)

	m, err := Map(f, 10, 6, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	copy(m.Bytes(), "mapped")
	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 16)
	assert.Equal(t, "abc", string(got[:3]))
	assert.Equal(t, "mapped", string(got[10:]))
}

func TestMmap_Anon(t *testing.T) {
	m, err := MapAnon(3 * os.Getpagesize())
	require.NoError(t, err)

	data := m.Bytes()
	assert.Len(t, data, 3*os.Getpagesize())
	assert.Equal(t, byte(0), data[0])
	data[0], data[len(data)-1] = 7, 9
	assert.Equal(t, byte(9), m.Bytes()[len(data)-1])
	assert.NoError(t, m.Flush())

	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMmap_LoadAndResident(t *testing.T) {
	m, err := MapAnon(4 * os.Getpagesize())
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Advise(AccessSequential))
	require.NoError(t, m.Load())

	pages, err := m.Resident()
	if runtime.GOOS != "linux" {
		assert.ErrorIs(t, err, ErrUnsupported)
		return
	}
	require.NoError(t, err)
	assert.Len(t, pages, 4)

	loaded, err := m.IsLoaded()
	require.NoError(t, err)
	assert.True(t, loaded)
}

func TestMmap_AfterClose(t *testing.T) {
	m := mapReadOnly(t, writeTemp(t, []byte("data")))
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
	assert.ErrorIs(t, m.Load(), ErrClosed)
	assert.ErrorIs(t, m.Flush(), ErrClosed)
	_, err := m.Resident()
	assert.ErrorIs(t, err, ErrClosed)
}
