package mmap

import (
	"fmt"
	"os"
	"sync/atomic"
)

// File is the subset of an open file needed to map it.
type File interface {
	Fd() uintptr
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
}

// Mapping represents a memory-mapped region, either file-backed or anonymous.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	// raw is the page-aligned region handed out by the OS.
	raw []byte
	// data is the caller-visible window inside raw.
	data   []byte
	mode   Mode
	anon   bool
	closed atomic.Bool
	// unmap and flush are the platform-specific functions operating on raw.
	unmap func([]byte) error
	flush func([]byte) error
}

// PageSize returns the granularity file offsets are aligned to when mapping.
func PageSize() int {
	return granularity
}

// Map maps size bytes of f starting at offset.
//
// A read-only mapping must lie within the current file. A read-write mapping
// extends the file when offset+size is past its end. The offset does not need
// to be page aligned; the mapping is widened internally and the visible window
// starts exactly at offset. The file may be closed once Map returns.
func Map(f File, offset int64, size int, mode Mode) (*Mapping, error) {
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	if size < 0 {
		return nil, ErrInvalidSize
	}
	end := offset + int64(size)
	if end < offset {
		return nil, ErrInvalidSize
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if end > fi.Size() {
		if mode == ReadOnly {
			return nil, fmt.Errorf("%w: offset %d + size %d exceeds file size %d", ErrOutOfBounds, offset, size, fi.Size())
		}
		if err := f.Truncate(end); err != nil {
			return nil, fmt.Errorf("mmap: extend file to %d: %w", end, err)
		}
	}

	if size == 0 {
		return &Mapping{mode: mode}, nil
	}

	delta := offset % int64(granularity)
	raw, unmap, flush, err := osMapFile(f.Fd(), offset-delta, int(delta)+size, mode)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		raw:   raw,
		data:  raw[delta : int(delta)+size : int(delta)+size],
		mode:  mode,
		unmap: unmap,
		flush: flush,
	}, nil
}

// MapAnon creates a zeroed, read-write anonymous mapping of size bytes.
// The memory lives outside the Go heap until Close is called.
func MapAnon(size int) (*Mapping, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{mode: ReadWrite, anon: true}, nil
	}

	raw, unmap, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		raw:   raw,
		data:  raw[:size:size],
		mode:  ReadWrite,
		anon:  true,
		unmap: unmap,
	}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	if m.unmap != nil && m.raw != nil {
		return m.unmap(m.raw)
	}
	return nil
}

// Bytes returns the mapped window.
// Warning: The slice is valid only until Close() is called.
// Accessing the slice after Close() results in undefined behavior (likely a crash).
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.raw == nil {
		return nil
	}
	return osAdvise(m.raw, pattern)
}

// Flush writes modified pages of a file-backed read-write mapping back to the file
// and waits for completion.
func (m *Mapping) Flush() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.mode != ReadWrite {
		return ErrReadOnly
	}
	if m.anon || m.raw == nil || m.flush == nil {
		return nil
	}
	return m.flush(m.raw)
}

// Load asks the kernel to read the mapping in and then touches every page so
// the contents are resident when Load returns.
func (m *Mapping) Load() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.raw == nil {
		return nil
	}
	if err := osAdvise(m.raw, AccessWillNeed); err != nil {
		return err
	}

	var sink byte
	for i := 0; i < len(m.raw); i += os.Getpagesize() {
		sink ^= m.raw[i]
	}
	touched.Add(uint32(sink))
	return nil
}

// touched keeps the page-touch loop in Load from being optimized away.
var touched atomic.Uint32

// Resident reports, per page of the mapping, whether it is currently in physical
// memory. The first entry covers the page containing the first visible byte.
func (m *Mapping) Resident() ([]bool, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if m.raw == nil {
		return nil, nil
	}
	return osResident(m.raw)
}

// IsLoaded reports whether every page of the mapping is resident.
func (m *Mapping) IsLoaded() (bool, error) {
	pages, err := m.Resident()
	if err != nil {
		return false, err
	}
	for _, p := range pages {
		if !p {
			return false, nil
		}
	}
	return true, nil
}
