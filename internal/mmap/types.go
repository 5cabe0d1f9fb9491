package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

// Mode selects the protection of a file mapping.
type Mode int

const (
	// ReadOnly maps the file with read access only.
	ReadOnly Mode = iota
	// ReadWrite maps the file shared and writable; stores reach the file.
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is invalid (e.g. negative or too large).
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrOutOfBounds is returned when a read-only mapping would extend past the end of the file.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned when the offset is invalid (e.g. negative).
	ErrInvalidOffset = errors.New("mmap: invalid offset")
	// ErrReadOnly is returned when flushing a mapping that was not opened writable.
	ErrReadOnly = errors.New("mmap: mapping is read-only")
	// ErrUnsupported is returned when the platform lacks the requested facility.
	ErrUnsupported = errors.New("mmap: unsupported on this platform")
)
