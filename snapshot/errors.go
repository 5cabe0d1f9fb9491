package snapshot

import "errors"

var (
	// ErrBadMagic is returned when the input is not a snapshot.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrChecksum is returned when the content does not match the stored CRC32C.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrCorrupt is returned when a header or block is malformed.
	ErrCorrupt = errors.New("snapshot: corrupt")
	// ErrTooLarge is returned when a snapshot exceeds WithMaxCapacity.
	ErrTooLarge = errors.New("snapshot: capacity exceeds limit")
)
