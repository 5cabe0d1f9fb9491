package rawmem

import (
	"unsafe"

	"github.com/hupe1980/rawmem/internal/mem"
)

// CopyChunkBytes bounds the bytes moved per step by bulk transfers, fills,
// comparisons and hashing.
const CopyChunkBytes = 1 << 20

// CheckBounds reports whether [offset, offset+length) lies within a resource
// of the given capacity. The single sign test also catches overflow of
// offset+length.
func CheckBounds(offset, length, capacity int64) error {
	if offset|length|(offset+length)|(capacity-(offset+length)) < 0 {
		return &BoundsError{Offset: offset, Length: length, Capacity: capacity}
	}
	return nil
}

func checkPositions(start, pos, end, capacity int64) error {
	if start|pos|end|capacity|(pos-start)|(end-pos)|(capacity-end) < 0 {
		return &PositionError{Start: start, Position: pos, End: end, Capacity: capacity}
	}
	return nil
}

// overlaps reports whether two byte ranges share at least one address.
func overlaps(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	aStart, bStart := mem.Addr(a), mem.Addr(b)
	return aStart < bStart+uintptr(len(b)) && bStart < aStart+uintptr(len(a))
}

// sameStart reports whether two non-empty ranges begin at the same address.
func sameStart(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && unsafe.SliceData(a) == unsafe.SliceData(b)
}
