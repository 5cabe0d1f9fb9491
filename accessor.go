package rawmem

import (
	"encoding/binary"
	"math/bits"
	"unsafe"
)

// accessor is the closed set of byte-order strategies. It is picked once when a
// view is built and never consulted through the tag.
type accessor interface {
	uint16(b []byte) uint16
	uint32(b []byte) uint32
	uint64(b []byte) uint64
	putUint16(b []byte, v uint16)
	putUint32(b []byte, v uint32)
	putUint64(b []byte, v uint64)
	// fixup converts the elements of width bytes in b between the stored layout
	// and the host layout, in place.
	fixup(b []byte, width int)
	native() bool
}

type nativeAccessor struct{}

func (nativeAccessor) uint16(b []byte) uint16       { return binary.NativeEndian.Uint16(b) }
func (nativeAccessor) uint32(b []byte) uint32       { return binary.NativeEndian.Uint32(b) }
func (nativeAccessor) uint64(b []byte) uint64       { return binary.NativeEndian.Uint64(b) }
func (nativeAccessor) putUint16(b []byte, v uint16) { binary.NativeEndian.PutUint16(b, v) }
func (nativeAccessor) putUint32(b []byte, v uint32) { binary.NativeEndian.PutUint32(b, v) }
func (nativeAccessor) putUint64(b []byte, v uint64) { binary.NativeEndian.PutUint64(b, v) }
func (nativeAccessor) fixup([]byte, int)            {}
func (nativeAccessor) native() bool                 { return true }

type swappedAccessor struct{}

func (swappedAccessor) uint16(b []byte) uint16 {
	return bits.ReverseBytes16(binary.NativeEndian.Uint16(b))
}

func (swappedAccessor) uint32(b []byte) uint32 {
	return bits.ReverseBytes32(binary.NativeEndian.Uint32(b))
}

func (swappedAccessor) uint64(b []byte) uint64 {
	return bits.ReverseBytes64(binary.NativeEndian.Uint64(b))
}

func (swappedAccessor) putUint16(b []byte, v uint16) {
	binary.NativeEndian.PutUint16(b, bits.ReverseBytes16(v))
}

func (swappedAccessor) putUint32(b []byte, v uint32) {
	binary.NativeEndian.PutUint32(b, bits.ReverseBytes32(v))
}

func (swappedAccessor) putUint64(b []byte, v uint64) {
	binary.NativeEndian.PutUint64(b, bits.ReverseBytes64(v))
}

func (swappedAccessor) fixup(b []byte, width int) {
	switch width {
	case 2:
		for i := 0; i+2 <= len(b); i += 2 {
			binary.NativeEndian.PutUint16(b[i:], bits.ReverseBytes16(binary.NativeEndian.Uint16(b[i:])))
		}
	case 4:
		for i := 0; i+4 <= len(b); i += 4 {
			binary.NativeEndian.PutUint32(b[i:], bits.ReverseBytes32(binary.NativeEndian.Uint32(b[i:])))
		}
	case 8:
		for i := 0; i+8 <= len(b); i += 8 {
			binary.NativeEndian.PutUint64(b[i:], bits.ReverseBytes64(binary.NativeEndian.Uint64(b[i:])))
		}
	}
}

func (swappedAccessor) native() bool { return false }

func accessorFor(order binary.ByteOrder) accessor {
	if isNative(order) {
		return nativeAccessor{}
	}
	return swappedAccessor{}
}

// Element is the set of fixed-width value types that bulk transfers and
// WrapSlice operate on.
type Element interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

func widthOf[T Element]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// asBytes reinterprets the backing array of s as bytes in host layout.
func asBytes[T Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*widthOf[T]()) //nolint:gosec // typed slice reinterpreted as its own bytes
}

// transfer copies src to dst in chunks of at most CopyChunkBytes and converts
// each chunk's elements at their destination. The source is never modified.
func transfer(acc accessor, dst, src []byte, width int) {
	for len(dst) > 0 {
		n := min(len(dst), CopyChunkBytes)
		copy(dst[:n], src[:n])
		acc.fixup(dst[:n], width)
		dst, src = dst[n:], src[n:]
	}
}
