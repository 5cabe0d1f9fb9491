package mem

import (
	"math"
	"math/bits"
	"unsafe"
)

// Alignment is the default byte alignment (one cache line, AVX-512 friendly).
const Alignment = 64

// MaxAlloc is the largest single allocation the runtime accepts: the 48-bit
// heap address space on 64-bit platforms, math.MaxInt on 32-bit ones.
const MaxAlloc = min(1<<48, math.MaxInt)

// IsPowerOfTwo reports whether align is a positive power of two.
func IsPowerOfTwo(align int) bool {
	return align > 0 && bits.OnesCount(uint(align)) == 1
}

// AllocAligned allocates a byte slice of the given size whose first byte sits
// at an address divisible by align. align must be a power of two; values
// below 2 return a plain allocation.
//
// Note: This function allocates up to align-1 bytes more than requested.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align < 2 {
		return make([]byte, size)
	}

	buf := make([]byte, size+align-1)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	offset := AlignOffset(uintptr(ptr), align)

	return buf[offset : offset+size : offset+size]
}

// AlignOffset returns how many bytes must be skipped from addr to reach the
// next multiple of align.
func AlignOffset(addr uintptr, align int) int {
	a := uintptr(align)
	return int((a - (addr & (a - 1))) & (a - 1))
}

// Addr returns the address of the first byte of b, or 0 for an empty slice.
func Addr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b))) //nolint:gosec // address is only compared, never dereferenced
}
