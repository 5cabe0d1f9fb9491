package rawmem

import (
	"context"
	"io"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/rawmem/internal/budget"
)

func getSlice[T Element](v *view, off int64, dst []T) error {
	w := widthOf[T]()
	src, err := v.readable(off, int64(len(dst))*int64(w))
	if err != nil {
		return err
	}
	transfer(v.acc, asBytes(dst), src, w)
	return nil
}

func putSlice[T Element](v *view, off int64, src []T) error {
	w := widthOf[T]()
	dst, err := v.writable(off, int64(len(src))*int64(w))
	if err != nil {
		return err
	}
	transfer(v.acc, dst, asBytes(src), w)
	return nil
}

// GetBytes fills dst with the bytes starting at off.
func (v *view) GetBytes(off int64, dst []byte) error { return getSlice(v, off, dst) }

// PutBytes copies src to the bytes starting at off.
func (v *view) PutBytes(off int64, src []byte) error { return putSlice(v, off, src) }

// GetBools fills dst with one-byte booleans starting at off.
func (v *view) GetBools(off int64, dst []bool) error {
	src, err := v.readable(off, int64(len(dst)))
	if err != nil {
		return err
	}
	for i, b := range src {
		dst[i] = b != 0
	}
	return nil
}

// PutBools stores src as one-byte booleans starting at off.
func (v *view) PutBools(off int64, src []bool) error {
	dst, err := v.writable(off, int64(len(src)))
	if err != nil {
		return err
	}
	for i, b := range src {
		dst[i] = 0
		if b {
			dst[i] = 1
		}
	}
	return nil
}

// GetInt16s fills dst with 16-bit values starting at off.
func (v *view) GetInt16s(off int64, dst []int16) error { return getSlice(v, off, dst) }

// PutInt16s stores src as 16-bit values starting at off.
func (v *view) PutInt16s(off int64, src []int16) error { return putSlice(v, off, src) }

// GetUint16s fills dst with 16-bit unsigned values starting at off.
func (v *view) GetUint16s(off int64, dst []uint16) error { return getSlice(v, off, dst) }

// PutUint16s stores src as 16-bit unsigned values starting at off.
func (v *view) PutUint16s(off int64, src []uint16) error { return putSlice(v, off, src) }

// GetInt32s fills dst with 32-bit values starting at off.
func (v *view) GetInt32s(off int64, dst []int32) error { return getSlice(v, off, dst) }

// PutInt32s stores src as 32-bit values starting at off.
func (v *view) PutInt32s(off int64, src []int32) error { return putSlice(v, off, src) }

// GetInt64s fills dst with 64-bit values starting at off.
func (v *view) GetInt64s(off int64, dst []int64) error { return getSlice(v, off, dst) }

// PutInt64s stores src as 64-bit values starting at off.
func (v *view) PutInt64s(off int64, src []int64) error { return putSlice(v, off, src) }

// GetFloat32s fills dst with IEEE 754 singles starting at off.
func (v *view) GetFloat32s(off int64, dst []float32) error { return getSlice(v, off, dst) }

// PutFloat32s stores src as IEEE 754 singles starting at off.
func (v *view) PutFloat32s(off int64, src []float32) error { return putSlice(v, off, src) }

// GetFloat64s fills dst with IEEE 754 doubles starting at off.
func (v *view) GetFloat64s(off int64, dst []float64) error { return getSlice(v, off, dst) }

// PutFloat64s stores src as IEEE 754 doubles starting at off.
func (v *view) PutFloat64s(off int64, src []float64) error { return putSlice(v, off, src) }

// Fill sets n bytes starting at off to x.
func (v *view) Fill(off, n int64, x byte) error {
	b, err := v.writable(off, n)
	if err != nil {
		return err
	}
	for len(b) > 0 {
		c := min(len(b), CopyChunkBytes)
		chunk := b[:c]
		if x == 0 {
			clear(chunk)
		} else {
			for i := range chunk {
				chunk[i] = x
			}
		}
		b = b[c:]
	}
	return nil
}

// Clear zeroes n bytes starting at off.
func (v *view) Clear(off, n int64) error { return v.Fill(off, n, 0) }

// SetBits ORs mask into the byte at off.
func (v *view) SetBits(off int64, mask byte) error {
	b, err := v.writable(off, 1)
	if err != nil {
		return err
	}
	b[0] |= mask
	return nil
}

// ClearBits clears the bits of mask in the byte at off.
func (v *view) ClearBits(off int64, mask byte) error {
	b, err := v.writable(off, 1)
	if err != nil {
		return err
	}
	b[0] &^= mask
	return nil
}

// atomicInt64 returns the word at off for atomic access. The view must be in
// native order and the address 8-byte aligned.
func (v *view) atomicInt64(off int64) (*int64, error) {
	b, err := v.writable(off, 8)
	if err != nil {
		return nil, err
	}
	if !v.acc.native() {
		return nil, ErrUnsupported
	}
	p := unsafe.Pointer(unsafe.SliceData(b)) //nolint:gosec // validated 8-byte window
	if uintptr(p)%8 != 0 {
		return nil, ErrInvalidArgument
	}
	return (*int64)(p), nil
}

// GetAndAddInt64 atomically adds delta to the 64-bit value at off and returns
// the previous value.
func (v *view) GetAndAddInt64(off, delta int64) (int64, error) {
	p, err := v.atomicInt64(off)
	if err != nil {
		return 0, err
	}
	return atomic.AddInt64(p, delta) - delta, nil
}

// GetAndSetInt64 atomically stores x at off and returns the previous value.
func (v *view) GetAndSetInt64(off, x int64) (int64, error) {
	p, err := v.atomicInt64(off)
	if err != nil {
		return 0, err
	}
	return atomic.SwapInt64(p, x), nil
}

// CompareAndSwapInt64 atomically replaces the value at off with x if it
// equals expect.
func (v *view) CompareAndSwapInt64(off, expect, x int64) (bool, error) {
	p, err := v.atomicInt64(off)
	if err != nil {
		return false, err
	}
	return atomic.CompareAndSwapInt64(p, expect, x), nil
}

// WriteRangeTo writes n bytes starting at off to w, at most CopyChunkBytes per
// Write call. The view's budget throttles each chunk when it has an IO limit.
func (v *view) WriteRangeTo(ctx context.Context, w io.Writer, off, n int64) (int64, error) {
	b, err := v.readable(off, n)
	if err != nil {
		return 0, err
	}

	out := io.Writer(w)
	if v.env.budget != nil {
		out = budget.NewRateLimitedWriter(ctx, w, v.env.budget)
	}

	var written int64
	for len(b) > 0 {
		if err := v.checkAlive(); err != nil {
			return written, err
		}
		c := min(len(b), CopyChunkBytes)
		m, err := out.Write(b[:c])
		written += int64(m)
		if err != nil {
			return written, err
		}
		if m < c {
			return written, io.ErrShortWrite
		}
		b = b[c:]
	}
	return written, nil
}
