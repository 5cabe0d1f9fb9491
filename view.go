package rawmem

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Resource is implemented by *Memory and *Buffer. The compare, copy and hash
// functions accept any Resource.
type Resource interface {
	Capacity() int64
	ByteOrder() binary.ByteOrder
	Tag() TypeTag
	IsAlive() bool
	core() *view
}

var (
	_ Resource = (*Memory)(nil)
	_ Resource = (*Buffer)(nil)
)

// view is the state shared by flat and positional views: a window onto
// storage plus how to interpret it.
type view struct {
	data   []byte
	scope  *Scope
	tag    TypeTag
	order  binary.ByteOrder
	acc    accessor
	server GrowthServer
	// offset is the position of data[0] within the root storage.
	offset int64
	// owner marks the view a factory returned for a scoped allocation.
	owner bool
	env   *env
}

func (v *view) core() *view { return v }

// Capacity returns the size of the view in bytes.
func (v *view) Capacity() int64 { return int64(len(v.data)) }

// ByteOrder returns the order multi-byte values are read and written in.
func (v *view) ByteOrder() binary.ByteOrder { return v.order }

// Tag returns the capability descriptor of the view.
func (v *view) Tag() TypeTag { return v.tag }

// IsReadOnly reports whether writes are rejected.
func (v *view) IsReadOnly() bool { return v.tag.IsReadOnly() }

// IsAlive reports whether the underlying storage is still valid. Heap and
// byte-buffer storage is always alive.
func (v *view) IsAlive() bool { return v.scope.IsAlive() }

// RegionOffset returns the offset of this view's first byte within the
// storage of the resource it was derived from.
func (v *view) RegionOffset() int64 { return v.offset }

// GrowthServer returns the collaborator used for growth, or nil.
func (v *view) GrowthServer() GrowthServer { return v.server }

// HasArray reports whether the view is backed by a Go byte slice.
func (v *view) HasArray() bool { return v.tag.IsHeap() }

// Array returns the heap slice backing a writable heap or byte-buffer view.
// Direct and mapped storage is never exposed as a slice.
func (v *view) Array() ([]byte, error) {
	if !v.tag.IsHeap() {
		return nil, fmt.Errorf("%w: %s storage has no array", ErrUnsupported, v.tag.Backing())
	}
	if v.tag.IsReadOnly() {
		return nil, ErrReadOnly
	}
	return v.data, nil
}

func (v *view) String() string {
	return fmt.Sprintf("rawmem(capacity=%d, offset=%d, %s)", len(v.data), v.offset, v.tag)
}

func (v *view) checkAlive() error {
	if !v.scope.IsAlive() {
		return ErrNotAlive
	}
	return nil
}

// readable validates [off, off+n) for reading and returns it.
func (v *view) readable(off, n int64) ([]byte, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if err := CheckBounds(off, n, int64(len(v.data))); err != nil {
		return nil, err
	}
	return v.data[off : off+n : off+n], nil
}

// writable validates [off, off+n) for writing and returns it.
func (v *view) writable(off, n int64) ([]byte, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.tag.IsReadOnly() {
		return nil, ErrReadOnly
	}
	if err := CheckBounds(off, n, int64(len(v.data))); err != nil {
		return nil, err
	}
	return v.data[off : off+n : off+n], nil
}

// derive builds a child view over data[off:off+n]. The caller has validated
// the bounds and liveness.
func (v *view) derive(off, n int64, order binary.ByteOrder, tag TypeTag) view {
	return view{
		data:   v.data[off : off+n : off+n],
		scope:  v.scope,
		tag:    tag.withNative(isNative(order)),
		order:  order,
		acc:    accessorFor(order),
		offset: v.offset + off,
		env:    v.env,
	}
}

// prepareDerive runs the checks every derivation starts with.
func (v *view) prepareDerive(order binary.ByteOrder, writable bool) (binary.ByteOrder, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if writable && v.tag.IsReadOnly() {
		return nil, fmt.Errorf("%w: cannot derive a writable view", ErrReadOnly)
	}
	return canonicalOrder(order)
}

// GetByte reads the byte at off.
func (v *view) GetByte(off int64) (byte, error) {
	b, err := v.readable(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PutByte writes the byte at off.
func (v *view) PutByte(off int64, x byte) error {
	b, err := v.writable(off, 1)
	if err != nil {
		return err
	}
	b[0] = x
	return nil
}

// GetBool reads a one-byte boolean; any non-zero byte is true.
func (v *view) GetBool(off int64) (bool, error) {
	x, err := v.GetByte(off)
	return x != 0, err
}

// PutBool writes a one-byte boolean as 0 or 1.
func (v *view) PutBool(off int64, x bool) error {
	var b byte
	if x {
		b = 1
	}
	return v.PutByte(off, b)
}

// GetUint16 reads a 16-bit unsigned value (a Java-style char) at off.
func (v *view) GetUint16(off int64) (uint16, error) {
	b, err := v.readable(off, 2)
	if err != nil {
		return 0, err
	}
	return v.acc.uint16(b), nil
}

// PutUint16 writes a 16-bit unsigned value at off.
func (v *view) PutUint16(off int64, x uint16) error {
	b, err := v.writable(off, 2)
	if err != nil {
		return err
	}
	v.acc.putUint16(b, x)
	return nil
}

// GetInt16 reads a 16-bit signed value at off.
func (v *view) GetInt16(off int64) (int16, error) {
	x, err := v.GetUint16(off)
	return int16(x), err
}

// PutInt16 writes a 16-bit signed value at off.
func (v *view) PutInt16(off int64, x int16) error {
	return v.PutUint16(off, uint16(x))
}

// GetUint32 reads a 32-bit unsigned value at off.
func (v *view) GetUint32(off int64) (uint32, error) {
	b, err := v.readable(off, 4)
	if err != nil {
		return 0, err
	}
	return v.acc.uint32(b), nil
}

// PutUint32 writes a 32-bit unsigned value at off.
func (v *view) PutUint32(off int64, x uint32) error {
	b, err := v.writable(off, 4)
	if err != nil {
		return err
	}
	v.acc.putUint32(b, x)
	return nil
}

// GetInt32 reads a 32-bit signed value at off.
func (v *view) GetInt32(off int64) (int32, error) {
	x, err := v.GetUint32(off)
	return int32(x), err
}

// PutInt32 writes a 32-bit signed value at off.
func (v *view) PutInt32(off int64, x int32) error {
	return v.PutUint32(off, uint32(x))
}

// GetUint64 reads a 64-bit unsigned value at off.
func (v *view) GetUint64(off int64) (uint64, error) {
	b, err := v.readable(off, 8)
	if err != nil {
		return 0, err
	}
	return v.acc.uint64(b), nil
}

// PutUint64 writes a 64-bit unsigned value at off.
func (v *view) PutUint64(off int64, x uint64) error {
	b, err := v.writable(off, 8)
	if err != nil {
		return err
	}
	v.acc.putUint64(b, x)
	return nil
}

// GetInt64 reads a 64-bit signed value at off.
func (v *view) GetInt64(off int64) (int64, error) {
	x, err := v.GetUint64(off)
	return int64(x), err
}

// PutInt64 writes a 64-bit signed value at off.
func (v *view) PutInt64(off int64, x int64) error {
	return v.PutUint64(off, uint64(x))
}

// GetFloat32 reads an IEEE 754 single at off.
func (v *view) GetFloat32(off int64) (float32, error) {
	x, err := v.GetUint32(off)
	return math.Float32frombits(x), err
}

// PutFloat32 writes an IEEE 754 single at off.
func (v *view) PutFloat32(off int64, x float32) error {
	return v.PutUint32(off, math.Float32bits(x))
}

// GetFloat64 reads an IEEE 754 double at off.
func (v *view) GetFloat64(off int64) (float64, error) {
	x, err := v.GetUint64(off)
	return math.Float64frombits(x), err
}

// PutFloat64 writes an IEEE 754 double at off.
func (v *view) PutFloat64(off int64, x float64) error {
	return v.PutUint64(off, math.Float64bits(x))
}

// GetString decodes n bytes at off as UTF-8.
func (v *view) GetString(off, n int64) (string, error) {
	b, err := v.readable(off, n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: bytes at %d are not valid UTF-8", ErrInvalidArgument, off)
	}
	return string(b), nil
}

// PutString encodes s as UTF-8 at off and returns the number of bytes written.
func (v *view) PutString(off int64, s string) (int64, error) {
	if !utf8.ValidString(s) {
		return 0, fmt.Errorf("%w: string is not valid UTF-8", ErrInvalidArgument)
	}
	b, err := v.writable(off, int64(len(s)))
	if err != nil {
		return 0, err
	}
	return int64(copy(b, s)), nil
}
