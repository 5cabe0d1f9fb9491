package rawmem

import (
	"fmt"

	"github.com/hupe1980/rawmem/internal/budget"
	"github.com/hupe1980/rawmem/internal/conv"
	"github.com/hupe1980/rawmem/internal/mem"
	"github.com/hupe1980/rawmem/internal/mmap"
)

// ByteSource is an external byte buffer whose contents WrapBuffer exposes,
// such as *bytes.Buffer.
type ByteSource interface {
	Bytes() []byte
}

func newRoot(data []byte, backing Backing, o *options, e *env) view {
	return view{
		data:   data,
		tag:    newTag(backing, o.readOnly, isNative(o.order)),
		order:  o.order,
		acc:    accessorFor(o.order),
		server: o.server,
		env:    e,
	}
}

// Allocate returns a zeroed heap resource of capacity bytes.
func Allocate(capacity int64, opts ...Option) (*Memory, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	e := o.env()

	m, err := allocateHeap(capacity, &o, e)
	e.metrics.RecordAllocate(Heap, capacity, err)
	e.logger.LogAllocate(Heap, capacity, err)
	return m, err
}

func allocateHeap(capacity int64, o *options, e *env) (*Memory, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, capacity)
	}
	if capacity == 0 {
		return zeroMemory(o.order, o.server, e), nil
	}
	if capacity > mem.MaxAlloc-int64(o.alignment) {
		return nil, fmt.Errorf("%w: capacity %d exceeds the maximum allocation", ErrInvalidArgument, capacity)
	}
	size, err := conv.Int64ToInt(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var data []byte
	if o.alignment > 1 {
		data = mem.AllocAligned(size, o.alignment)
	} else {
		data = make([]byte, size)
	}
	return &Memory{newRoot(data, Heap, o, e)}, nil
}

// Wrap returns a resource over b. The caller keeps ownership of b; writes
// through the resource are visible in b and vice versa.
func Wrap(b []byte, opts ...Option) (*Memory, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	e := o.env()
	if len(b) == 0 {
		return zeroMemory(o.order, o.server, e), nil
	}
	return &Memory{newRoot(b[:len(b):len(b)], Heap, &o, e)}, nil
}

// WrapSlice returns a resource over the bytes of s. The resource's byte order
// decides how multi-byte values are read back, so wrapping with NativeOrder
// reads the elements of s as they are.
func WrapSlice[T Element](s []T, opts ...Option) (*Memory, error) {
	return Wrap(asBytes(s), opts...)
}

// WrapBuffer returns a positional resource over the current contents of src,
// with the cursor at [0, 0, len]. The resource stays valid only as long as
// src does not reallocate its storage.
func WrapBuffer(src ByteSource, opts ...Option) (*Buffer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: byte source is nil", ErrInvalidArgument)
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	e := o.env()

	data := src.Bytes()
	var v view
	if len(data) == 0 {
		v = zeroMemory(o.order, nil, e).view
	} else {
		v = newRoot(data[:len(data):len(data)], ByteBuffer, &o, e)
	}
	// Byte-buffer storage cannot be replaced, so it never grows.
	v.server = nil
	v.tag = v.tag.asBuffer()
	return &Buffer{view: v, end: int64(len(data))}, nil
}

// AllocateDirect returns a zeroed off-heap resource of capacity bytes. The
// memory is not managed by the garbage collector: close the Handle to release
// it. A runtime cleanup releases a forgotten Handle eventually, and logs it.
func AllocateDirect(capacity int64, opts ...Option) (*Handle, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	e := o.env()

	h, err := allocateDirect(capacity, &o, e)
	e.metrics.RecordAllocate(Direct, capacity, err)
	e.logger.LogAllocate(Direct, capacity, err)
	return h, err
}

func allocateDirect(capacity int64, o *options, e *env) (*Handle, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, capacity)
	}
	if capacity == 0 {
		return &Handle{mem: zeroMemory(o.order, o.server, e)}, nil
	}

	// Mappings are page aligned; larger alignments need slack to slide into.
	extra := 0
	if o.alignment > mmap.PageSize() {
		extra = o.alignment
	}
	size, err := conv.Int64ToInt(capacity + int64(extra))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if err := e.budget.Reserve(budget.Direct, capacity); err != nil {
		return nil, err
	}
	m, err := mmap.MapAnon(size)
	if err != nil {
		e.budget.Release(budget.Direct, capacity)
		return nil, translateError(err)
	}

	data := m.Bytes()
	if extra > 0 {
		off := mem.AlignOffset(mem.Addr(data), o.alignment)
		data = data[off : off+int(capacity) : off+int(capacity)]
	}

	scope := newScope(m, Direct, capacity, e)
	v := newRoot(data, Direct, o, e)
	v.scope = scope
	v.owner = true
	return &Handle{mem: &Memory{v}, scope: scope}, nil
}
