package rawmem

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
)

// Memory is a flat, bounds-checked view of raw bytes. Every accessor takes an
// explicit byte offset.
//
// A Memory is not safe for concurrent mutation. Concurrent reads of a resource
// that nobody writes are safe.
type Memory struct {
	view
}

// zeroMemory returns the representation every zero-capacity resource shares:
// heap backed, read-only, no storage. It keeps the requested byte order so a
// growth server can hand back a replacement in that order.
func zeroMemory(order binary.ByteOrder, server GrowthServer, e *env) *Memory {
	return &Memory{view{
		data:   []byte{},
		tag:    newTag(Heap, true, isNative(order)),
		order:  order,
		acc:    accessorFor(order),
		server: server,
		env:    e,
	}}
}

// Region returns a read-only view of [off, off+length) rebased to offset 0.
func (m *Memory) Region(off, length int64, order binary.ByteOrder) (*Memory, error) {
	return m.region(off, length, order, false)
}

// WritableRegion returns a writable view of [off, off+length) rebased to
// offset 0. It fails with ErrReadOnly if m is read-only.
func (m *Memory) WritableRegion(off, length int64, order binary.ByteOrder) (*Memory, error) {
	return m.region(off, length, order, true)
}

func (m *Memory) region(off, length int64, order binary.ByteOrder, writable bool) (*Memory, error) {
	order, err := m.prepareDerive(order, writable)
	if err != nil {
		return nil, err
	}
	if err := CheckBounds(off, length, m.Capacity()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	tag := m.tag.withRegion().withReadOnly(!writable).asMemory()
	return &Memory{m.derive(off, length, order, tag)}, nil
}

// AsReadOnly returns a read-only alias of m with the same byte order.
func (m *Memory) AsReadOnly() (*Memory, error) {
	if err := m.checkAlive(); err != nil {
		return nil, err
	}
	v := m.derive(0, m.Capacity(), m.order, m.tag.withReadOnly(true))
	v.server = m.server
	return &Memory{v}, nil
}

// AsBuffer returns a read-only positional view of the same storage with the
// cursor at [0, 0, capacity].
func (m *Memory) AsBuffer(order binary.ByteOrder) (*Buffer, error) {
	return m.asBuffer(order, false)
}

// AsWritableBuffer returns a writable positional view of the same storage
// with the cursor at [0, 0, capacity]. It fails with ErrReadOnly if m is read-only.
func (m *Memory) AsWritableBuffer(order binary.ByteOrder) (*Buffer, error) {
	return m.asBuffer(order, true)
}

func (m *Memory) asBuffer(order binary.ByteOrder, writable bool) (*Buffer, error) {
	order, err := m.prepareDerive(order, writable)
	if err != nil {
		return nil, err
	}
	v := m.derive(0, m.Capacity(), order, m.tag.withReadOnly(!writable).asBuffer())
	v.server = m.server
	return &Buffer{view: v, end: m.Capacity()}, nil
}

// Close releases the storage when m is the resource a factory returned for a
// direct allocation or mapping. It is a no-op for heap and byte-buffer
// storage, and fails with ErrUnsupported on derived views, which never own
// their storage.
func (m *Memory) Close() error {
	if m.scope == nil {
		return nil
	}
	if !m.owner {
		return fmt.Errorf("%w: derived views cannot close their storage", ErrUnsupported)
	}
	return m.scope.Close()
}

// WriteTo writes the whole resource to w. It implements io.WriterTo.
func (m *Memory) WriteTo(w io.Writer) (int64, error) {
	return m.WriteRangeTo(context.Background(), w, 0, m.Capacity())
}
