package rawmem

import (
	"encoding/binary"
	"fmt"
)

// Buffer is a positional view: a flat view plus a cursor that satisfies
// 0 <= Start() <= Position() <= End() <= Capacity().
//
// The Read*/Write* accessors operate at the cursor and advance it by the width
// of the value. The at-offset accessors of the flat view are available too and
// leave the cursor alone.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	view
	start int64
	pos   int64
	end   int64
}

// Start returns the lower bound the cursor can be reset to.
func (b *Buffer) Start() int64 { return b.start }

// Position returns the cursor.
func (b *Buffer) Position() int64 { return b.pos }

// End returns the upper bound of the cursor.
func (b *Buffer) End() int64 { return b.end }

// Remaining returns End() - Position().
func (b *Buffer) Remaining() int64 { return b.end - b.pos }

// HasRemaining reports whether Position() < End().
func (b *Buffer) HasRemaining() bool { return b.pos < b.end }

// SetPosition moves the cursor. It must stay within [Start(), End()].
func (b *Buffer) SetPosition(pos int64) error {
	if err := checkPositions(b.start, pos, b.end, b.Capacity()); err != nil {
		return err
	}
	b.pos = pos
	return nil
}

// SetStartPositionEnd replaces all three cursor bounds at once. Nothing
// changes unless the new triple is valid.
func (b *Buffer) SetStartPositionEnd(start, pos, end int64) error {
	if err := checkPositions(start, pos, end, b.Capacity()); err != nil {
		return err
	}
	b.start, b.pos, b.end = start, pos, end
	return nil
}

// ResetPosition moves the cursor back to Start().
func (b *Buffer) ResetPosition() { b.pos = b.start }

// IncrementPosition advances the cursor by n bytes.
func (b *Buffer) IncrementPosition(n int64) error {
	return b.SetPosition(b.pos + n)
}

// next validates that n bytes are available at the cursor and returns the
// cursor. The cursor only moves once the access succeeded.
func (b *Buffer) next(n int64) (int64, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if n < 0 || n > b.end-b.pos {
		return 0, &BoundsError{Offset: b.pos, Length: n, Capacity: b.end}
	}
	return b.pos, nil
}

func (b *Buffer) commit(n int64, err error) error {
	if err == nil {
		b.pos += n
	}
	return err
}

// Region returns a read-only positional view of [Position(), End()) in the
// same byte order, with its cursor at [0, 0, length].
func (b *Buffer) Region() (*Buffer, error) {
	return b.region(b.pos, b.end-b.pos, b.order, false)
}

// WritableRegion is the writable form of Region.
func (b *Buffer) WritableRegion() (*Buffer, error) {
	return b.region(b.pos, b.end-b.pos, b.order, true)
}

// RegionAt returns a read-only positional view of [off, off+length) with its
// cursor at [0, 0, length].
func (b *Buffer) RegionAt(off, length int64, order binary.ByteOrder) (*Buffer, error) {
	return b.region(off, length, order, false)
}

// WritableRegionAt is the writable form of RegionAt.
func (b *Buffer) WritableRegionAt(off, length int64, order binary.ByteOrder) (*Buffer, error) {
	return b.region(off, length, order, true)
}

func (b *Buffer) region(off, length int64, order binary.ByteOrder, writable bool) (*Buffer, error) {
	order, err := b.prepareDerive(order, writable)
	if err != nil {
		return nil, err
	}
	if err := CheckBounds(off, length, b.Capacity()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	tag := b.tag.withRegion().withReadOnly(!writable)
	return &Buffer{view: b.derive(off, length, order, tag), end: length}, nil
}

// Duplicate returns a read-only positional view of the same bytes with an
// independent copy of the cursor.
func (b *Buffer) Duplicate(order binary.ByteOrder) (*Buffer, error) {
	return b.duplicate(order, false)
}

// WritableDuplicate is the writable form of Duplicate. It fails with
// ErrReadOnly if b is read-only.
func (b *Buffer) WritableDuplicate(order binary.ByteOrder) (*Buffer, error) {
	return b.duplicate(order, true)
}

func (b *Buffer) duplicate(order binary.ByteOrder, writable bool) (*Buffer, error) {
	order, err := b.prepareDerive(order, writable)
	if err != nil {
		return nil, err
	}
	tag := b.tag.withDuplicate().withReadOnly(!writable)
	return &Buffer{
		view:  b.derive(0, b.Capacity(), order, tag),
		start: b.start,
		pos:   b.pos,
		end:   b.end,
	}, nil
}

// AsMemory returns a read-only flat view of the same storage.
func (b *Buffer) AsMemory(order binary.ByteOrder) (*Memory, error) {
	return b.asMemory(order, false)
}

// AsWritableMemory returns a writable flat view of the same storage. It fails
// with ErrReadOnly if b is read-only.
func (b *Buffer) AsWritableMemory(order binary.ByteOrder) (*Memory, error) {
	return b.asMemory(order, true)
}

func (b *Buffer) asMemory(order binary.ByteOrder, writable bool) (*Memory, error) {
	order, err := b.prepareDerive(order, writable)
	if err != nil {
		return nil, err
	}
	v := b.derive(0, b.Capacity(), order, b.tag.withReadOnly(!writable).asMemory())
	v.server = b.server
	return &Memory{v}, nil
}

// FillRemaining sets every byte in [Position(), End()) to x without moving the cursor.
func (b *Buffer) FillRemaining(x byte) error {
	return b.Fill(b.pos, b.end-b.pos, x)
}

// ClearRemaining zeroes [Position(), End()) without moving the cursor.
func (b *Buffer) ClearRemaining() error {
	return b.Fill(b.pos, b.end-b.pos, 0)
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%s[start=%d, position=%d, end=%d]", b.view.String(), b.start, b.pos, b.end)
}
