package rawmem

import "io"

var (
	_ io.Reader     = (*Buffer)(nil)
	_ io.Writer     = (*Buffer)(nil)
	_ io.ByteReader = (*Buffer)(nil)
	_ io.ByteWriter = (*Buffer)(nil)
)

// ReadByte reads one byte at the cursor. It implements io.ByteReader and
// returns io.EOF once the cursor reaches End().
func (b *Buffer) ReadByte() (byte, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if b.pos >= b.end {
		return 0, io.EOF
	}
	x, err := b.GetByte(b.pos)
	return x, b.commit(1, err)
}

// WriteByte writes one byte at the cursor. It implements io.ByteWriter.
func (b *Buffer) WriteByte(x byte) error {
	p, err := b.next(1)
	if err != nil {
		return err
	}
	return b.commit(1, b.PutByte(p, x))
}

// Read copies bytes from the cursor into p and advances past them. It
// implements io.Reader and returns io.EOF once the cursor reaches End().
func (b *Buffer) Read(p []byte) (int, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if b.pos >= b.end {
		return 0, io.EOF
	}
	n := min(int64(len(p)), b.end-b.pos)
	if err := b.GetBytes(b.pos, p[:n]); err != nil {
		return 0, err
	}
	b.pos += n
	return int(n), nil
}

// Write copies p to the cursor and advances past it. It implements io.Writer.
// Nothing is written unless all of p fits before End().
func (b *Buffer) Write(p []byte) (int, error) {
	pos, err := b.next(int64(len(p)))
	if err != nil {
		return 0, err
	}
	if err := b.PutBytes(pos, p); err != nil {
		return 0, err
	}
	b.pos += int64(len(p))
	return len(p), nil
}

// ReadBool reads a one-byte boolean at the cursor.
func (b *Buffer) ReadBool() (bool, error) {
	p, err := b.next(1)
	if err != nil {
		var zero bool
		return zero, err
	}
	x, err := b.GetBool(p)
	return x, b.commit(1, err)
}

// WriteBool writes a one-byte boolean at the cursor.
func (b *Buffer) WriteBool(x bool) error {
	p, err := b.next(1)
	if err != nil {
		return err
	}
	return b.commit(1, b.PutBool(p, x))
}

// ReadUint16 reads a 16-bit unsigned value at the cursor.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.next(2)
	if err != nil {
		var zero uint16
		return zero, err
	}
	x, err := b.GetUint16(p)
	return x, b.commit(2, err)
}

// WriteUint16 writes a 16-bit unsigned value at the cursor.
func (b *Buffer) WriteUint16(x uint16) error {
	p, err := b.next(2)
	if err != nil {
		return err
	}
	return b.commit(2, b.PutUint16(p, x))
}

// ReadInt16 reads a 16-bit signed value at the cursor.
func (b *Buffer) ReadInt16() (int16, error) {
	p, err := b.next(2)
	if err != nil {
		var zero int16
		return zero, err
	}
	x, err := b.GetInt16(p)
	return x, b.commit(2, err)
}

// WriteInt16 writes a 16-bit signed value at the cursor.
func (b *Buffer) WriteInt16(x int16) error {
	p, err := b.next(2)
	if err != nil {
		return err
	}
	return b.commit(2, b.PutInt16(p, x))
}

// ReadUint32 reads a 32-bit unsigned value at the cursor.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		var zero uint32
		return zero, err
	}
	x, err := b.GetUint32(p)
	return x, b.commit(4, err)
}

// WriteUint32 writes a 32-bit unsigned value at the cursor.
func (b *Buffer) WriteUint32(x uint32) error {
	p, err := b.next(4)
	if err != nil {
		return err
	}
	return b.commit(4, b.PutUint32(p, x))
}

// ReadInt32 reads a 32-bit signed value at the cursor.
func (b *Buffer) ReadInt32() (int32, error) {
	p, err := b.next(4)
	if err != nil {
		var zero int32
		return zero, err
	}
	x, err := b.GetInt32(p)
	return x, b.commit(4, err)
}

// WriteInt32 writes a 32-bit signed value at the cursor.
func (b *Buffer) WriteInt32(x int32) error {
	p, err := b.next(4)
	if err != nil {
		return err
	}
	return b.commit(4, b.PutInt32(p, x))
}

// ReadUint64 reads a 64-bit unsigned value at the cursor.
func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.next(8)
	if err != nil {
		var zero uint64
		return zero, err
	}
	x, err := b.GetUint64(p)
	return x, b.commit(8, err)
}

// WriteUint64 writes a 64-bit unsigned value at the cursor.
func (b *Buffer) WriteUint64(x uint64) error {
	p, err := b.next(8)
	if err != nil {
		return err
	}
	return b.commit(8, b.PutUint64(p, x))
}

// ReadInt64 reads a 64-bit signed value at the cursor.
func (b *Buffer) ReadInt64() (int64, error) {
	p, err := b.next(8)
	if err != nil {
		var zero int64
		return zero, err
	}
	x, err := b.GetInt64(p)
	return x, b.commit(8, err)
}

// WriteInt64 writes a 64-bit signed value at the cursor.
func (b *Buffer) WriteInt64(x int64) error {
	p, err := b.next(8)
	if err != nil {
		return err
	}
	return b.commit(8, b.PutInt64(p, x))
}

// ReadFloat32 reads an IEEE 754 single at the cursor.
func (b *Buffer) ReadFloat32() (float32, error) {
	p, err := b.next(4)
	if err != nil {
		var zero float32
		return zero, err
	}
	x, err := b.GetFloat32(p)
	return x, b.commit(4, err)
}

// WriteFloat32 writes an IEEE 754 single at the cursor.
func (b *Buffer) WriteFloat32(x float32) error {
	p, err := b.next(4)
	if err != nil {
		return err
	}
	return b.commit(4, b.PutFloat32(p, x))
}

// ReadFloat64 reads an IEEE 754 double at the cursor.
func (b *Buffer) ReadFloat64() (float64, error) {
	p, err := b.next(8)
	if err != nil {
		var zero float64
		return zero, err
	}
	x, err := b.GetFloat64(p)
	return x, b.commit(8, err)
}

// WriteFloat64 writes an IEEE 754 double at the cursor.
func (b *Buffer) WriteFloat64(x float64) error {
	p, err := b.next(8)
	if err != nil {
		return err
	}
	return b.commit(8, b.PutFloat64(p, x))
}

func readSlice[T Element](b *Buffer, dst []T) error {
	n := int64(len(dst)) * int64(widthOf[T]())
	p, err := b.next(n)
	if err != nil {
		return err
	}
	return b.commit(n, getSlice(&b.view, p, dst))
}

func writeSlice[T Element](b *Buffer, src []T) error {
	n := int64(len(src)) * int64(widthOf[T]())
	p, err := b.next(n)
	if err != nil {
		return err
	}
	return b.commit(n, putSlice(&b.view, p, src))
}

// ReadBools fills dst with one-byte booleans at the cursor.
func (b *Buffer) ReadBools(dst []bool) error {
	n := int64(len(dst))
	p, err := b.next(n)
	if err != nil {
		return err
	}
	return b.commit(n, b.GetBools(p, dst))
}

// WriteBools stores src as one-byte booleans at the cursor.
func (b *Buffer) WriteBools(src []bool) error {
	n := int64(len(src))
	p, err := b.next(n)
	if err != nil {
		return err
	}
	return b.commit(n, b.PutBools(p, src))
}

// ReadFull fills dst from the cursor. Unlike Read it fails with ErrOutOfRange
// unless len(dst) bytes remain.
func (b *Buffer) ReadFull(dst []byte) error { return readSlice(b, dst) }

// ReadInt16s fills dst with values at the cursor.
func (b *Buffer) ReadInt16s(dst []int16) error { return readSlice(b, dst) }

// WriteInt16s stores src at the cursor.
func (b *Buffer) WriteInt16s(src []int16) error { return writeSlice(b, src) }

// ReadUint16s fills dst with values at the cursor.
func (b *Buffer) ReadUint16s(dst []uint16) error { return readSlice(b, dst) }

// WriteUint16s stores src at the cursor.
func (b *Buffer) WriteUint16s(src []uint16) error { return writeSlice(b, src) }

// ReadInt32s fills dst with values at the cursor.
func (b *Buffer) ReadInt32s(dst []int32) error { return readSlice(b, dst) }

// WriteInt32s stores src at the cursor.
func (b *Buffer) WriteInt32s(src []int32) error { return writeSlice(b, src) }

// ReadInt64s fills dst with values at the cursor.
func (b *Buffer) ReadInt64s(dst []int64) error { return readSlice(b, dst) }

// WriteInt64s stores src at the cursor.
func (b *Buffer) WriteInt64s(src []int64) error { return writeSlice(b, src) }

// ReadFloat32s fills dst with values at the cursor.
func (b *Buffer) ReadFloat32s(dst []float32) error { return readSlice(b, dst) }

// WriteFloat32s stores src at the cursor.
func (b *Buffer) WriteFloat32s(src []float32) error { return writeSlice(b, src) }

// ReadFloat64s fills dst with values at the cursor.
func (b *Buffer) ReadFloat64s(dst []float64) error { return readSlice(b, dst) }

// WriteFloat64s stores src at the cursor.
func (b *Buffer) WriteFloat64s(src []float64) error { return writeSlice(b, src) }
