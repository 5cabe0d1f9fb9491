package rawmem

import "strings"

// TypeTag is the immutable capability descriptor of a view. It answers the
// cheap structural questions (read-only? mapped? positional?) in O(1).
//
// The bit layout is stable enough to decode for diagnostics but is not a
// persisted format:
//
//	bit 0  read-only
//	bit 1  region
//	bit 2  duplicate (positional views only)
//	bit 3  direct (off-heap)
//	bit 4  mapped (always together with direct)
//	bit 5  non-native byte order
//	bit 6  positional (Buffer)
//	bit 7  backed by an external byte buffer
type TypeTag uint8

const (
	tagReadOnly  TypeTag = 1 << 0
	tagRegion    TypeTag = 1 << 1
	tagDuplicate TypeTag = 1 << 2
	tagDirect    TypeTag = 1 << 3
	tagMapped    TypeTag = 1 << 4
	tagNonNative TypeTag = 1 << 5
	tagBuffer    TypeTag = 1 << 6
	tagByteBuf   TypeTag = 1 << 7
)

// Backing identifies the storage kind behind a view.
type Backing int

const (
	// Heap storage is a Go slice owned by the garbage collector.
	Heap Backing = iota
	// Direct storage is anonymous off-heap memory released explicitly.
	Direct
	// Mapped storage is a memory-mapped file region released explicitly.
	Mapped
	// ByteBuffer storage is the contents of a caller-owned byte buffer.
	ByteBuffer
)

func (b Backing) String() string {
	switch b {
	case Direct:
		return "Direct"
	case Mapped:
		return "Mapped"
	case ByteBuffer:
		return "ByteBuffer"
	default:
		return "Heap"
	}
}

func newTag(backing Backing, readOnly, native bool) TypeTag {
	var t TypeTag
	switch backing {
	case Direct:
		t = tagDirect
	case Mapped:
		t = tagDirect | tagMapped
	case ByteBuffer:
		t = tagByteBuf
	}
	if readOnly {
		t |= tagReadOnly
	}
	if !native {
		t |= tagNonNative
	}
	return t
}

func (t TypeTag) withReadOnly(readOnly bool) TypeTag {
	if readOnly {
		return t | tagReadOnly
	}
	return t
}

func (t TypeTag) withRegion() TypeTag    { return t | tagRegion }
func (t TypeTag) withDuplicate() TypeTag { return t | tagDuplicate }

func (t TypeTag) withNative(native bool) TypeTag {
	if native {
		return t &^ tagNonNative
	}
	return t | tagNonNative
}

// asBuffer marks the tag positional. A duplicate bit is meaningless on a flat
// view, so asMemory drops it.
func (t TypeTag) asBuffer() TypeTag { return t | tagBuffer }
func (t TypeTag) asMemory() TypeTag { return t &^ (tagBuffer | tagDuplicate) }

// IsReadOnly reports whether writes through the view are rejected.
func (t TypeTag) IsReadOnly() bool { return t&tagReadOnly != 0 }

// IsRegion reports whether the view was narrowed from a parent.
func (t TypeTag) IsRegion() bool { return t&tagRegion != 0 }

// IsDuplicate reports whether the view aliases another positional view.
func (t TypeTag) IsDuplicate() bool { return t&tagDuplicate != 0 }

// IsHeap reports whether the storage is GC-managed.
func (t TypeTag) IsHeap() bool { return t&tagDirect == 0 }

// IsDirect reports whether the storage lives off-heap. Mapped views are direct.
func (t TypeTag) IsDirect() bool { return t&tagDirect != 0 }

// IsMapped reports whether the storage is a mapped file.
func (t TypeTag) IsMapped() bool { return t&tagMapped != 0 }

// IsByteBuffer reports whether the storage belongs to an external byte buffer.
func (t TypeTag) IsByteBuffer() bool { return t&tagByteBuf != 0 }

// IsNativeOrder reports whether multi-byte values use the platform byte order.
func (t TypeTag) IsNativeOrder() bool { return t&tagNonNative == 0 }

// IsBuffer reports whether the view carries a positional cursor.
func (t TypeTag) IsBuffer() bool { return t&tagBuffer != 0 }

// Backing returns the storage kind encoded in the tag.
func (t TypeTag) Backing() Backing {
	switch {
	case t&tagByteBuf != 0:
		return ByteBuffer
	case t&tagMapped != 0:
		return Mapped
	case t&tagDirect != 0:
		return Direct
	default:
		return Heap
	}
}

// String decodes the tag, for example "ReadOnly, Region, Direct, Mapped, NonNativeOrder, Buffer".
func (t TypeTag) String() string {
	parts := make([]string, 0, 7)
	if t.IsReadOnly() {
		parts = append(parts, "ReadOnly")
	} else {
		parts = append(parts, "Writable")
	}
	if t.IsRegion() {
		parts = append(parts, "Region")
	}
	if t.IsDuplicate() {
		parts = append(parts, "Duplicate")
	}
	switch {
	case t.IsMapped():
		parts = append(parts, "Direct", "Mapped")
	case t.IsDirect():
		parts = append(parts, "Direct")
	default:
		parts = append(parts, "Heap")
	}
	if t.IsByteBuffer() {
		parts = append(parts, "ByteBuffer")
	}
	if t.IsNativeOrder() {
		parts = append(parts, "NativeOrder")
	} else {
		parts = append(parts, "NonNativeOrder")
	}
	if t.IsBuffer() {
		parts = append(parts, "Buffer")
	} else {
		parts = append(parts, "Memory")
	}
	return strings.Join(parts, ", ")
}
