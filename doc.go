// Package rawmem provides bounds-checked, byte-order-aware access to raw
// memory: Go heap slices, off-heap allocations, memory-mapped files and the
// contents of external byte buffers.
//
// # Views
//
// A Memory is a flat view addressed by explicit byte offsets. A Buffer is the
// same view plus a cursor (start <= position <= end <= capacity) that the
// Read*/Write* accessors advance. Both are cheap descriptors over shared
// storage: Region narrows a view, AsBuffer and AsMemory switch between the two
// forms, and AsReadOnly drops write access. A derived view never grants more
// than its parent.
//
//	m, _ := rawmem.Allocate(1024, rawmem.WithByteOrder(binary.BigEndian))
//	_ = m.PutUint32(0, 0xCAFEBABE)
//	r, _ := m.Region(0, 4, binary.LittleEndian)
//	v, _ := r.GetUint32(0) // 0xBEBAFECA
//
// Every accessor validates liveness, write access and bounds before touching
// memory and reports violations as errors wrapping ErrNotAlive, ErrReadOnly
// or ErrOutOfRange.
//
// # Lifecycle
//
// Heap and byte-buffer storage is managed by the garbage collector. Direct
// allocations and mapped files are owned by a Handle (or MapHandle) and
// released by Close. Closing invalidates every view derived from the
// resource; later accesses fail with ErrNotAlive. A runtime cleanup releases
// a forgotten handle eventually and logs a warning.
//
//	h, _ := rawmem.AllocateDirect(1 << 20)
//	defer h.Close()
//
//	mh, _ := rawmem.Map("data.bin", 0, 4096)
//	defer mh.Close()
//	_ = mh.Memory().PutInt64(0, 42)
//	_ = mh.Force()
//
// # Growth
//
// A resource created with WithGrowthServer can ask the server for a larger
// replacement through RequestGrowth, copy its contents over with CopyTo and
// hand the old resource back with RequestClose.
//
// # Compare, copy and hash
//
// Equal, Compare, Copy and Hash64 work across any two resources. Bulk work is
// split into chunks of at most CopyChunkBytes. Hash64 is xxHash64 and
// MurmurHash3 the 128-bit MurmurHash3 over the stored bytes, so both are
// independent of the view's byte order.
//
// # Observability
//
// WithLogger, WithMetricsCollector and WithBudget attach a structured logger,
// allocation metrics and an accounting budget that can cap direct memory and
// throttle WriteRangeTo.
package rawmem
