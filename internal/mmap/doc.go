// Package mmap provides file-backed and anonymous memory mappings.
//
// # Overview
//
// A [Mapping] owns a region of address space outside the Go heap. File-backed
// mappings give zero-copy access to file contents at any byte offset; the
// page alignment the OS requires is handled internally. Anonymous mappings
// provide zeroed off-heap memory that lives until it is explicitly released.
//
// # Usage
//
//	f, _ := os.OpenFile("data.bin", os.O_RDWR|os.O_CREATE, 0o644)
//	m, err := mmap.Map(f, 100, 4096, mmap.ReadWrite) // extends the file if needed
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	data[0] = 1
//	_ = m.Flush() // msync
//
//	anon, _ := mmap.MapAnon(1 << 20)
//	defer anon.Close()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2), madvise(2). Page residency
//     via mincore(2) is reported on Linux only.
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (madvise is a no-op)
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. Close is idempotent and
// protected by an atomic flag. Callers must ensure no goroutine touches
// Bytes() after Close returns.
package mmap
