//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// MapViewOfFile offsets must be multiples of the allocation granularity,
// which is 64 KiB on every supported Windows release.
const granularity = 64 << 10

func osMapFile(fd uintptr, offset int64, size int, mode Mode) ([]byte, func([]byte) error, func([]byte) error, error) {
	prot := uint32(windows.PAGE_READONLY)
	access := uint32(windows.FILE_MAP_READ)
	if mode == ReadWrite {
		prot = windows.PAGE_READWRITE
		access = windows.FILE_MAP_WRITE
	}

	end := uint64(offset) + uint64(size)
	h, err := windows.CreateFileMapping(windows.Handle(fd), nil, prot, uint32(end>>32), uint32(end), nil)
	if err != nil {
		return nil, nil, nil, err
	}
	// The view keeps its own reference to the mapping object.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, access, uint32(uint64(offset)>>32), uint32(offset), uintptr(size))
	if err != nil {
		return nil, nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	unmap := func([]byte) error {
		return windows.UnmapViewOfFile(addr)
	}
	flush := func([]byte) error {
		return windows.FlushViewOfFile(addr, uintptr(size))
	}
	return data, unmap, flush, nil
}

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	// VirtualAlloc with MEM_COMMIT uses demand paging, like an anonymous mmap,
	// and avoids committing the paging file up front.
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	return data, func([]byte) error {
		return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
	}, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows has no madvise. The page cache still handles sequential access.
	_ = data
	_ = pattern
	return nil
}

func osResident([]byte) ([]bool, error) {
	return nil, ErrUnsupported
}
