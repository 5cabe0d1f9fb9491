//go:build linux

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func osResident(data []byte) ([]bool, error) {
	page := os.Getpagesize()
	n := (len(data) + page - 1) / page
	vec := make([]byte, n)

	_, _, errno := unix.Syscall(unix.SYS_MINCORE,
		uintptr(unsafe.Pointer(unsafe.SliceData(data))),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(unsafe.SliceData(vec))))
	if errno != 0 {
		return nil, errno
	}

	pages := make([]bool, n)
	for i, v := range vec {
		pages[i] = v&1 != 0
	}
	return pages, nil
}
