//go:build (unix || darwin || freebsd || openbsd || netbsd) && !linux

package mmap

func osResident([]byte) ([]bool, error) {
	return nil, ErrUnsupported
}
