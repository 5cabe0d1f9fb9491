package rawmem

import (
	"encoding/binary"
	"fmt"
)

var (
	// NativeOrder is the byte order of the running platform, as one of
	// binary.LittleEndian or binary.BigEndian.
	NativeOrder binary.ByteOrder = hostOrder()

	// NonNativeOrder is the byte reversal of NativeOrder.
	NonNativeOrder binary.ByteOrder = opposite(hostOrder())
)

func hostOrder() binary.ByteOrder {
	var word [2]byte
	binary.NativeEndian.PutUint16(word[:], 1)
	if word[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func opposite(o binary.ByteOrder) binary.ByteOrder {
	if o == binary.ByteOrder(binary.LittleEndian) {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// canonicalOrder reduces any byte order implementation (including
// binary.NativeEndian) to binary.LittleEndian or binary.BigEndian.
func canonicalOrder(o binary.ByteOrder) (binary.ByteOrder, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: byte order is nil", ErrInvalidArgument)
	}
	var word [2]byte
	o.PutUint16(word[:], 1)
	if word[0] == 1 {
		return binary.LittleEndian, nil
	}
	return binary.BigEndian, nil
}

func isNative(o binary.ByteOrder) bool {
	return o == NativeOrder
}

// IsNativeOrder reports whether o lays out multi-byte values like the platform.
func IsNativeOrder(o binary.ByteOrder) bool {
	c, err := canonicalOrder(o)
	return err == nil && isNative(c)
}
