package rawmem_test

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/hupe1980/rawmem"
)

// Example demonstrates byte-order-aware access through a region.
func Example() {
	m, err := rawmem.Allocate(16, rawmem.WithByteOrder(binary.BigEndian))
	if err != nil {
		log.Fatal(err)
	}
	_ = m.PutUint32(4, 0xCAFEBABE)

	r, err := m.Region(4, 4, binary.LittleEndian)
	if err != nil {
		log.Fatal(err)
	}
	v, _ := r.GetUint32(0)
	fmt.Printf("%#x %v\n", v, r.IsReadOnly())
	// Output: 0xbebafeca true
}

// ExampleBuffer demonstrates cursor-based writes and reads.
func ExampleBuffer() {
	m, _ := rawmem.Allocate(32)
	b, _ := m.AsWritableBuffer(rawmem.NativeOrder)

	_ = b.WriteInt64(42)
	_ = b.WriteFloat64(2.5)
	fmt.Println(b.Position(), b.Remaining())

	b.ResetPosition()
	i, _ := b.ReadInt64()
	f, _ := b.ReadFloat64()
	fmt.Println(i, f)
	// Output:
	// 16 16
	// 42 2.5
}

// ExampleAllocateDirect demonstrates growing an off-heap resource.
func ExampleAllocateDirect() {
	srv := rawmem.NewDirectGrowthServer()
	defer srv.Close()

	h, err := rawmem.AllocateDirect(8, rawmem.WithGrowthServer(srv))
	if err != nil {
		log.Fatal(err)
	}
	old := h.Memory()
	_ = old.PutInt64(0, 7)

	next, err := old.RequestGrowth(64)
	if err != nil {
		log.Fatal(err)
	}
	_ = old.CopyTo(0, next, 0, old.Capacity())
	_ = old.RequestClose(next)

	v, _ := next.GetInt64(0)
	fmt.Println(v, next.Capacity(), h.IsAlive())
	// Output: 7 64 false
}
