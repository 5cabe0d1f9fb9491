package rawmem

import (
	"strconv"
	"testing"

	"github.com/hupe1980/rawmem/testutil"
)

func BenchmarkGetInt64(b *testing.B) {
	for _, o := range orders {
		b.Run(o.name, func(b *testing.B) {
			m, err := Allocate(4096, WithByteOrder(o.order))
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			var sink int64
			for i := 0; b.Loop(); i++ {
				v, _ := m.GetInt64(int64(i&511) * 8)
				sink += v
			}
			_ = sink
		})
	}
}

func BenchmarkBufferWriteInt64(b *testing.B) {
	m, err := Allocate(4096)
	if err != nil {
		b.Fatal(err)
	}
	buf, err := m.AsWritableBuffer(NativeOrder)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		if !buf.HasRemaining() {
			buf.ResetPosition()
		}
		_ = buf.WriteInt64(int64(i))
	}
}

func BenchmarkPutInt64s(b *testing.B) {
	src := make([]int64, 1<<16)
	for _, o := range orders {
		b.Run(o.name, func(b *testing.B) {
			size := int64(len(src)) * 8
			m, err := Allocate(size, WithByteOrder(o.order))
			if err != nil {
				b.Fatal(err)
			}
			b.SetBytes(m.Capacity())
			b.ReportAllocs()
			for b.Loop() {
				_ = m.PutInt64s(0, src)
			}
		})
	}
}

func BenchmarkCopy(b *testing.B) {
	const n = 4 << 20
	src, err := Wrap(testutil.NewRNG(1).Bytes(n))
	if err != nil {
		b.Fatal(err)
	}
	dst, err := Allocate(n)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(n)
	b.ReportAllocs()
	for b.Loop() {
		_ = Copy(src, 0, dst, 0, n)
	}
}

func BenchmarkHash64(b *testing.B) {
	for _, n := range []int{8, 1024, 4 << 20} {
		m, err := Wrap(testutil.NewRNG(2).Bytes(n))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(byteSize(n), func(b *testing.B) {
			b.SetBytes(int64(n))
			b.ReportAllocs()
			for b.Loop() {
				_, _ = Hash64(m, 0, int64(n), 0)
			}
		})
	}
}

func byteSize(n int) string {
	switch {
	case n >= 1<<20:
		return strconv.Itoa(n>>20) + "MiB"
	case n >= 1<<10:
		return strconv.Itoa(n>>10) + "KiB"
	default:
		return strconv.Itoa(n) + "B"
	}
}
