package rawmem

import (
	"bytes"
	"fmt"

	"github.com/hupe1980/rawmem/internal/hash"
)

// Equal reports whether n bytes of a at aOff equal n bytes of b at bOff.
// Ranges that start at the same address are equal without being read.
func Equal(a Resource, aOff int64, b Resource, bOff int64, n int64) (bool, error) {
	as, err := a.core().readable(aOff, n)
	if err != nil {
		return false, err
	}
	bs, err := b.core().readable(bOff, n)
	if err != nil {
		return false, err
	}
	if sameStart(as, bs) {
		return true, nil
	}

	for len(as) > 0 {
		c := min(len(as), CopyChunkBytes)
		if !bytes.Equal(as[:c], bs[:c]) {
			return false, nil
		}
		as, bs = as[c:], bs[c:]
	}
	return true, nil
}

// Compare orders aLen bytes of a at aOff against bLen bytes of b at bOff as
// unsigned bytes. When one range is a prefix of the other the shorter sorts
// first. The result is -1, 0 or +1.
func Compare(a Resource, aOff, aLen int64, b Resource, bOff, bLen int64) (int, error) {
	as, err := a.core().readable(aOff, aLen)
	if err != nil {
		return 0, err
	}
	bs, err := b.core().readable(bOff, bLen)
	if err != nil {
		return 0, err
	}
	return bytes.Compare(as, bs), nil
}

// Copy copies n bytes of src at srcOff into dst at dstOff. Overlapping ranges
// of the same storage are copied as if through an intermediate buffer. A copy
// whose source and destination start at the same address is rejected with
// ErrInvalidArgument: it can only be a caller bug.
func Copy(src Resource, srcOff int64, dst Resource, dstOff, n int64) error {
	s, err := src.core().readable(srcOff, n)
	if err != nil {
		return err
	}
	d, err := dst.core().writable(dstOff, n)
	if err != nil {
		return err
	}

	if sameStart(s, d) {
		return fmt.Errorf("%w: copy of %d bytes exactly in place", ErrInvalidArgument, n)
	}
	if overlaps(s, d) {
		copy(d, s)
		return nil
	}

	for len(d) > 0 {
		c := min(len(d), CopyChunkBytes)
		copy(d[:c], s[:c])
		d, s = d[c:], s[c:]
	}
	return nil
}

// SameResource reports whether a and b cover exactly the same bytes of the
// same storage.
func SameResource(a, b Resource) bool {
	av, bv := a.core(), b.core()
	if len(av.data) != len(bv.data) {
		return false
	}
	if len(av.data) == 0 {
		return av == bv
	}
	return sameStart(av.data, bv.data)
}

// Hash64 computes the xxHash64 of n bytes of r at off. The bytes are hashed in
// storage order, so the result is the same on every platform and for every
// byte order the resource is viewed with.
func Hash64(r Resource, off, n int64, seed uint64) (uint64, error) {
	b, err := r.core().readable(off, n)
	if err != nil {
		return 0, err
	}
	if len(b) <= CopyChunkBytes {
		return hash.XXH64(b, seed), nil
	}

	d := hash.NewXXH64(seed)
	for len(b) > 0 {
		c := min(len(b), CopyChunkBytes)
		_, _ = d.Write(b[:c])
		b = b[c:]
	}
	return d.Sum64(), nil
}

// MurmurHash3 computes the 128-bit MurmurHash3 (x64 variant) of n bytes of r
// at off, with both lanes seeded by seed. Like Hash64 it hashes the bytes in
// storage order.
func MurmurHash3(r Resource, off, n int64, seed uint64) (h1, h2 uint64, err error) {
	b, err := r.core().readable(off, n)
	if err != nil {
		return 0, 0, err
	}
	if len(b) <= CopyChunkBytes {
		h1, h2 = hash.Murmur3(b, seed)
		return h1, h2, nil
	}

	d := hash.NewMurmur3(seed)
	for len(b) > 0 {
		c := min(len(b), CopyChunkBytes)
		_, _ = d.Write(b[:c])
		b = b[c:]
	}
	h1, h2 = d.Sum128()
	return h1, h2, nil
}

// HashUint64 computes the xxHash64 of the 8-byte little-endian encoding of x.
func HashUint64(x, seed uint64) uint64 {
	return hash.XXH64Uint64(x, seed)
}

// EqualTo reports whether n bytes at off equal n bytes of other at otherOff.
func (v *view) EqualTo(off int64, other Resource, otherOff, n int64) (bool, error) {
	return Equal(v, off, other, otherOff, n)
}

// CompareTo orders length bytes at off against otherLength bytes of other at otherOff.
func (v *view) CompareTo(off, length int64, other Resource, otherOff, otherLength int64) (int, error) {
	return Compare(v, off, length, other, otherOff, otherLength)
}

// CopyTo copies n bytes at off into dst at dstOff.
func (v *view) CopyTo(off int64, dst Resource, dstOff, n int64) error {
	return Copy(v, off, dst, dstOff, n)
}

// XXHash64 hashes n bytes at off.
func (v *view) XXHash64(off, n int64, seed uint64) (uint64, error) {
	return Hash64(v, off, n, seed)
}

// MurmurHash3 hashes n bytes at off.
func (v *view) MurmurHash3(off, n int64, seed uint64) (h1, h2 uint64, err error) {
	return MurmurHash3(v, off, n, seed)
}

// IsSameResource reports whether other covers exactly the same bytes as v.
func (v *view) IsSameResource(other Resource) bool {
	return SameResource(v, other)
}
