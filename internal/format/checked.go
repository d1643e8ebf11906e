package format

import (
	"fmt"

	"github.com/go-ese/ese/internal/buf"
)

// CheckedReadU16 reads a little-endian uint16 at off, failing instead of
// panicking when the read would run past the end of b.
func CheckedReadU16(b []byte, off int) (uint16, error) {
	s, ok := buf.Slice(b, off, 2)
	if !ok {
		return 0, fmt.Errorf("%w: u16 at %d (len %d)", ErrBoundsCheck, off, len(b))
	}
	return ReadU16(s, 0), nil
}

// CheckedReadU32 reads a little-endian uint32 at off, failing instead of
// panicking when the read would run past the end of b.
func CheckedReadU32(b []byte, off int) (uint32, error) {
	s, ok := buf.Slice(b, off, 4)
	if !ok {
		return 0, fmt.Errorf("%w: u32 at %d (len %d)", ErrBoundsCheck, off, len(b))
	}
	return ReadU32(s, 0), nil
}

// CheckedReadU64 reads a little-endian uint64 at off, failing instead of
// panicking when the read would run past the end of b.
func CheckedReadU64(b []byte, off int) (uint64, error) {
	s, ok := buf.Slice(b, off, 8)
	if !ok {
		return 0, fmt.Errorf("%w: u64 at %d (len %d)", ErrBoundsCheck, off, len(b))
	}
	return ReadU64(s, 0), nil
}

// CheckedSlice returns b[off:off+n], failing when out of bounds or when n
// exceeds the supplied sanity limit.
func CheckedSlice(b []byte, off, n, limit int) ([]byte, error) {
	if n > limit {
		return nil, fmt.Errorf("%w: length %d exceeds limit %d", ErrSanityLimit, n, limit)
	}
	s, ok := buf.Slice(b, off, n)
	if !ok {
		return nil, fmt.Errorf("%w: slice [%d:%d+%d] (len %d)", ErrBoundsCheck, off, off, n, len(b))
	}
	return s, nil
}
