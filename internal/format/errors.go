package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrNotFound indicates a requested row or page was missing.
	ErrNotFound = errors.New("format: not found")
	// ErrUnsupported indicates the structure or feature is not yet supported.
	ErrUnsupported = errors.New("format: unsupported feature")

	// ErrBoundsCheck indicates a buffer access exceeded bounds.
	ErrBoundsCheck = errors.New("format: buffer bounds exceeded")

	// ErrSanityLimit indicates a parsed value exceeded sanity limits. This
	// guards against integer-overflow-driven over-allocation from malformed pages.
	ErrSanityLimit = errors.New("format: value exceeds sanity limit")

	// ErrIntegerOverflow indicates an integer operation would overflow.
	ErrIntegerOverflow = errors.New("format: integer overflow")

	// ErrChecksumMismatch indicates a page or header checksum did not validate.
	ErrChecksumMismatch = errors.New("format: checksum mismatch")

	// ErrTagOutOfBounds indicates a page tag pointed outside the page body.
	ErrTagOutOfBounds = errors.New("format: page tag out of bounds")

	// ErrTagOverlap indicates two page tags claim overlapping byte ranges.
	ErrTagOverlap = errors.New("format: page tags overlap")
)

// Sanity limits applied by Checked* readers to defend against crafted files
// driving absurd allocations. These are generous relative to any real ESE
// database (the format's own page size caps records well below these).
const (
	MaxKeyLen   = 1 << 16 // 64 KiB, larger than any ESE index key
	MaxCellSize = 1 << 20 // 1 MiB, larger than any single cell on any page size
	MaxRecordSize = 1 << 21
)
