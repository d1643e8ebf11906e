package ese

import (
	"fmt"

	"github.com/go-ese/ese/internal/format"
)

// PageNumber identifies a page within the file. The primary and shadow file
// headers occupy the first two page-sized blocks (file offsets 0 and
// pageSize); data pages start at 1, mapped to file offset
// (pageNumber+1)*pageSize.
type PageNumber uint32

// Page is a zero-copy, validated view over one decoded page frame.
type Page struct {
	buf       []byte
	number    PageNumber
	checksum  checksumResult
	largeTags bool
}

// ParsePage decodes and checksum-validates the page at the given page
// number. newRegime selects the checksum scheme (§4.3); largeTags is true
// when pageSize >= 16384, selecting masked tag decoding (§4.4).
func ParsePage(data []byte, number PageNumber, newRegime, largeTags bool) (Page, error) {
	if len(data) < format.PageHeaderSize {
		return Page{}, wrap(ErrUnknownPageRole, fmt.Sprintf("page %d truncated header", number), nil)
	}
	cs := verifyPageChecksum(data, uint32(number), newRegime)
	p := Page{buf: data, number: number, checksum: cs, largeTags: largeTags}
	return p, nil
}

// ChecksumOK reports whether both checks (or the single legacy check)
// validated for this page.
func (p Page) ChecksumOK() bool { return p.checksum.OK() }

// Checksum returns the detailed per-check result, distinguishing a fully
// valid page from one that is merely "ECC-correctable" (XOR matches only).
func (p Page) Checksum() checksumResult { return p.checksum }

// Number returns this page's page number.
func (p Page) Number() PageNumber { return p.number }

// Flags returns the raw page-flags bitset.
func (p Page) Flags() uint32 { return format.ReadU32(p.buf, format.PageFlagsOffset) }

func (p Page) hasFlag(f uint32) bool { return p.Flags()&f != 0 }

func (p Page) IsRoot() bool      { return p.hasFlag(format.PageFlagRoot) }
func (p Page) IsLeaf() bool      { return p.hasFlag(format.PageFlagLeaf) }
func (p Page) IsBranch() bool    { return p.hasFlag(format.PageFlagParent) }
func (p Page) IsEmpty() bool     { return p.hasFlag(format.PageFlagEmpty) }
func (p Page) IsSpaceTree() bool { return p.hasFlag(format.PageFlagSpaceTree) }
func (p Page) IsIndex() bool     { return p.hasFlag(format.PageFlagIndex) }
func (p Page) IsLongValue() bool { return p.hasFlag(format.PageFlagLongValue) }
func (p Page) IsScrubbed() bool  { return p.hasFlag(format.PageFlagScrubbed) }
func (p Page) NewRecordFormat() bool {
	return p.hasFlag(format.PageFlagNewRecordFormat)
}

// FatherDataPage returns the father-object-identifier: the B-tree this page
// belongs to.
func (p Page) FatherDataPage() uint32 {
	return format.ReadU32(p.buf, format.PageFDPObjectIDOffset)
}

// PreviousPage and NextPage form the doubly-linked sibling chain at this
// page's tree level.
func (p Page) PreviousPage() PageNumber {
	return PageNumber(format.ReadU32(p.buf, format.PagePrevPageOffset))
}

func (p Page) NextPage() PageNumber {
	return PageNumber(format.ReadU32(p.buf, format.PageNextPageOffset))
}

// AvailableDataSize, AvailableDataOffset, and TagCount describe the page's
// free-space bookkeeping (§3 invariant on body-size accounting).
func (p Page) AvailableDataSize() uint16 {
	return format.ReadU16(p.buf, format.PageAvailDataSizeOffset)
}

func (p Page) AvailableUncommittedDataSize() uint16 {
	return format.ReadU16(p.buf, format.PageAvailUncommittedOffset)
}

func (p Page) AvailableDataOffset() uint16 {
	return format.ReadU16(p.buf, format.PageAvailDataOffsetOffset)
}

func (p Page) TagCount() int {
	return int(format.ReadU16(p.buf, format.PageAvailPageTagOffset))
}

// Body returns the page bytes following the fixed header, where the cell
// data and the reverse-grown tag array both live.
func (p Page) Body() []byte { return p.buf[format.PageHeaderSize:] }

// Raw returns the full page buffer, including the header, zero-copy.
func (p Page) Raw() []byte { return p.buf }
