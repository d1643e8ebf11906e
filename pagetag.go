package ese

import (
	"fmt"

	"github.com/go-ese/ese/internal/buf"
	"github.com/go-ese/ese/internal/format"
)

// TagFlags mirrors the three per-cell flag bits smuggled in the top bits of
// a page tag's offset/size words on large-page-size revisions.
type TagFlags uint8

const (
	TagFlagNullKey   TagFlags = TagFlags(format.TagFlagNullKey)   // local key is empty
	TagFlagNullValue TagFlags = TagFlags(format.TagFlagNullValue) // cell value is empty
	TagFlagDefunct   TagFlags = TagFlags(format.TagFlagDefunct)   // cell is logically deleted
)

func (f TagFlags) NullKey() bool   { return f&TagFlagNullKey != 0 }
func (f TagFlags) NullValue() bool { return f&TagFlagNullValue != 0 }
func (f TagFlags) Defunct() bool   { return f&TagFlagDefunct != 0 }

// Tag is one (offset, size, flags) descriptor from the page's reverse-grown
// tag array, already masked per the page's large-page-size revision rule.
type Tag struct {
	Index  int
	Offset uint16
	Size   uint16
	Flags  TagFlags
}

// Tags returns every tag on the page, in ascending tag-index order (tag 0
// first), validated for in-bounds and non-overlapping byte ranges. Validation
// is unconditional; callers choose whether to treat a violation as fatal
// (Walk skips the page with a Diagnostic when opts.Tolerant is set).
func (p Page) Tags() ([]Tag, error) {
	body := p.Body()
	n := p.TagCount()
	if n < 0 || n*format.PageTagEntrySize > len(body) {
		return nil, wrap(ErrTagOutOfBounds, fmt.Sprintf("page %d: tag count %d exceeds body size %d", p.number, n, len(body)), nil)
	}

	tags := make([]Tag, n)
	for i := 0; i < n; i++ {
		// Tag i sits at the i-th 4-byte slot counted from the end of the page.
		entryOff := len(body) - format.PageTagEntrySize*(i+1)
		entry, ok := buf.Slice(body, entryOff, format.PageTagEntrySize)
		if !ok {
			return nil, wrap(ErrTagOutOfBounds, fmt.Sprintf("page %d: tag %d entry out of bounds", p.number, i), nil)
		}
		offWord := format.ReadU16(entry, 0)
		sizeWord := format.ReadU16(entry, 2)

		var off, size uint16
		var flags TagFlags
		if p.largeTags {
			off = offWord & format.PageTagOffsetMask
			size = sizeWord & format.PageTagOffsetMask
			flags = TagFlags(sizeWord >> 13)
		} else {
			off = offWord
			size = sizeWord
		}

		tags[i] = Tag{Index: i, Offset: off, Size: size, Flags: flags}
	}

	if err := validateTagRanges(tags, len(body)); err != nil {
		return nil, err
	}
	return tags, nil
}

// validateTagRanges checks every tag's byte range falls within the page body
// and that no two ranges overlap, per §3's accounting invariant.
func validateTagRanges(tags []Tag, bodyLen int) error {
	type rng struct{ lo, hi int }
	ranges := make([]rng, 0, len(tags))
	for _, t := range tags {
		if t.Flags.Defunct() {
			continue
		}
		lo := int(t.Offset)
		hi := lo + int(t.Size)
		if lo < 0 || hi > bodyLen || hi < lo {
			return wrap(ErrTagOutOfBounds, fmt.Sprintf("tag %d range [%d:%d) exceeds body %d", t.Index, lo, hi, bodyLen), nil)
		}
		ranges = append(ranges, rng{lo, hi})
	}
	for i := range ranges {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].lo < ranges[j].hi && ranges[j].lo < ranges[i].hi {
				return wrap(ErrTagOverlap, fmt.Sprintf("tag ranges [%d:%d) and [%d:%d) overlap",
					ranges[i].lo, ranges[i].hi, ranges[j].lo, ranges[j].hi), nil)
			}
		}
	}
	return nil
}

// Cell returns the raw bytes a tag's (offset, size) describes within the
// page body.
func (p Page) Cell(t Tag) ([]byte, error) {
	body := p.Body()
	s, ok := buf.Slice(body, int(t.Offset), int(t.Size))
	if !ok {
		return nil, wrap(ErrTagOutOfBounds, fmt.Sprintf("cell for tag %d out of bounds", t.Index), nil)
	}
	return s, nil
}
