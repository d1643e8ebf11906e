package ese

import (
	"testing"

	"github.com/go-ese/ese/internal/format"
)

// cellSpec describes one page-body cell to be laid out by buildPage: a
// 1-byte flags prefix, an optional common-key-size word, a local-key-size
// word, the local key bytes, then the value bytes.
type cellSpec struct {
	commonSize int
	localKey   []byte
	value      []byte
	defunct    bool
}

func (c cellSpec) encode() []byte {
	var flags uint8
	if c.commonSize > 0 {
		flags |= format.CellFlagCommonKey
	}
	buf := []byte{flags}
	if c.commonSize > 0 {
		word := make([]byte, 2)
		format.PutU16(word, 0, uint16(c.commonSize))
		buf = append(buf, word...)
	}
	lk := make([]byte, 2)
	format.PutU16(lk, 0, uint16(len(c.localKey)))
	buf = append(buf, lk...)
	buf = append(buf, c.localKey...)
	buf = append(buf, c.value...)
	return buf
}

// buildPage lays out a synthetic page of the given size, flags, and cells
// (written left to right starting at the body's start), with a correct
// trailing tag array and a valid new-regime checksum.
func buildPage(t *testing.T, pageSize int, number uint32, flags uint32, cells []cellSpec) []byte {
	t.Helper()
	page := make([]byte, pageSize)
	format.PutU32(page, format.PageFlagsOffset, flags)
	format.PutU32(page, format.PageFDPObjectIDOffset, format.CatalogObjectID)

	body := page[format.PageHeaderSize:]
	largeTags := pageSize >= format.LargePageTagFlagThreshold

	bodyOff := 0
	type tag struct{ off, size int; flags uint8 }
	var tags []tag
	for _, c := range cells {
		enc := c.encode()
		copy(body[bodyOff:], enc)
		tg := tag{off: bodyOff, size: len(enc)}
		if c.defunct {
			tg.flags = format.TagFlagDefunct
		}
		tags = append(tags, tg)
		bodyOff += len(enc)
	}

	for i, tg := range tags {
		entryOff := len(body) - format.PageTagEntrySize*(i+1)
		offWord := uint16(tg.off)
		sizeWord := uint16(tg.size)
		if largeTags {
			sizeWord |= uint16(tg.flags) << 13
		}
		format.PutU16(body, entryOff, offWord)
		format.PutU16(body, entryOff+2, sizeWord)
	}
	format.PutU16(page, format.PageAvailPageTagOffset, uint16(len(tags)))

	computedXOR := pageXOR32(page, format.PageModTimeOffset, number)
	format.PutU32(page, format.PageXORChecksumOffset, computedXOR)
	computedECC := pageECC32(page, format.PageModTimeOffset)
	format.PutU32(page, format.PageECCChecksumOffset, computedECC)

	return page
}

func buildHeader(t *testing.T, pageSize uint32) []byte {
	t.Helper()
	h := make([]byte, format.HeaderSize)
	format.PutU32(h, format.HdrSignatureOffset, format.HeaderSignature)
	format.PutU32(h, format.HdrFormatVersionOffset, format.FormatVersionExchange55To2003)
	format.PutU32(h, format.HdrFormatRevisionOffset, format.NewChecksumRevision)
	format.PutU32(h, format.HdrFileTypeOffset, format.FileTypeDatabase)
	format.PutU32(h, format.HdrPageSizeOffset, pageSize)

	var sum uint32
	for i := 0; i < format.HeaderChecksumWords; i++ {
		off := format.HdrSignatureOffset + i*4
		sum ^= format.ReadU32(h, off)
	}
	format.PutU32(h, format.HdrChecksumOffset, sum)
	return h
}
