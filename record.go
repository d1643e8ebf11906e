package ese

import (
	"fmt"

	"github.com/go-ese/ese/internal/format"
)

// rawColumnValue is one column's undecoded bytes straight out of a record,
// plus the tagged-region flags that govern how to interpret them (compressed,
// a long-value reference, multi-valued).
type rawColumnValue struct {
	data       []byte
	isNull     bool
	compressed bool
	longValue  bool
	multiValue bool
}

// decodeRecord splits a raw leaf-cell value into per-column raw byte slices,
// keyed by column id, per §4.7's three-region layout (fixed / variable /
// tagged). newRecordFormat selects the byte-flags tagged-column encoding;
// when false, the tagged region uses the older 2-word (no flags byte) form.
// A column maps to more than one rawColumnValue only when the tagged region
// carries multiple entries sharing that column id, i.e. a MULTI_VALUE column
// with more than one instance. maxRecordSize sanity-bounds the cell itself,
// guarding against a corrupt length field driving an unbounded allocation;
// zero or negative disables the bound.
func decodeRecord(data []byte, cols []Column, newRecordFormat bool, maxRecordSize int) (map[uint32][]rawColumnValue, error) {
	if maxRecordSize > 0 && len(data) > maxRecordSize {
		return nil, wrap(ErrRecordTooLarge, fmt.Sprintf("record of %d bytes exceeds MaxRecordSize %d", len(data), maxRecordSize), nil)
	}
	if len(data) < 2 {
		return nil, wrap(ErrMalformedRecord, "record shorter than fixed header", nil)
	}
	lastFixed := data[0]
	lastVar := data[1]
	off := 2

	fixedEnd, err := fixedRegionEnd(cols, lastFixed)
	if err != nil {
		return nil, err
	}
	if off+fixedEnd > len(data) {
		return nil, wrap(ErrTruncatedValue, "fixed region", nil)
	}
	nullBitmapLen := (int(lastFixed) + 7) / 8
	if off+fixedEnd+nullBitmapLen > len(data) {
		return nil, wrap(ErrTruncatedValue, "null bitmap", nil)
	}
	fixedData := data[off : off+fixedEnd]
	nullBitmap := data[off+fixedEnd : off+fixedEnd+nullBitmapLen]
	off += fixedEnd + nullBitmapLen

	out := make(map[uint32][]rawColumnValue, len(cols))

	fixedOff := 0
	for _, c := range cols {
		if c.ID > uint32(lastFixed) || c.ID == 0 {
			continue
		}
		size := fixedColumnSize(c)
		isNull := bitSet(nullBitmap, int(c.ID)-1)
		var seg []byte
		if !isNull && fixedOff+size <= len(fixedData) {
			seg = fixedData[fixedOff : fixedOff+size]
		}
		fixedOff += size
		out[c.ID] = []rawColumnValue{{data: seg, isNull: isNull}}
	}

	// Variable region: lastVar - 127 entries, each a 2-byte end-offset.
	varCount := 0
	if lastVar > 127 {
		varCount = int(lastVar) - 127
	}
	entrySize := 2
	tableSize := varCount * entrySize
	if off+tableSize > len(data) {
		return nil, wrap(ErrTruncatedValue, "variable-offset table", nil)
	}
	offsetTable := data[off : off+tableSize]
	varDataStart := off + tableSize

	prevEnd := 0
	for i := 0; i < varCount; i++ {
		colID := uint32(128 + i)
		word := format.ReadU16(offsetTable, i*entrySize)
		isNull := word&format.RecVariableOffsetNullBit != 0
		end := int(word & format.RecVariableOffsetMask)
		var seg []byte
		if !isNull {
			start := varDataStart + prevEnd
			absEnd := varDataStart + end
			if start > len(data) || absEnd > len(data) || absEnd < start {
				return nil, wrap(ErrTruncatedValue, fmt.Sprintf("variable column %d", colID), nil)
			}
			seg = data[start:absEnd]
			prevEnd = end
		}
		out[colID] = []rawColumnValue{{data: seg, isNull: isNull}}
	}
	if varCount > 0 {
		off = varDataStart + prevEnd
	} else {
		off = varDataStart
	}

	// Tagged region: runs to the end of the cell.
	if off < len(data) {
		tagged, err := decodeTaggedRegion(data[off:], newRecordFormat)
		if err != nil {
			return nil, err
		}
		for id, vs := range tagged {
			out[id] = append(out[id], vs...)
		}
	}

	return out, nil
}

// decodeTaggedRegion decodes the tagged-column entry table. Each entry is a
// (column_id:u16, offset:u16[, flags:u8]) tuple; the table's own length isn't
// declared anywhere explicit, so ESE reuses the first entry's offset field to
// store the entry table's total byte size instead of a real data offset (that
// entry's own data always starts right after the table, at offset 0). A
// MULTI_VALUE column may have more than one entry sharing its column id; all
// such entries are preserved, in entry-table order, rather than the last one
// silently clobbering the rest.
func decodeTaggedRegion(region []byte, newRecordFormat bool) (map[uint32][]rawColumnValue, error) {
	out := make(map[uint32][]rawColumnValue)
	if len(region) == 0 {
		return out, nil
	}

	entrySize := 4
	if newRecordFormat {
		entrySize = 5
	}
	if len(region) < entrySize {
		return nil, wrap(ErrTruncatedValue, "tagged region header", nil)
	}

	headerSize := int(format.ReadU16(region, 2))
	if headerSize <= 0 || headerSize%entrySize != 0 || headerSize > len(region) {
		return nil, wrap(ErrMalformedRecord, "tagged region entry count", nil)
	}
	numEntries := headerSize / entrySize

	type entry struct {
		id    uint16
		off   uint16
		flags uint8
	}
	entries := make([]entry, numEntries)
	for i := 0; i < numEntries; i++ {
		pos := i * entrySize
		e := entry{id: format.ReadU16(region, pos), off: format.ReadU16(region, pos+2)}
		if newRecordFormat {
			e.flags = region[pos+4]
		}
		entries[i] = e
	}

	for i, e := range entries {
		dataOff := int(e.off)
		if i == 0 {
			dataOff = 0
		}
		start := headerSize + dataOff
		end := len(region)
		if i+1 < len(entries) {
			nextOff := int(entries[i+1].off)
			end = headerSize + nextOff
		}
		if start > len(region) || end > len(region) || end < start {
			return nil, wrap(ErrTruncatedValue, fmt.Sprintf("tagged column %d", e.id), nil)
		}
		out[uint32(e.id)] = append(out[uint32(e.id)], rawColumnValue{
			data:       region[start:end],
			compressed: e.flags&format.TaggedFlagCompressed != 0,
			longValue:  e.flags&format.TaggedFlagLongValue != 0,
			multiValue: e.flags&format.TaggedFlagMultiValue != 0,
		})
	}
	return out, nil
}

func fixedRegionEnd(cols []Column, lastFixed uint8) (int, error) {
	total := 0
	for _, c := range cols {
		if c.ID == 0 || c.ID > uint32(lastFixed) {
			continue
		}
		total += fixedColumnSize(c)
	}
	return total, nil
}

func bitSet(bitmap []byte, bit int) bool {
	byteIdx := bit / 8
	if byteIdx < 0 || byteIdx >= len(bitmap) {
		return false
	}
	return bitmap[byteIdx]&(1<<(uint(bit)%8)) != 0
}

// fixedColumnSize returns the on-disk width of a fixed-region column type.
func fixedColumnSize(c Column) int {
	switch uint32(c.Type) {
	case format.ColtypBit, format.ColtypUnsignedByte:
		return 1
	case format.ColtypShort, format.ColtypUnsignedShort:
		return 2
	case format.ColtypLong, format.ColtypUnsignedLong, format.ColtypIEEESingle:
		return 4
	case format.ColtypCurrency, format.ColtypIEEEDouble, format.ColtypDateTime, format.ColtypLongLong:
		return 8
	case format.ColtypGUID:
		return 16
	default:
		return 0
	}
}
