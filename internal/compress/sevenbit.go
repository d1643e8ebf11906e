// Package compress implements the two column-compression schemes ESE uses
// for tagged text and long values: a 7-bit Unicode packing for text whose
// code units all fit in 7 bits, and the LZ77-style XPRESS scheme for
// general binary data. Neither has an existing Go library in the wild, so
// both are implemented directly from the public ESE/XCA format notes.
package compress

import "fmt"

// Decode7Bit unpacks a 7-bit-compressed ESE text column into its original
// UTF-16 code units. Each code unit occupies 7 bits, packed LSB-first across
// the byte stream with no padding between units except at the very end.
func Decode7Bit(data []byte) ([]uint16, error) {
	totalBits := len(data) * 8
	n := totalBits / 7
	units := make([]uint16, 0, n)

	var bitPos int
	for bitPos+7 <= totalBits {
		var v uint16
		for i := 0; i < 7; i++ {
			byteIdx := (bitPos + i) / 8
			bitIdx := uint((bitPos + i) % 8)
			bit := (data[byteIdx] >> bitIdx) & 1
			v |= uint16(bit) << uint(i)
		}
		units = append(units, v)
		bitPos += 7
	}
	return units, nil
}

// Decode7BitUTF16LE is a convenience wrapper returning the unpacked code
// units as a little-endian UTF-16 byte stream, ready for codepage decoding.
func Decode7BitUTF16LE(data []byte) ([]byte, error) {
	units, err := Decode7Bit(data)
	if err != nil {
		return nil, fmt.Errorf("compress: 7-bit decode: %w", err)
	}
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out, nil
}
