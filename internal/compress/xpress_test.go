package compress

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestDecodeXPRESSAllLiterals(t *testing.T) {
	payload := []byte("hello, xpress")
	var buf []byte
	// Flags word with all-literal bits (0), enough 4-byte groups to cover len(payload) tokens.
	flagWords := (len(payload) + 31) / 32
	for i := 0; i < flagWords; i++ {
		var w [4]byte
		binary.LittleEndian.PutUint32(w[:], 0)
		buf = append(buf, w[:]...)
	}
	// This simple test only has 13 literals, i.e. fewer than 32, so one flag word suffices
	// and every bit in it is 0 (literal), matching the loop above.
	buf = append(buf, payload...)

	out, err := DecodeXPRESS(buf, len(payload))
	if err != nil {
		t.Fatalf("DecodeXPRESS: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("DecodeXPRESS = %q, want %q", out, payload)
	}
}

func TestDecodeXPRESSMatch(t *testing.T) {
	// Encode "aaaaaaaa" (8 bytes) as one literal 'a' followed by a match of
	// length 7 at offset 1 (token low nibble = length-3 = 4, high bits = offset-1 = 0).
	var buf []byte
	var flags uint32 = 0x40000000 // bit 1 (second token) is a match, bit 0 (first) literal
	var w [4]byte
	binary.LittleEndian.PutUint32(w[:], flags)
	buf = append(buf, w[:]...)
	buf = append(buf, 'a')

	var token [2]byte
	length := 7 - 3 // 4
	offset := 1 - 1 // 0
	binary.LittleEndian.PutUint16(token[:], uint16(offset<<4)|uint16(length))
	buf = append(buf, token[:]...)

	out, err := DecodeXPRESS(buf, 8)
	if err != nil {
		t.Fatalf("DecodeXPRESS: %v", err)
	}
	want := []byte("aaaaaaaa")
	if !bytes.Equal(out, want) {
		t.Fatalf("DecodeXPRESS = %q, want %q", out, want)
	}
}
