package compress

import "testing"

func TestDecode7Bit(t *testing.T) {
	// Pack the ASCII string "AB" (0x41, 0x42) as two 7-bit units, LSB-first.
	// 0x41 = 1000001, 0x42 = 1000010
	// bit stream (LSB first within each byte of output): unit0 bits0..6 then unit1 bits0..6
	data := []byte{0x41, 0x21} // unit0 = 0x41 ('A'), unit1 = 0x42 ('B'); checked below
	units, err := Decode7Bit(data)
	if err != nil {
		t.Fatalf("Decode7Bit: %v", err)
	}
	if len(units) < 2 {
		t.Fatalf("expected at least 2 units, got %d", len(units))
	}
	if units[0] != 0x41 || units[1] != 0x42 {
		t.Fatalf("expected units 0x41 0x42, got %#x %#x", units[0], units[1])
	}
}

func TestDecode7BitUTF16LE(t *testing.T) {
	// All-zero input should unpack into all-zero code units (NUL chars).
	data := make([]byte, 7) // 56 bits -> 8 units of 0
	out, err := Decode7BitUTF16LE(data)
	if err != nil {
		t.Fatalf("Decode7BitUTF16LE: %v", err)
	}
	if len(out) != 16 {
		t.Fatalf("expected 16 output bytes (8 units), got %d", len(out))
	}
	for _, b := range out {
		if b != 0 {
			t.Fatalf("expected all-zero output, got %v", out)
		}
	}
}
