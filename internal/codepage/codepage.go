// Package codepage decodes ESE text columns using the codepage stored on the
// owning column, rather than a process-wide locale. Codepage 1200 is UTF-16LE
// (the common case for modern ESE stores); anything else is looked up in the
// Windows code-page table via golang.org/x/text/encoding/charmap.
package codepage

import (
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// UTF16LE is the well-known codepage identifier ESE uses for Unicode text columns.
const UTF16LE = 1200

// ASCII is the codepage identifier ESE uses for plain ASCII/Windows-1252 text columns.
const ASCII = 1252

// Decode converts raw column bytes to a Go string using the given codepage.
// lossy controls behavior on undecodable input. For UTF-16LE (codepage 1200,
// or 0), an odd-length buffer is an error when lossy is false and has its
// trailing byte dropped when lossy is true; unpaired surrogates decode to the
// replacement character in either mode. For other codepages, a decoder error
// is returned when lossy is false; when true, each byte that fails to decode
// is replaced with the replacement character.
func Decode(raw []byte, cp uint32, lossy bool) (string, error) {
	switch cp {
	case UTF16LE, 0:
		return decodeUTF16LE(raw, lossy)
	default:
		enc, err := lookup(cp)
		if err != nil {
			return "", err
		}
		return decodeCharmap(raw, enc, lossy)
	}
}

func decodeUTF16LE(raw []byte, lossy bool) (string, error) {
	if len(raw)%2 != 0 {
		if !lossy {
			return "", fmt.Errorf("codepage: odd-length UTF-16LE buffer (%d bytes)", len(raw))
		}
		raw = raw[:len(raw)-1]
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
	}
	runes := utf16.Decode(units)
	return string(runes), nil
}

func lookup(cp uint32) (encoding.Encoding, error) {
	switch cp {
	case ASCII:
		return charmap.Windows1252, nil
	case 1250:
		return charmap.Windows1250, nil
	case 1251:
		return charmap.Windows1251, nil
	case 1253:
		return charmap.Windows1253, nil
	case 1254:
		return charmap.Windows1254, nil
	case 1255:
		return charmap.Windows1255, nil
	case 1256:
		return charmap.Windows1256, nil
	case 1257:
		return charmap.Windows1257, nil
	case 1258:
		return charmap.Windows1258, nil
	case 28591:
		return charmap.ISO8859_1, nil
	case 28592:
		return charmap.ISO8859_2, nil
	case 437:
		return charmap.CodePage437, nil
	case 850:
		return charmap.CodePage850, nil
	case 866:
		return charmap.CodePage866, nil
	default:
		return nil, fmt.Errorf("codepage: unsupported codepage %d", cp)
	}
}

func decodeCharmap(raw []byte, enc encoding.Encoding, lossy bool) (string, error) {
	dec := enc.NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		if lossy {
			// Best-effort: decode byte by byte, substituting on failure.
			var sb []byte
			for _, b := range raw {
				r, uerr := dec.Bytes([]byte{b})
				if uerr != nil {
					sb = append(sb, "�"...)
					continue
				}
				sb = append(sb, r...)
			}
			return string(sb), nil
		}
		return "", fmt.Errorf("codepage: decode: %w", err)
	}
	return string(out), nil
}
