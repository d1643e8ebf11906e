package ese

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-ese/ese/internal/codepage"
	"github.com/go-ese/ese/internal/compress"
	"github.com/go-ese/ese/internal/format"
)

// oleEpoch is day zero of the OLE Automation date used by JET_coltypDateTime:
// midnight, 1899-12-30.
var oleEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Value is a decoded column value. Exactly one of the typed accessors is
// meaningful for a given Column.Type; Null reports whether the column was
// absent from the record or marked null in it.
type Value struct {
	Null bool
	Type ColumnType
	raw  []byte

	// lossyDefault is the OpenOptions.Lossy setting in effect when this Value
	// was decoded, used by String when called without an explicit override.
	lossyDefault bool
}

// Bytes returns the value's raw decoded bytes (post-decompression,
// pre-interpretation), zero-copy over the record buffer when possible.
func (v Value) Bytes() []byte { return v.raw }

// Bool decodes a JET_coltypBit value.
func (v Value) Bool() bool {
	if v.Null || len(v.raw) == 0 {
		return false
	}
	return v.raw[0] != 0
}

// Int64 decodes any fixed-width integer column type as a signed 64-bit value.
func (v Value) Int64() int64 {
	if v.Null {
		return 0
	}
	switch len(v.raw) {
	case 1:
		return int64(v.raw[0])
	case 2:
		return int64(int16(format.ReadU16(v.raw, 0)))
	case 4:
		return int64(int32(format.ReadU32(v.raw, 0)))
	case 8:
		return int64(format.ReadU64(v.raw, 0))
	default:
		return 0
	}
}

// Uint64 decodes any fixed-width integer column type as unsigned.
func (v Value) Uint64() uint64 {
	if v.Null {
		return 0
	}
	switch len(v.raw) {
	case 1:
		return uint64(v.raw[0])
	case 2:
		return uint64(format.ReadU16(v.raw, 0))
	case 4:
		return uint64(format.ReadU32(v.raw, 0))
	case 8:
		return format.ReadU64(v.raw, 0)
	default:
		return 0
	}
}

// Float64 decodes JET_coltypIEEESingle/IEEEDouble and JET_coltypCurrency
// (a scaled int64, 1/10000th of a unit).
func (v Value) Float64() float64 {
	if v.Null {
		return 0
	}
	switch v.Type {
	case ColTypeIEEESingle:
		if len(v.raw) < 4 {
			return 0
		}
		return float64(format.ReadF32(v.raw, 0))
	case ColTypeIEEEDouble:
		if len(v.raw) < 8 {
			return 0
		}
		return format.ReadF64(v.raw, 0)
	case ColTypeCurrency:
		return float64(v.Int64()) / 10000.0
	default:
		return 0
	}
}

// Time decodes a JET_coltypDateTime value (an OLE Automation date: a double
// counting days, with a fractional part counting time-of-day, since 1899-12-30).
func (v Value) Time() time.Time {
	if v.Null || len(v.raw) < 8 {
		return time.Time{}
	}
	days := format.ReadF64(v.raw, 0)
	return oleEpoch.Add(time.Duration(days * float64(24*time.Hour)))
}

// UUID decodes a JET_coltypGUID value, reordering from the mixed-endian
// Windows GUID byte layout to the big-endian form uuid.UUID expects.
func (v Value) UUID() (uuid.UUID, bool) {
	if v.Null || len(v.raw) != 16 {
		return uuid.UUID{}, false
	}
	var b [16]byte
	b[0], b[1], b[2], b[3] = v.raw[3], v.raw[2], v.raw[1], v.raw[0]
	b[4], b[5] = v.raw[5], v.raw[4]
	b[6], b[7] = v.raw[7], v.raw[6]
	copy(b[8:], v.raw[8:16])
	return uuid.UUID(b), true
}

// String decodes a text column using codepage cp, UTF-16LE for codepage 1200
// or 0 (the common case for ESE text columns). lossy
// optionally overrides the OpenOptions.Lossy setting that was in effect when
// v was decoded; omit it to use that default.
func (v Value) String(cp uint32, lossy ...bool) (string, error) {
	if v.Null {
		return "", nil
	}
	l := v.lossyDefault
	if len(lossy) > 0 {
		l = lossy[0]
	}
	s, err := codepage.Decode(v.raw, cp, l)
	if err != nil {
		return "", wrap(ErrCodepageUnsupported, "", err)
	}
	return s, nil
}

// resolveLongValue is supplied by File so decodeValue can dereference an
// LV-tree reference without value.go depending on the full traversal machinery.
type resolveLongValue func(lvid uint32) ([]byte, error)

// decodeValue converts one record's raw column bytes into a typed Value,
// applying tagged-region compression and long-value indirection per §4.7/§4.8.
// lossyDefault is stashed on the returned Value as String's default behavior.
func decodeValue(raw rawColumnValue, col Column, resolve resolveLongValue, lossyDefault bool) (Value, error) {
	if raw.isNull {
		return Value{Null: true, Type: col.Type, lossyDefault: lossyDefault}, nil
	}
	data := raw.data

	if raw.longValue {
		if len(data) < 4 {
			return Value{}, wrap(ErrLongValueShort, "LV reference truncated", nil)
		}
		lvid := format.ReadU32(data, 0)
		if resolve == nil {
			return Value{}, wrap(ErrLongValueMissing, "no long-value resolver configured", nil)
		}
		lvData, err := resolve(lvid)
		if err != nil {
			return Value{}, err
		}
		data = lvData
	}

	if raw.compressed && len(data) > 0 {
		decoded, err := decompressColumn(data)
		if err != nil {
			return Value{}, err
		}
		data = decoded
	}

	return Value{Type: col.Type, raw: data, lossyDefault: lossyDefault}, nil
}

// decompressColumn dispatches on the leading compression-scheme discriminator
// byte, per §4.8.
func decompressColumn(data []byte) ([]byte, error) {
	scheme, rest := data[0], data[1:]
	switch scheme {
	case format.CompressionNone:
		return rest, nil
	case format.Compression7Bit:
		return compress.Decode7BitUTF16LE(rest)
	case format.CompressionXPRESS:
		if len(rest) < 4 {
			return nil, wrap(ErrTruncatedValue, "XPRESS header", nil)
		}
		outLen := int(format.ReadU32(rest, 0))
		return compress.DecodeXPRESS(rest[4:], outLen)
	default:
		return nil, wrap(ErrUnknownColumnType, "unrecognized compression scheme", nil)
	}
}
