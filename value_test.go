package ese

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-ese/ese/internal/format"
)

func TestValue_Int64ByWidth(t *testing.T) {
	require.Equal(t, int64(5), Value{raw: []byte{5}}.Int64())
	require.Equal(t, int64(-1), Value{raw: []byte{0xff, 0xff}}.Int64())
	four := make([]byte, 4)
	format.PutU32(four, 0, 0xffffffff)
	require.Equal(t, int64(-1), Value{raw: four}.Int64())
}

func TestValue_Uint64ByWidth(t *testing.T) {
	four := make([]byte, 4)
	format.PutU32(four, 0, 42)
	require.Equal(t, uint64(42), Value{raw: four}.Uint64())
}

func TestValue_Bool(t *testing.T) {
	require.True(t, Value{raw: []byte{1}}.Bool())
	require.False(t, Value{raw: []byte{0}}.Bool())
	require.False(t, Value{Null: true, raw: []byte{1}}.Bool())
}

func TestValue_Float64Currency(t *testing.T) {
	raw := make([]byte, 8)
	format.PutU64(raw, 0, 123456) // 12.3456 scaled by 10000
	v := Value{Type: ColTypeCurrency, raw: raw}
	require.InDelta(t, 12.3456, v.Float64(), 0.0001)
}

func TestValue_Float64IEEEDouble(t *testing.T) {
	raw := make([]byte, 8)
	format.PutU64(raw, 0, 0x3FF0000000000000) // 1.0
	v := Value{Type: ColTypeIEEEDouble, raw: raw}
	require.InDelta(t, 1.0, v.Float64(), 0.0000001)
}

func TestValue_Time(t *testing.T) {
	raw := make([]byte, 8)
	// One day after the OLE epoch, no fractional time component.
	format.PutU64(raw, 0, 0x3FF0000000000000) // float64(1.0) bit pattern
	v := Value{raw: raw}
	got := v.Time()
	want := oleEpoch.Add(24 * time.Hour)
	require.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestValue_UUID(t *testing.T) {
	// Windows mixed-endian GUID bytes for 00112233-4455-6677-8899-aabbccddeeff.
	raw := []byte{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	v := Value{raw: raw}
	id, ok := v.UUID()
	require.True(t, ok)
	require.Equal(t, "00112233-4455-6677-8899-aabbccddeeff", id.String())
}

func TestValue_UUID_WrongLength(t *testing.T) {
	v := Value{raw: []byte{1, 2, 3}}
	_, ok := v.UUID()
	require.False(t, ok)
}

func TestDecompressColumn_None(t *testing.T) {
	data := append([]byte{format.CompressionNone}, []byte("plain")...)
	out, err := decompressColumn(data)
	require.NoError(t, err)
	require.Equal(t, "plain", string(out))
}

func TestDecompressColumn_UnknownScheme(t *testing.T) {
	_, err := decompressColumn([]byte{0x7f, 1, 2, 3})
	require.Error(t, err)
}

func TestDecodeValue_NullColumn(t *testing.T) {
	v, err := decodeValue(rawColumnValue{isNull: true}, Column{Type: ColTypeLong}, nil, false)
	require.NoError(t, err)
	require.True(t, v.Null)
}

func TestDecodeValue_LongValueIndirection(t *testing.T) {
	lvRef := make([]byte, 4)
	format.PutU32(lvRef, 0, 99)
	resolved := []byte("resolved long value bytes")
	resolve := func(lvid uint32) ([]byte, error) {
		require.Equal(t, uint32(99), lvid)
		return resolved, nil
	}
	v, err := decodeValue(rawColumnValue{data: lvRef, longValue: true}, Column{Type: ColTypeLongText}, resolve, false)
	require.NoError(t, err)
	require.Equal(t, resolved, v.Bytes())
}

func TestDecodeValue_LongValueMissingResolver(t *testing.T) {
	lvRef := make([]byte, 4)
	_, err := decodeValue(rawColumnValue{data: lvRef, longValue: true}, Column{Type: ColTypeLongText}, nil, false)
	require.Error(t, err)
}

func TestDecodeValue_LossyDefaultAppliedWithoutOverride(t *testing.T) {
	// Odd-length UTF-16LE decodes only in lossy mode, so String succeeding
	// shows the stamped default was used.
	v, err := decodeValue(rawColumnValue{data: []byte("hi!")}, Column{Type: ColTypeText}, nil, true)
	require.NoError(t, err)
	require.True(t, v.lossyDefault)
	s, err := v.String(1200)
	require.NoError(t, err)
	require.NotEmpty(t, s)
}
