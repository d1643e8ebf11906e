package ese

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-ese/ese/internal/format"
)

func TestLVKey_EncodesLvidAndSegmentBigEndian(t *testing.T) {
	k := lvKey(0x01020304, 0x05060708)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, k)
}

func TestLongValueResolver_ReassemblesSegments(t *testing.T) {
	lvid := uint32(7)
	seg1 := []byte("hello ")
	seg2 := []byte("world")
	total := len(seg1) + len(seg2)

	header := make([]byte, 5)
	format.PutU32(header, 0, uint32(total))

	cells := []cellSpec{
		{localKey: lvKey(lvid, format.LVHeaderSegment), value: header},
		{localKey: lvKey(lvid, 1), value: seg1},
		{localKey: lvKey(lvid, 2), value: seg2},
	}
	rootLeaf := buildPage(t, 4096, 1, format.PageFlagLeaf|format.PageFlagRoot, append(
		[]cellSpec{{localKey: make([]byte, 12)}},
		cells...,
	))
	f := newTestFile(t, 4096, map[uint32][]byte{1: rootLeaf})

	r := &longValueResolver{file: f, root: PageNumber(1)}
	got, err := r.resolve(lvid)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestLongValueResolver_MissingHeaderErrors(t *testing.T) {
	rootLeaf := buildPage(t, 4096, 1, format.PageFlagLeaf|format.PageFlagRoot, []cellSpec{
		{localKey: make([]byte, 12)},
	})
	f := newTestFile(t, 4096, map[uint32][]byte{1: rootLeaf})

	r := &longValueResolver{file: f, root: PageNumber(1)}
	_, err := r.resolve(42)
	require.Error(t, err)
}
