package ese

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadAt(t *testing.T) {
	s := NewMemoryStore([]byte("hello world"))
	require.Equal(t, int64(11), s.Size())

	buf := make([]byte, 5)
	n, err := s.ReadAt(buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))
}

func TestMemoryStore_ReadAtPastEnd(t *testing.T) {
	s := NewMemoryStore([]byte("abc"))
	buf := make([]byte, 5)
	_, err := s.ReadAt(buf, 0)
	require.Error(t, err)
}

func TestReadRange_ZeroCopyOverMemoryStore(t *testing.T) {
	data := []byte("0123456789")
	s := NewMemoryStore(data)
	out, err := readRange(s, 2, 4)
	require.NoError(t, err)
	require.Equal(t, "2345", string(out))
}

func TestReaderAtStore_DelegatesToUnderlying(t *testing.T) {
	s := NewReaderAtStore(bytes.NewReader([]byte("xyz123")), 6)
	out, err := readRange(s, 3, 3)
	require.NoError(t, err)
	require.Equal(t, "123", string(out))
	require.NoError(t, s.Close())
}
