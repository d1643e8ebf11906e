package ese

import (
	"io"
	"os"

	"github.com/go-ese/ese/internal/mmfile"
)

// BackingStore abstracts the byte source a File reads pages from, so callers
// can supply an mmap'd file, a plain []byte (already loaded, e.g. carved from
// an image), or any io.ReaderAt-backed source without File caring which.
type BackingStore interface {
	// ReadAt reads len(p) bytes starting at off, per io.ReaderAt's contract.
	ReadAt(p []byte, off int64) (int, error)
	// Size returns the total addressable length of the store.
	Size() int64
	// Close releases any resources (file handles, mappings) held by the store.
	Close() error
}

// memoryStore is a BackingStore over an in-memory byte slice.
type memoryStore struct {
	data []byte
}

// NewMemoryStore wraps an already-loaded byte slice as a BackingStore,
// letting OpenBytes and carved-image workflows share the page-reading path
// with a real file.
func NewMemoryStore(data []byte) BackingStore {
	return &memoryStore{data: data}
}

func (m *memoryStore) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (m *memoryStore) Size() int64 { return int64(len(m.data)) }
func (m *memoryStore) Close() error { return nil }

// readerAtStore adapts an arbitrary io.ReaderAt (plus a known size) to
// BackingStore, for callers who already manage their own file handle.
type readerAtStore struct {
	r    io.ReaderAt
	size int64
}

// NewReaderAtStore wraps r as a BackingStore of the given total size. Close
// is a no-op; the caller remains responsible for r's lifetime.
func NewReaderAtStore(r io.ReaderAt, size int64) BackingStore {
	return &readerAtStore{r: r, size: size}
}

func (s *readerAtStore) ReadAt(p []byte, off int64) (int, error) { return s.r.ReadAt(p, off) }
func (s *readerAtStore) Size() int64                             { return s.size }
func (s *readerAtStore) Close() error                            { return nil }

// mmapStore is the default store for Open: the whole file mapped (or loaded,
// on platforms without a cheap read-only mapping) into one contiguous buffer.
type mmapStore struct {
	data  []byte
	unmap func() error
}

func openMmapStore(path string) (BackingStore, error) {
	if st, err := os.Stat(path); err != nil {
		return nil, wrap(ErrBadHeader, "stat", err)
	} else if st.Size() == 0 {
		return nil, wrap(ErrBadHeader, "empty file", nil)
	}

	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, wrap(ErrBadHeader, "map", err)
	}
	return &mmapStore{data: data, unmap: unmap}, nil
}

func (m *mmapStore) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (m *mmapStore) Size() int64 { return int64(len(m.data)) }

func (m *mmapStore) Close() error {
	if m.unmap != nil {
		return m.unmap()
	}
	return nil
}

// readRange returns a zero-copy view of the store's bytes in [off, off+n), when
// the underlying store is backed by a single contiguous in-memory buffer.
// Falls back to a fresh read when it isn't.
func readRange(s BackingStore, off int64, n int) ([]byte, error) {
	if zc, ok := s.(interface{ bytes() []byte }); ok {
		buf := zc.bytes()
		if off < 0 || off+int64(n) > int64(len(buf)) {
			return nil, io.ErrUnexpectedEOF
		}
		return buf[off : off+int64(n)], nil
	}
	buf := make([]byte, n)
	if _, err := s.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

func (m *mmapStore) bytes() []byte   { return m.data }
func (m *memoryStore) bytes() []byte { return m.data }
