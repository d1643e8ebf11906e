package ese

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/go-ese/ese/internal/format"
)

// File is an opened, read-only view over an ESE database (or streaming)
// file: its header, its page cache, and its decoded catalog.
type File struct {
	store BackingStore

	header    Header
	pageSize  uint32
	newRegime bool
	largeTags bool

	cache *pageCache
	diag  *diagnosticCollector
	opts  OpenOptions

	catalogRoot PageNumber
	catalog     *Catalog
}

// Open opens the ESE file at path, mapping it read-only and validating its
// header before returning.
func Open(path string, opts OpenOptions) (*File, error) {
	store, err := openMmapStore(path)
	if err != nil {
		return nil, err
	}
	f, err := newFile(store, opts)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return f, nil
}

// OpenBytes opens an already-loaded database image, e.g. one carved from a
// disk image or received over the network.
func OpenBytes(data []byte, opts OpenOptions) (*File, error) {
	return newFile(NewMemoryStore(data), opts)
}

// OpenReaderAt opens a database backed by store, such as an io.ReaderAt of
// known size wrapped with NewReaderAtStore, letting the caller own the
// underlying file handle's lifetime.
func OpenReaderAt(store BackingStore, opts OpenOptions) (*File, error) {
	return newFile(store, opts)
}

func newFile(store BackingStore, opts OpenOptions) (*File, error) {
	opts = opts.withDefaults()
	diag := newDiagnosticCollector(opts.CollectDiagnostics)

	primaryBytes, err := readRange(store, 0, format.HeaderSize)
	if err != nil {
		return nil, wrap(ErrBadHeader, "reading primary header", err)
	}
	primary, err := ParseHeader(primaryBytes)
	if err != nil {
		return nil, err
	}
	pageSize := primary.PageSize()

	header := primary
	if shadowBytes, serr := readRange(store, int64(pageSize), format.HeaderSize); serr == nil {
		if shadow, perr := ParseHeader(shadowBytes); perr == nil {
			header = selectPrimary(primary, shadow, diag)
		}
	}

	f := &File{
		store:       store,
		header:      header,
		pageSize:    pageSize,
		newRegime:   header.NewChecksumRegime(),
		largeTags:   pageSize >= format.LargePageTagFlagThreshold,
		cache:       newPageCache(opts.PageCacheSize, opts.CacheShards),
		diag:        diag,
		opts:        opts,
		catalogRoot: PageNumber(format.CatalogObjectID),
	}

	catalog, err := loadCatalog(f)
	if err != nil {
		if !opts.Tolerant {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		diag.record(DiagnosticSkippedSubtree, uint32(f.catalogRoot), err.Error())
		catalog = &Catalog{Tables: map[string]*Table{}}
	}
	f.catalog = catalog

	return f, nil
}

// Close releases the backing store (unmapping the file, if mapped).
func (f *File) Close() error {
	return f.store.Close()
}

// Header returns the primary file header; the shadow header is only compared
// against it at open.
func (f *File) Header() Header { return f.header }

// PageSize returns the database's configured page size.
func (f *File) PageSize() uint32 { return f.pageSize }

// Diagnostics returns every non-fatal condition recorded since Open, when
// OpenOptions.CollectDiagnostics was set.
func (f *File) Diagnostics() []Diagnostic { return f.diag.snapshot() }

// Catalog returns the decoded table/column/index metadata.
func (f *File) Catalog() *Catalog { return f.catalog }

// Tables returns every table name known to the catalog.
func (f *File) Tables() []string { return f.catalog.Names() }

// Table looks up a table by name.
func (f *File) Table(name string) (*Table, error) {
	t, ok := f.catalog.Table(name)
	if !ok {
		return nil, wrap(ErrNotFound, fmt.Sprintf("table %q", name), nil)
	}
	return t, nil
}

// NumberOfTables returns the table count.
func (f *File) NumberOfTables() int { return f.catalog.NumberOfTables() }

// TableByIndex returns the table at position i, in catalog scan order.
func (f *File) TableByIndex(i int) (*Table, error) { return f.catalog.TableByIndex(i) }

// pageCount estimates the highest valid page number from the store's size.
func (f *File) pageCount() uint32 {
	total := f.store.Size()
	if f.pageSize == 0 {
		return 0
	}
	n := total / int64(f.pageSize)
	if n <= 0 {
		return 1
	}
	return uint32(n)
}

// pageOffset returns the absolute file offset of the given data page.
func (f *File) pageOffset(n PageNumber) int64 {
	return int64(n+1) * int64(f.pageSize)
}

// loadPage returns the decoded, checksum-validated page, consulting the page
// cache first.
func (f *File) loadPage(n PageNumber) (Page, error) {
	if p, ok := f.cache.get(n); ok {
		return p, nil
	}

	data, err := readRange(f.store, f.pageOffset(n), int(f.pageSize))
	if err != nil {
		return Page{}, wrap(ErrBadHeader, fmt.Sprintf("reading page %d", n), err)
	}
	p, err := ParsePage(data, n, f.newRegime, f.largeTags)
	if err != nil {
		return Page{}, err
	}
	f.cache.put(n, p)
	return p, nil
}

// longValueResolverFor builds the resolver callback decodeValue uses for a
// record belonging to t, or nil if the table has no separate long-value tree.
func (f *File) longValueResolverFor(t *Table) resolveLongValue {
	if t.LVRoot == 0 {
		return nil
	}
	r := &longValueResolver{file: f, root: t.LVRoot}
	return r.resolve
}

// Record is one decoded row of a table, with columns resolved lazily on
// access via Value. A column id may carry more than one rawColumnValue when
// it is a MULTI_VALUE column with multiple tagged entries; Value and ValueAt
// only ever return the first, for callers that don't care about multiplicity.
type Record struct {
	table *Table
	raw   map[uint32][]rawColumnValue
	file  *File
}

// Value decodes and returns the named column's value. For a MULTI_VALUE
// column with more than one instance, this returns the first; use Values or
// MultiValue to reach the rest.
func (r *Record) Value(name string) (Value, error) {
	col, ok := r.table.Column(name)
	if !ok {
		return Value{}, wrap(ErrNotFound, fmt.Sprintf("column %q", name), nil)
	}
	raws, ok := r.raw[col.ID]
	if !ok || len(raws) == 0 {
		return Value{Null: true, Type: col.Type}, nil
	}
	return decodeValue(raws[0], col, r.file.longValueResolverFor(r.table), r.file.opts.Lossy)
}

// ValueAt decodes and returns the value of the column at position
// columnIndex, in the table's catalog declaration order. Like Value, it
// returns only the first instance of a MULTI_VALUE column.
func (r *Record) ValueAt(columnIndex int) (Value, error) {
	col, err := r.table.ColumnByIndex(columnIndex)
	if err != nil {
		return Value{}, err
	}
	raws, ok := r.raw[col.ID]
	if !ok || len(raws) == 0 {
		return Value{Null: true, Type: col.Type}, nil
	}
	return decodeValue(raws[0], col, r.file.longValueResolverFor(r.table), r.file.opts.Lossy)
}

// MultiValue is a type-safe handle onto a MULTI_VALUE column's instances: the
// tagged region entries sharing one column id, decoded lazily and in the
// entry-table order they appeared on disk.
type MultiValue struct {
	col   Column
	raws  []rawColumnValue
	file  *File
	table *Table
}

// Len returns the number of instances this column carries in the record.
func (m MultiValue) Len() int { return len(m.raws) }

// At decodes and returns the i-th instance.
func (m MultiValue) At(i int) (Value, error) {
	if i < 0 || i >= len(m.raws) {
		return Value{}, wrap(ErrOutOfRange, fmt.Sprintf("multi-value index %d", i), nil)
	}
	return decodeValue(m.raws[i], m.col, m.file.longValueResolverFor(m.table), m.file.opts.Lossy)
}

// Values decodes and returns every instance, in on-disk order.
func (m MultiValue) Values() ([]Value, error) {
	out := make([]Value, len(m.raws))
	for i := range m.raws {
		v, err := m.At(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// MultiValue returns a handle onto the named column's tagged-region
// instances, for MULTI_VALUE columns that may carry more than one.
func (r *Record) MultiValue(name string) (MultiValue, error) {
	col, ok := r.table.Column(name)
	if !ok {
		return MultiValue{}, wrap(ErrNotFound, fmt.Sprintf("column %q", name), nil)
	}
	return MultiValue{col: col, raws: r.raw[col.ID], file: r.file, table: r.table}, nil
}

// Values decodes and returns every instance of the named column, in on-disk
// order. For a single-valued column this is a 1-element (or, if absent,
// empty) slice.
func (r *Record) Values(name string) ([]Value, error) {
	mv, err := r.MultiValue(name)
	if err != nil {
		return nil, err
	}
	return mv.Values()
}

// Columns returns the names of every column present (non-absent) in this record.
func (r *Record) Columns() []string {
	names := make([]string, 0, len(r.raw))
	for id := range r.raw {
		for _, c := range r.table.Columns {
			if c.ID == id {
				names = append(names, c.Name)
				break
			}
		}
	}
	return names
}

// RecordVisitor receives each decoded row of a table scan.
type RecordVisitor func(*Record) error

// recordsConfig holds Records' opt-in behavior, set via RecordsOption.
type recordsConfig struct {
	prefetch int
}

// RecordsOption configures a single Records call.
type RecordsOption func(*recordsConfig)

// WithPrefetch decodes up to n leaf records concurrently, ahead of the
// caller's consumption of visit, instead of Records' default of decoding one
// record at a time on the caller's goroutine. Leaf traversal itself stays
// single-threaded (the page cache is the only shared mutable state); only
// the CPU-bound record decode step is parallelized, in windows of n records,
// and visit is still called in the table's primary key order. n <= 1 keeps
// the synchronous default.
func WithPrefetch(n int) RecordsOption {
	return func(c *recordsConfig) { c.prefetch = n }
}

// Records performs a full table scan, decoding every row and invoking visit
// in primary key order.
func (f *File) Records(ctx context.Context, t *Table, visit RecordVisitor, opts ...RecordsOption) error {
	var cfg recordsConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.prefetch <= 1 {
		return f.Walk(ctx, t.DataRoot, func(cell LeafCell) error {
			vals, err := decodeRecord(cell.Value, t.Columns, f.newRegime, f.opts.MaxRecordSize)
			if err != nil {
				if f.opts.Tolerant {
					f.diag.record(DiagnosticSkippedRecord, uint32(t.DataRoot), err.Error())
					return nil
				}
				return err
			}
			return visit(&Record{table: t, raw: vals, file: f})
		})
	}
	return f.recordsPrefetch(ctx, t, visit, cfg.prefetch)
}

// recordsPrefetch walks the table once to gather its leaf cells (the only
// step that touches the shared page cache), then decodes them in bounded
// windows of size n using golang.org/x/sync/errgroup, visiting each window's
// records in order once the whole window has decoded.
func (f *File) recordsPrefetch(ctx context.Context, t *Table, visit RecordVisitor, n int) error {
	var cells []LeafCell
	if err := f.Walk(ctx, t.DataRoot, func(c LeafCell) error {
		cells = append(cells, c)
		return nil
	}); err != nil {
		return err
	}

	decoded := make([]*Record, len(cells))
	skipped := make([]error, len(cells))

	for start := 0; start < len(cells); start += n {
		end := start + n
		if end > len(cells) {
			end = len(cells)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(n)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return wrap(ErrCancelled, "", err)
				}
				vals, err := decodeRecord(cells[i].Value, t.Columns, f.newRegime, f.opts.MaxRecordSize)
				if err != nil {
					if f.opts.Tolerant {
						skipped[i] = err
						return nil
					}
					return err
				}
				decoded[i] = &Record{table: t, raw: vals, file: f}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i := start; i < end; i++ {
			if skipped[i] != nil {
				f.diag.record(DiagnosticSkippedRecord, uint32(t.DataRoot), skipped[i].Error())
				continue
			}
			if decoded[i] == nil {
				continue
			}
			if err := visit(decoded[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup seeks the table's data tree for the record whose primary key
// matches key exactly (raw byte comparison; ESE's Unicode key collation is
// not implemented, so this only matches tables with byte-comparable keys,
// e.g. binary or ASCII-normalized primary keys).
func (f *File) Lookup(ctx context.Context, t *Table, key []byte) (*Record, bool, error) {
	cell, ok, err := f.Seek(ctx, t.DataRoot, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	vals, err := decodeRecord(cell.Value, t.Columns, f.newRegime, f.opts.MaxRecordSize)
	if err != nil {
		return nil, false, err
	}
	return &Record{table: t, raw: vals, file: f}, true, nil
}

// IndexEntries walks an index's B-tree, yielding its raw (key, primary-key
// reference) pairs without attempting Unicode key collation or decoding.
func (f *File) IndexEntries(ctx context.Context, idx Index, visit func(key, primaryKeyRef []byte) error) error {
	return f.Walk(ctx, idx.Root, func(cell LeafCell) error {
		return visit(cell.Key, cell.Value)
	})
}

// IndexEntry is one raw leaf entry of an index's B-tree: an uncollated key
// and the primary-key reference it points to. Collating a key against ESE's
// Unicode/NLS tables to recover its original column values is out of scope,
// so an IndexEntry stops at these raw bytes.
type IndexEntry struct {
	Key           []byte
	PrimaryKeyRef []byte
}

// NumberOfRecords returns the table's row count, obtained with a full
// sequential scan: ESE B-trees carry no running row count, so this costs the
// same as one Records call over the table.
func (f *File) NumberOfRecords(ctx context.Context, t *Table) (uint64, error) {
	var n uint64
	err := f.Walk(ctx, t.DataRoot, func(LeafCell) error {
		n++
		return nil
	})
	return n, err
}

// RecordByIndex returns the i-th record of a full table scan, in primary key
// order. Like NumberOfRecords, this walks the tree from the start every call;
// callers that need many positions should use Records directly instead.
func (f *File) RecordByIndex(ctx context.Context, t *Table, i int) (*Record, error) {
	if i < 0 {
		return nil, wrap(ErrNotFound, fmt.Sprintf("record index %d", i), nil)
	}
	var found *Record
	n := 0
	err := f.Walk(ctx, t.DataRoot, func(cell LeafCell) error {
		if n == i {
			vals, err := decodeRecord(cell.Value, t.Columns, f.newRegime, f.opts.MaxRecordSize)
			if err != nil {
				return err
			}
			found = &Record{table: t, raw: vals, file: f}
			return errStopWalk
		}
		n++
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, err
	}
	if found == nil {
		return nil, wrap(ErrNotFound, fmt.Sprintf("record index %d", i), nil)
	}
	return found, nil
}

// NumberOfIndexEntries returns an index's entry count via a full scan of its
// B-tree, for the same reason NumberOfRecords does: ESE trees keep no
// running count.
func (f *File) NumberOfIndexEntries(ctx context.Context, idx Index) (uint64, error) {
	var n uint64
	err := f.Walk(ctx, idx.Root, func(LeafCell) error {
		n++
		return nil
	})
	return n, err
}

// IndexEntryByIndex returns the i-th raw entry of an index's B-tree.
func (f *File) IndexEntryByIndex(ctx context.Context, idx Index, i int) (IndexEntry, error) {
	if i < 0 {
		return IndexEntry{}, wrap(ErrNotFound, fmt.Sprintf("index entry %d", i), nil)
	}
	var found IndexEntry
	ok := false
	n := 0
	err := f.Walk(ctx, idx.Root, func(cell LeafCell) error {
		if n == i {
			found = IndexEntry{Key: cell.Key, PrimaryKeyRef: cell.Value}
			ok = true
			return errStopWalk
		}
		n++
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return IndexEntry{}, err
	}
	if !ok {
		return IndexEntry{}, wrap(ErrNotFound, fmt.Sprintf("index entry %d", i), nil)
	}
	return found, nil
}

// errStopWalk is an internal sentinel used to end a Walk early once the
// wanted position has been found; it never escapes to a caller.
var errStopWalk = errors.New("ese: stop walk")
