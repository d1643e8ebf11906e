package ese

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-ese/ese/internal/format"
)

func buildWidgetRecord(id uint32) []byte {
	data := []byte{1, 127} // lastFixed=1 (just "ID"), lastVar=127 (no variable region)
	idBytes := make([]byte, 4)
	format.PutU32(idBytes, 0, id)
	data = append(data, idBytes...)
	data = append(data, 0) // 1-byte null bitmap, no nulls
	return data
}

func buildWidgetsImage(t *testing.T) map[uint32][]byte {
	t.Helper()
	catalogRows := [][]byte{
		buildCatalogRow(300, format.CatalogTypeTable, 0, 0, 0, 50, 0, "Widgets", ""),
		buildCatalogRow(300, format.CatalogTypeColumn, 1, format.ColtypLong, format.ColumnFlagFixed, 0, 0, "ID", ""),
		buildCatalogRow(300, format.CatalogTypeIndex, 0, 0, 0, 50, 0, "PK_Widgets", ""),
	}
	var catalogCells []cellSpec
	for i, r := range catalogRows {
		catalogCells = append(catalogCells, cellSpec{localKey: []byte{byte(i)}, value: r})
	}
	catalogPage := buildPage(t, 4096, format.CatalogObjectID, format.PageFlagLeaf|format.PageFlagRoot, append(
		[]cellSpec{{localKey: make([]byte, 12)}},
		catalogCells...,
	))

	key := func(id uint32) []byte {
		b := make([]byte, 4)
		format.PutU32(b, 0, id)
		return b
	}
	dataCells := []cellSpec{
		{localKey: key(10), value: buildWidgetRecord(10)},
		{localKey: key(20), value: buildWidgetRecord(20)},
	}
	dataPage := buildPage(t, 4096, 50, format.PageFlagLeaf|format.PageFlagRoot, append(
		[]cellSpec{{localKey: make([]byte, 12)}},
		dataCells...,
	))

	return map[uint32][]byte{format.CatalogObjectID: catalogPage, 50: dataPage}
}

func TestFile_HeaderAndPageSize(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	require.Equal(t, uint32(4096), f.PageSize())
	require.Equal(t, uint32(4096), f.Header().PageSize())
}

func TestFile_TablesAndTable(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	require.Contains(t, f.Tables(), "Widgets")

	tbl, err := f.Table("Widgets")
	require.NoError(t, err)
	require.Equal(t, PageNumber(50), tbl.DataRoot)

	_, err = f.Table("NoSuchTable")
	require.Error(t, err)
}

func TestFile_Records(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	tbl, err := f.Table("Widgets")
	require.NoError(t, err)

	var ids []int64
	err = f.Records(context.Background(), tbl, func(r *Record) error {
		v, verr := r.Value("ID")
		if verr != nil {
			return verr
		}
		ids = append(ids, v.Int64())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, ids)
}

func TestFile_Records_WithPrefetch(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	tbl, err := f.Table("Widgets")
	require.NoError(t, err)

	var ids []int64
	err = f.Records(context.Background(), tbl, func(r *Record) error {
		v, verr := r.Value("ID")
		if verr != nil {
			return verr
		}
		ids = append(ids, v.Int64())
		return nil
	}, WithPrefetch(4))
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, ids)
}

func TestFile_Lookup(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	tbl, err := f.Table("Widgets")
	require.NoError(t, err)

	key := make([]byte, 4)
	format.PutU32(key, 0, 20)
	rec, ok, err := f.Lookup(context.Background(), tbl, key)
	require.NoError(t, err)
	require.True(t, ok)
	v, err := rec.Value("ID")
	require.NoError(t, err)
	require.Equal(t, int64(20), v.Int64())

	missing := make([]byte, 4)
	format.PutU32(missing, 0, 999)
	_, ok, err = f.Lookup(context.Background(), tbl, missing)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFile_IndexEntries(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	tbl, err := f.Table("Widgets")
	require.NoError(t, err)
	idx, ok := tbl.Index("PK_Widgets")
	require.True(t, ok)

	var keys [][]byte
	err = f.IndexEntries(context.Background(), idx, func(key, ref []byte) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestFile_ByIndexFacade(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))

	require.Equal(t, 1, f.NumberOfTables())
	tbl, err := f.TableByIndex(0)
	require.NoError(t, err)
	require.Equal(t, "Widgets", tbl.Name)
	_, err = f.TableByIndex(1)
	require.Error(t, err)

	require.Equal(t, 1, tbl.NumberOfColumns())
	col, err := tbl.ColumnByIndex(0)
	require.NoError(t, err)
	require.Equal(t, "ID", col.Name)
	_, err = tbl.ColumnByIndex(5)
	require.Error(t, err)

	n, err := f.NumberOfRecords(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	rec, err := f.RecordByIndex(context.Background(), tbl, 1)
	require.NoError(t, err)
	v, err := rec.ValueAt(0)
	require.NoError(t, err)
	require.Equal(t, int64(20), v.Int64())

	_, err = f.RecordByIndex(context.Background(), tbl, 99)
	require.Error(t, err)

	idx, ok := tbl.Index("PK_Widgets")
	require.True(t, ok)
	cnt, err := f.NumberOfIndexEntries(context.Background(), idx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), cnt)

	entry, err := f.IndexEntryByIndex(context.Background(), idx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, entry.Key)
}

func TestFile_PageCountAndOffset(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	require.Equal(t, int64(4096*51), f.pageOffset(PageNumber(50)))
	require.GreaterOrEqual(t, f.pageCount(), uint32(1))
}

func TestFile_LoadPageCaches(t *testing.T) {
	f := newTestFile(t, 4096, buildWidgetsImage(t))
	p1, err := f.loadPage(PageNumber(50))
	require.NoError(t, err)
	p2, err := f.loadPage(PageNumber(50))
	require.NoError(t, err)
	require.Equal(t, p1.Number(), p2.Number())
}

func TestOpenBytes_BadHeaderErrors(t *testing.T) {
	_, err := OpenBytes(make([]byte, 100), OpenOptions{})
	require.Error(t, err)
}

func TestOpenBytes_MissingCatalogNonTolerantErrors(t *testing.T) {
	header := buildHeader(t, 4096)
	data := make([]byte, len(header)+4096*2)
	copy(data, header)
	_, err := OpenBytes(data, OpenOptions{Tolerant: false})
	require.Error(t, err)
}

func TestOpenBytes_MissingCatalogTolerantFallsBackToEmpty(t *testing.T) {
	header := buildHeader(t, 4096)
	data := make([]byte, len(header)+4096*2)
	copy(data, header)
	f, err := OpenBytes(data, OpenOptions{Tolerant: true, CollectDiagnostics: true})
	require.NoError(t, err)
	require.Empty(t, f.Tables())
	require.NotEmpty(t, f.Diagnostics())
}
