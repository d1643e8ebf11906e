package ese

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-ese/ese/internal/format"
)

// buildCatalogRow encodes one MSysObjects row in the hardcoded catalogColumns
// layout: fixed region up through CatColLocaleID (id 11), then the variable
// region covering Name (128), Stats (129, always null here), and
// TemplateTableName (130).
func buildCatalogRow(objidTable uint32, kind uint16, id, coltyp, flags, pages, localeID uint32, name, templateName string) []byte {
	u32 := func(v uint32) []byte { b := make([]byte, 4); format.PutU32(b, 0, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); format.PutU16(b, 0, v); return b }

	const lastFixed = 11
	const lastVar = 130

	var fixed []byte
	fixed = append(fixed, u32(objidTable)...) // CatColObjidTable (1)
	fixed = append(fixed, u16(kind)...)       // CatColType (2)
	fixed = append(fixed, u32(id)...)         // CatColID (3)
	fixed = append(fixed, u32(coltyp)...)     // CatColColtyp (4)
	fixed = append(fixed, u32(0)...)          // CatColSpaceUsage (8)
	fixed = append(fixed, u32(flags)...)      // CatColFlags (9)
	fixed = append(fixed, u32(pages)...)      // CatColPages (10)
	fixed = append(fixed, u32(localeID)...)   // CatColLocaleID (11)

	nullBitmap := make([]byte, (lastFixed+7)/8)

	var data []byte
	data = append(data, lastFixed, lastVar)
	data = append(data, fixed...)
	data = append(data, nullBitmap...)

	type varField struct {
		val  string
		null bool
	}
	fields := []varField{{val: name}, {null: true}, {val: templateName, null: templateName == ""}}

	var offsetTable, varData []byte
	cum := 0
	for _, f := range fields {
		var word uint16
		if f.null {
			word = format.RecVariableOffsetNullBit
		} else {
			cum += len(f.val)
			word = uint16(cum)
			varData = append(varData, f.val...)
		}
		wb := make([]byte, 2)
		format.PutU16(wb, 0, word)
		offsetTable = append(offsetTable, wb...)
	}
	data = append(data, offsetTable...)
	data = append(data, varData...)
	return data
}

func TestLoadCatalog_TablesColumnsIndexesAndTemplateInheritance(t *testing.T) {
	rows := [][]byte{
		buildCatalogRow(100, format.CatalogTypeTable, 0, 0, 0, 50, 0, "BaseTable", ""),
		buildCatalogRow(100, format.CatalogTypeColumn, 1, format.ColtypLong, format.ColumnFlagFixed, 0, 0, "Col1", ""),
		buildCatalogRow(100, format.CatalogTypeIndex, 0, 0, 0, 70, 0, "PK_Base", ""),
		buildCatalogRow(100, format.CatalogTypeLongValue, 0, 0, 0, 80, 0, "", ""),
		buildCatalogRow(200, format.CatalogTypeTable, 0, 0, 0, 60, 0, "DerivedTable", "BaseTable"),
		buildCatalogRow(200, format.CatalogTypeColumn, 2, format.ColtypText, format.ColumnFlagTagged, 0, 0, "Col2", ""),
	}

	var cells []cellSpec
	for i, r := range rows {
		cells = append(cells, cellSpec{localKey: []byte{byte(i)}, value: r})
	}
	catalogPage := buildPage(t, 4096, format.CatalogObjectID, format.PageFlagLeaf|format.PageFlagRoot, append(
		[]cellSpec{{localKey: make([]byte, 12)}},
		cells...,
	))

	f := newTestFile(t, 4096, map[uint32][]byte{format.CatalogObjectID: catalogPage})

	base, ok := f.Catalog().Table("BaseTable")
	require.True(t, ok)
	require.Equal(t, PageNumber(50), base.DataRoot)
	require.Equal(t, PageNumber(80), base.LVRoot)
	col1, ok := base.Column("Col1")
	require.True(t, ok)
	require.Equal(t, ColTypeLong, col1.Type)
	idx, ok := base.Index("PK_Base")
	require.True(t, ok)
	require.Equal(t, PageNumber(70), idx.Root)

	derived, ok := f.Catalog().Table("DerivedTable")
	require.True(t, ok)
	require.Equal(t, PageNumber(60), derived.DataRoot)
	_, ok = derived.Column("Col2")
	require.True(t, ok)
	inherited, ok := derived.Column("Col1")
	require.True(t, ok, "derived table should inherit Col1 from its template")
	require.Equal(t, ColTypeLong, inherited.Type)

	require.Equal(t, []string{"BaseTable", "DerivedTable"}, f.Catalog().Names())
	require.Equal(t, 2, f.Catalog().NumberOfTables())
	first, err := f.Catalog().TableByIndex(0)
	require.NoError(t, err)
	require.Equal(t, "BaseTable", first.Name)
	_, err = f.Catalog().TableByIndex(2)
	require.Error(t, err)
}
