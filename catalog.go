package ese

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ese/ese/internal/format"
)

// Index describes one secondary (or primary) index over a table.
type Index struct {
	Identifier uint32
	Name       string
	Root       PageNumber
	Unique     bool
	Primary    bool
}

// Table describes one table discovered in the catalog: its columns, its
// indexes, and the root page of its data tree.
type Table struct {
	ID       uint32
	Name     string
	DataRoot PageNumber
	LVRoot   PageNumber // zero if the table has no separate long-value tree
	Columns  []Column
	Indexes  []Index

	byName map[string]Column
}

// Column looks up a column by name (case-sensitive, matching ESE semantics).
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// NumberOfColumns returns the table's column count.
func (t *Table) NumberOfColumns() int { return len(t.Columns) }

// ColumnByIndex returns the column at position i, in catalog declaration
// order.
func (t *Table) ColumnByIndex(i int) (Column, error) {
	if i < 0 || i >= len(t.Columns) {
		return Column{}, wrap(ErrNotFound, fmt.Sprintf("column index %d", i), nil)
	}
	return t.Columns[i], nil
}

// Index looks up an index by name.
func (t *Table) Index(name string) (Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// Catalog is the decoded contents of MSysObjects: every table, its columns,
// and its indexes.
type Catalog struct {
	Tables map[string]*Table
	order  []string // table names, in first-seen catalog scan order
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.Tables[name]
	return t, ok
}

// NumberOfTables returns the table count.
func (c *Catalog) NumberOfTables() int { return len(c.order) }

// TableByIndex returns the table at position i, in catalog scan order.
func (c *Catalog) TableByIndex(i int) (*Table, error) {
	if i < 0 || i >= len(c.order) {
		return nil, wrap(ErrNotFound, fmt.Sprintf("table index %d", i), nil)
	}
	return c.Tables[c.order[i]], nil
}

// Names returns every table name, in catalog scan order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

type catalogRow struct {
	objidTable   uint32
	kind         uint16
	id           uint32
	coltyp       uint32
	flags        uint32
	pages        uint32
	localeID     uint32
	name         string
	templateName string
}

// loadCatalog walks the root catalog B-tree (father-data-page id
// CatalogObjectID) and assembles the Table/Column/Index metadata every other
// table lookup depends on, per §4.6. Column derivation from a template table
// (§9's decided open question) copies the template's non-overridden columns
// onto the derived table after the initial pass.
func loadCatalog(f *File) (*Catalog, error) {
	rows, err := scanCatalogRows(f)
	if err != nil {
		return nil, err
	}

	tables := make(map[uint32]*Table)
	templateOf := make(map[uint32]string)
	var order []string
	for _, r := range rows {
		if r.kind == format.CatalogTypeTable {
			t := &Table{ID: r.objidTable, Name: r.name, DataRoot: PageNumber(r.pages), byName: map[string]Column{}}
			tables[r.objidTable] = t
			order = append(order, r.name)
			if r.templateName != "" {
				templateOf[r.objidTable] = r.templateName
			}
		}
	}

	for _, r := range rows {
		switch r.kind {
		case format.CatalogTypeColumn:
			t, ok := tables[r.objidTable]
			if !ok {
				continue
			}
			col := Column{
				ID:       r.id,
				Name:     r.name,
				Type:     ColumnType(r.coltyp),
				Flags:    r.flags,
				CodePage: r.localeID,
			}
			t.Columns = append(t.Columns, col)
			t.byName[col.Name] = col
		case format.CatalogTypeIndex:
			t, ok := tables[r.objidTable]
			if !ok {
				continue
			}
			t.Indexes = append(t.Indexes, Index{
				Identifier: r.id,
				Name:       r.name,
				Root:       PageNumber(r.pages),
			})
		case format.CatalogTypeLongValue:
			if t, ok := tables[r.objidTable]; ok {
				t.LVRoot = PageNumber(r.pages)
			}
		}
	}

	// Derived-table column inheritance: a table whose TemplateTable name is
	// set inherits every column the template declares that it does not
	// itself override by name.
	for id, templateName := range templateOf {
		if t, ok := tables[id]; ok {
			applyTemplateColumns(t, tables, templateName)
		}
	}

	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
	return &Catalog{Tables: byName, order: order}, nil
}

func applyTemplateColumns(t *Table, tables map[uint32]*Table, templateName string) {
	for _, tmpl := range tables {
		if tmpl.Name != templateName {
			continue
		}
		for _, col := range tmpl.Columns {
			if _, exists := t.byName[col.Name]; exists {
				continue
			}
			t.Columns = append(t.Columns, col)
			t.byName[col.Name] = col
		}
	}
}

func scanCatalogRows(f *File) ([]catalogRow, error) {
	var rows []catalogRow
	err := f.Walk(context.Background(), f.catalogRoot, func(cell LeafCell) error {
		vals, err := decodeRecord(cell.Value, catalogColumns, f.header.NewChecksumRegime(), f.opts.MaxRecordSize)
		if err != nil {
			if f.opts.Tolerant {
				f.diag.record(DiagnosticSkippedRecord, uint32(f.catalogRoot), err.Error())
				return nil
			}
			return err
		}
		rows = append(rows, catalogRowFrom(vals))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// catalogColumnValue returns the first instance of column id, if present;
// none of the MSysObjects/MSysColumns fields the catalog reads are
// MULTI_VALUE, so only the first instance is ever meaningful here.
func catalogColumnValue(vals map[uint32][]rawColumnValue, id uint32) (rawColumnValue, bool) {
	vs, ok := vals[id]
	if !ok || len(vs) == 0 {
		return rawColumnValue{}, false
	}
	return vs[0], true
}

func catalogRowFrom(vals map[uint32][]rawColumnValue) catalogRow {
	var r catalogRow
	if v, ok := catalogColumnValue(vals, format.CatColObjidTable); ok && !v.isNull {
		r.objidTable = format.ReadU32(v.data, 0)
	}
	if v, ok := catalogColumnValue(vals, format.CatColType); ok && !v.isNull && len(v.data) >= 2 {
		r.kind = format.ReadU16(v.data, 0)
	}
	if v, ok := catalogColumnValue(vals, format.CatColID); ok && !v.isNull {
		r.id = format.ReadU32(v.data, 0)
	}
	if v, ok := catalogColumnValue(vals, format.CatColColtyp); ok && !v.isNull {
		r.coltyp = format.ReadU32(v.data, 0)
	}
	if v, ok := catalogColumnValue(vals, format.CatColFlags); ok && !v.isNull {
		r.flags = format.ReadU32(v.data, 0)
	}
	if v, ok := catalogColumnValue(vals, format.CatColPages); ok && !v.isNull {
		r.pages = format.ReadU32(v.data, 0)
	}
	if v, ok := catalogColumnValue(vals, format.CatColLocaleID); ok && !v.isNull {
		r.localeID = format.ReadU32(v.data, 0)
	}
	if v, ok := catalogColumnValue(vals, format.CatColName); ok && !v.isNull {
		r.name = strings.TrimRight(string(v.data), "\x00")
	}
	// CatColTemplateTable (22) lies in the fixed id range and is not the name
	// string; the template table's name lives in the variable-region *Name
	// counterpart (130).
	if v, ok := catalogColumnValue(vals, format.CatColTemplateTableName); ok && !v.isNull {
		r.templateName = strings.TrimRight(string(v.data), "\x00")
	}
	return r
}
