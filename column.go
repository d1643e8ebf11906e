package ese

import (
	"fmt"

	"github.com/go-ese/ese/internal/format"
)

// ColumnType is a JET_coltyp value identifying a column's on-disk representation.
type ColumnType uint32

const (
	ColTypeNil          ColumnType = ColumnType(format.ColtypNil)
	ColTypeBit          ColumnType = ColumnType(format.ColtypBit)
	ColTypeUnsignedByte ColumnType = ColumnType(format.ColtypUnsignedByte)
	ColTypeShort        ColumnType = ColumnType(format.ColtypShort)
	ColTypeLong         ColumnType = ColumnType(format.ColtypLong)
	ColTypeCurrency     ColumnType = ColumnType(format.ColtypCurrency)
	ColTypeIEEESingle   ColumnType = ColumnType(format.ColtypIEEESingle)
	ColTypeIEEEDouble   ColumnType = ColumnType(format.ColtypIEEEDouble)
	ColTypeDateTime     ColumnType = ColumnType(format.ColtypDateTime)
	ColTypeBinary       ColumnType = ColumnType(format.ColtypBinary)
	ColTypeText         ColumnType = ColumnType(format.ColtypText)
	ColTypeLongBinary   ColumnType = ColumnType(format.ColtypLongBinary)
	ColTypeLongText     ColumnType = ColumnType(format.ColtypLongText)
	ColTypeSLV          ColumnType = ColumnType(format.ColtypSLV)
	ColTypeUnsignedLong ColumnType = ColumnType(format.ColtypUnsignedLong)
	ColTypeLongLong     ColumnType = ColumnType(format.ColtypLongLong)
	ColTypeGUID         ColumnType = ColumnType(format.ColtypGUID)
	ColTypeUnsignedShort ColumnType = ColumnType(format.ColtypUnsignedShort)
)

func (t ColumnType) String() string {
	switch t {
	case ColTypeNil:
		return "Nil"
	case ColTypeBit:
		return "Bit"
	case ColTypeUnsignedByte:
		return "UnsignedByte"
	case ColTypeShort:
		return "Short"
	case ColTypeLong:
		return "Long"
	case ColTypeCurrency:
		return "Currency"
	case ColTypeIEEESingle:
		return "IEEESingle"
	case ColTypeIEEEDouble:
		return "IEEEDouble"
	case ColTypeDateTime:
		return "DateTime"
	case ColTypeBinary:
		return "Binary"
	case ColTypeText:
		return "Text"
	case ColTypeLongBinary:
		return "LongBinary"
	case ColTypeLongText:
		return "LongText"
	case ColTypeSLV:
		return "SLV"
	case ColTypeUnsignedLong:
		return "UnsignedLong"
	case ColTypeLongLong:
		return "LongLong"
	case ColTypeGUID:
		return "GUID"
	case ColTypeUnsignedShort:
		return "UnsignedShort"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
}

// Column describes one column of a table, as recorded in the catalog.
type Column struct {
	ID             uint32
	Name           string
	Type           ColumnType
	Flags          uint32
	CodePage       uint32
	TemplateColumn string // name of the template-table column this derives from, if any
}

func (c Column) Fixed() bool          { return c.Flags&format.ColumnFlagFixed != 0 }
func (c Column) Tagged() bool         { return c.Flags&format.ColumnFlagTagged != 0 }
func (c Column) MultiValued() bool    { return c.Flags&format.ColumnFlagMultiValued != 0 }
func (c Column) MaybeNull() bool      { return c.Flags&format.ColumnFlagMaybeNull != 0 }
func (c Column) Derived() bool        { return c.Flags&format.ColumnFlagDerivedColumn != 0 }
func (c Column) IsTemplateColumn() bool { return c.Flags&format.ColumnFlagTemplateColumn != 0 }
func (c Column) Compressed() bool     { return c.Flags&format.ColumnFlagCompressed != 0 }
func (c Column) Encrypted() bool      { return c.Flags&format.ColumnFlagEncrypted != 0 }

// catalogColumns is the fixed schema of MSysObjects itself: the catalog is
// self-describing for ordinary tables, but its own row layout is a format
// constant, not something discoverable by reading the catalog (there being
// nothing earlier to read it from).
var catalogColumns = []Column{
	{ID: format.CatColObjidTable, Type: ColTypeLong},
	{ID: format.CatColType, Type: ColTypeShort},
	{ID: format.CatColID, Type: ColTypeLong},
	{ID: format.CatColColtyp, Type: ColTypeLong},
	{ID: format.CatColSpaceUsage, Type: ColTypeLong},
	{ID: format.CatColFlags, Type: ColTypeLong},
	{ID: format.CatColPages, Type: ColTypeLong},
	{ID: format.CatColLocaleID, Type: ColTypeLong},
	{ID: format.CatColRootFlag, Type: ColTypeBit},
	{ID: format.CatColRecordOffset, Type: ColTypeShort},
	{ID: format.CatColLCMapFlags, Type: ColTypeLong},
	{ID: format.CatColKeyFldIDs, Type: ColTypeBinary},
	{ID: format.CatColVarSegMac, Type: ColTypeLong},
	{ID: format.CatColSpaceDeleted, Type: ColTypeLong},
	{ID: format.CatColConditionalFldIDs, Type: ColTypeBinary},
	{ID: format.CatColTupleLimits, Type: ColTypeBinary},
	{ID: format.CatColVersion, Type: ColTypeLong},
	{ID: format.CatColSortID, Type: ColTypeBinary},
	{ID: format.CatColTemplateTable, Type: ColTypeText},
	{ID: format.CatColDefaultValue, Type: ColTypeLongBinary},
	{ID: format.CatColName, Type: ColTypeText},
	{ID: format.CatColStats, Type: ColTypeBinary},
	{ID: format.CatColTemplateTableName, Type: ColTypeText},
	{ID: format.CatColDefaultValueName, Type: ColTypeText},
	{ID: format.CatColKeyFldIDsName, Type: ColTypeText},
	{ID: format.CatColVarSegMacName, Type: ColTypeText},
	{ID: format.CatColConditionalName, Type: ColTypeText},
	{ID: format.CatColCallback, Type: ColTypeText},
	{ID: format.CatColSeparateLV, Type: ColTypeBit},
	{ID: format.CatColSpaceHints, Type: ColTypeBinary},
	{ID: format.CatColLVSpaceHints, Type: ColTypeBinary},
	{ID: format.CatColMaintSpaceHints, Type: ColTypeBinary},
}
