// Package format houses low-level decoders for the Extensible Storage Engine
// (ESE / JET Blue) on-disk file format. The goal is to keep the parsing
// focused, allocation-free where possible, and independent from the public
// API so higher-level packages can orchestrate the data in a more ergonomic
// form.
package format

// ============================================================================
// File header constants
// ============================================================================
const (
	// HeaderSignature is the 4-byte magic at offset 4 of every ESE file header.
	HeaderSignature uint32 = 0xefcdab89

	// HeaderSize is the size in bytes of the primary (and shadow) file header block.
	HeaderSize = 4096

	// Fixed field offsets within the 4096-byte header block.
	HdrChecksumOffset       = 0x000 // uint32, XOR-32 of the header
	HdrSignatureOffset      = 0x004 // uint32, HeaderSignature
	HdrFormatVersionOffset  = 0x008 // uint32
	HdrFileTypeOffset       = 0x00C // uint32, 0 = database, 2 = streaming file
	HdrDBTimeOffset         = 0x010 // 8 bytes, DBTIME of last attach
	HdrDBSignatureOffset    = 0x018 // 16 bytes, random signature assigned at creation
	HdrDBStateOffset        = 0x028 // uint32
	HdrConsistentPosOffset  = 0x02C // 8 bytes, lgpos
	HdrConsistentTimeOffset = 0x034 // 8 bytes
	HdrAttachTimeOffset     = 0x03C // 8 bytes
	HdrAttachPosOffset      = 0x044 // 8 bytes
	HdrDetachTimeOffset     = 0x04C // 8 bytes
	HdrDetachPosOffset      = 0x054 // 8 bytes
	HdrLogSignatureOffset   = 0x05C // 16 bytes
	HdrPageSizeOffset       = 0x230 // uint32, 0 in old revisions means 4096
	HdrFormatRevisionOffset = 0x22C // uint32
	HdrOldRepairCountOffset = 0x21C // uint32

	// HeaderChecksumWords is the number of little-endian uint32 words, starting
	// right after the checksum field itself, that feed the header XOR-32.
	HeaderChecksumWords = (HeaderSize - 4) / 4

	// DefaultPageSize is used for format revisions that predate the explicit
	// page-size field (it is implicitly 4096 in that case).
	DefaultPageSize = 4096
)

// File-type values at HdrFileTypeOffset.
const (
	FileTypeDatabase = 0
	FileTypeStreaming = 2
)

// Supported file-format versions (HdrFormatVersionOffset).
const (
	FormatVersionExchange55To2003 uint32 = 0x620
	FormatVersionExchange2003SP1  uint32 = 0x623
)

// NewChecksumRevision is the minimum format revision (at FormatVersionExchange55To2003)
// that switched from the legacy whole-page XOR-32 checksum to the per-page
// XOR-32 + ECC-32 scheme.
const NewChecksumRevision uint32 = 0x0b

// ============================================================================
// Page header constants
// ============================================================================
//
// Layout (offsets relative to the start of the page), per the original
// esedb_page_header structure:
//
//	0x00  xor_checksum            uint32
//	0x04  page_number / ecc_checksum   uint32 (union, selected by revision)
//	0x08  modification_time       uint64
//	0x10  previous_page           uint32
//	0x14  next_page               uint32
//	0x18  father_object_identifier uint32
//	0x1C  available_data_size     uint16
//	0x1E  available_uncommitted_data_size uint16
//	0x20  available_data_offset   uint16
//	0x22  available_page_tag      uint16
//	0x24  page_flags              uint32
const (
	PageXORChecksumOffset      = 0x00
	PagePageNumberOffset       = 0x04 // legacy: page number; new: second checksum word (ECC)
	PageECCChecksumOffset      = 0x04
	PageModTimeOffset          = 0x08
	PagePrevPageOffset         = 0x10
	PageNextPageOffset         = 0x14
	PageFDPObjectIDOffset      = 0x18
	PageAvailDataSizeOffset    = 0x1C
	PageAvailUncommittedOffset = 0x1E
	PageAvailDataOffsetOffset  = 0x20
	PageAvailPageTagOffset     = 0x22
	PageFlagsOffset            = 0x24

	PageHeaderSize = 0x28
)

// Page flag bits (PageFlagsOffset), per the ESE format.
const (
	PageFlagRoot             uint32 = 0x0001
	PageFlagLeaf             uint32 = 0x0002
	PageFlagParent           uint32 = 0x0004 // branch page
	PageFlagEmpty            uint32 = 0x0008
	PageFlagSpaceTree        uint32 = 0x0020
	PageFlagIndex            uint32 = 0x0040
	PageFlagLongValue        uint32 = 0x0080
	PageFlagNewRecordFormat  uint32 = 0x0200
	PageFlagScrubbed         uint32 = 0x4000
	PageFlagNewChecksum      uint32 = 0x2000
	PageFlagPrimary          uint32 = 0x0100
	PageFlagNewFormat        uint32 = 0x0400
)

// Page-tag entry layout: a reverse-grown array of 4-byte (offset:u16,size:u16)
// pairs at the page tail. For page sizes
// >= LargePageTagFlagThreshold the top 3 bits of each word hold per-cell flags.
const (
	PageTagEntrySize            = 4
	LargePageTagFlagThreshold   = 16384
	PageTagFlagMask             = 0xE000
	PageTagOffsetMask           = 0x1FFF
)

// Page-tag flag bits occupying the high 3 bits of the offset/size words on
// large-page revisions.
const (
	TagFlagNullKey   uint8 = 0x4
	TagFlagNullValue uint8 = 0x2
	TagFlagDefunct   uint8 = 0x1
)

// Branch/leaf cell flag bits (the byte preceding the local key on many revisions).
const (
	CellFlagCommonKey uint8 = 0x1
)

// ============================================================================
// Catalog (MSysObjects) constants
// ============================================================================
const (
	// CatalogObjectID is the well-known father-data-page object identifier of
	// the root catalog table (MSysObjects).
	CatalogObjectID uint32 = 4
)

// Catalog entry "type" column values.
const (
	CatalogTypeTable      uint16 = 1
	CatalogTypeColumn     uint16 = 2
	CatalogTypeIndex      uint16 = 3
	CatalogTypeLongValue  uint16 = 4
	CatalogTypeCallback   uint16 = 5
)

// Catalog fixed column identifiers, in MSysObjects row layout order.
const (
	CatColObjidTable        = 1
	CatColType              = 2
	CatColID                = 3
	CatColColtyp            = 4
	CatColSpaceUsage        = 8
	CatColFlags             = 9
	CatColPages             = 10
	CatColLocaleID          = 11
	CatColRootFlag          = 12
	CatColRecordOffset      = 13
	CatColLCMapFlags        = 14
	CatColKeyFldIDs         = 15
	CatColVarSegMac         = 16
	CatColSpaceDeleted      = 17
	CatColConditionalFldIDs = 18
	CatColTupleLimits       = 19
	CatColVersion           = 20
	CatColSortID            = 21
	CatColTemplateTable     = 22
	CatColDefaultValue      = 23
	CatColName              = 128
	CatColStats             = 129
	CatColTemplateTableName = 130
	CatColDefaultValueName  = 131
	CatColKeyFldIDsName     = 132
	CatColVarSegMacName     = 133
	CatColConditionalName   = 134
	CatColCallback          = 135
	CatColSeparateLV        = 136
	CatColSpaceHints        = 137
	CatColLVSpaceHints      = 138
	CatColMaintSpaceHints   = 139
)

// Column type identifiers (JET_coltyp), used by the record codec to size
// fixed-width values and select conversions.
const (
	ColtypNil          uint32 = 0
	ColtypBit          uint32 = 1
	ColtypUnsignedByte uint32 = 2
	ColtypShort        uint32 = 3
	ColtypLong         uint32 = 4
	ColtypCurrency     uint32 = 5
	ColtypIEEESingle   uint32 = 6
	ColtypIEEEDouble   uint32 = 7
	ColtypDateTime     uint32 = 8
	ColtypBinary       uint32 = 9
	ColtypText         uint32 = 10
	ColtypLongBinary   uint32 = 11
	ColtypLongText     uint32 = 12
	ColtypSLV          uint32 = 13
	ColtypUnsignedLong uint32 = 14
	ColtypLongLong     uint32 = 15
	ColtypGUID         uint32 = 16
	ColtypUnsignedShort uint32 = 17
)

// Column flag bits (CatColFlags).
const (
	ColumnFlagFixed              uint32 = 0x0001
	ColumnFlagTagged             uint32 = 0x0002
	ColumnFlagVersion            uint32 = 0x0008
	ColumnFlagAutoincrement      uint32 = 0x0010
	ColumnFlagMultiValued        uint32 = 0x0400
	ColumnFlagDefaultValue       uint32 = 0x0020
	ColumnFlagEscrowUpdate       uint32 = 0x0040
	ColumnFlagUnversioned        uint32 = 0x1000
	ColumnFlagMaybeNull          uint32 = 0x0080
	ColumnFlagUserDefinedDefault uint32 = 0x0800
	ColumnFlagTemplateColumn     uint32 = 0x2000
	ColumnFlagDerivedColumn      uint32 = 0x4000
	ColumnFlagCompressed         uint32 = 0x00080000
	ColumnFlagEncrypted          uint32 = 0x00100000
)

// ============================================================================
// Record codec constants
// ============================================================================
const (
	// RecMaxFixedColumnID is the inclusive upper bound of the fixed-column id range.
	RecMaxFixedColumnID = 127
	// RecMaxVariableColumnID is the inclusive upper bound of the variable-column id range.
	RecMaxVariableColumnID = 255
	// RecMinTaggedColumnID is the inclusive lower bound of the tagged-column id range.
	RecMinTaggedColumnID = 256

	RecVariableOffsetNullBit = 0x8000
	RecVariableOffsetMask    = 0x7FFF

	// Tagged-entry flag bits, present only under PageFlagNewRecordFormat.
	TaggedFlagVariableSize           uint8 = 0x01
	TaggedFlagCompressed             uint8 = 0x02
	TaggedFlagLongValue              uint8 = 0x04
	TaggedFlagMultiValue             uint8 = 0x08
	TaggedFlagMultiValueSizeDefined  uint8 = 0x10
)

// ============================================================================
// Long-value constants
// ============================================================================
const (
	// LVKeySize is the size in bytes of an LV-tree key: 4-byte lvid + 4-byte segment.
	LVKeySize = 8
	// LVHeaderSegment is the reserved segment number identifying the header record.
	LVHeaderSegment uint32 = 0
	// LVCompressedFlag marks the header record's value as carrying a compressed stream.
	LVCompressedFlag uint8 = 0x01
)

// Compression discriminators (first byte of a COMPRESSED tagged value).
const (
	CompressionNone    uint8 = 0x00
	Compression7Bit    uint8 = 0x12
	CompressionXPRESS  uint8 = 0x18
)

// ============================================================================
// Generic constants
// ============================================================================
const (
	// DWORDSize is the size in bytes of a little-endian uint32.
	DWORDSize = 4
	// WORDSize is the size in bytes of a little-endian uint16.
	WORDSize = 2
)
