package ese

import (
	"fmt"

	"github.com/go-ese/ese/internal/format"
)

// Header is a zero-copy view over the 4096-byte primary (or shadow) file
// header block. It carries enough information to determine page size and
// checksum regime before any page is read; the catalog's root page is not
// read from it.
type Header struct {
	buf []byte
}

// FileType distinguishes a database file from a streaming file.
type FileType uint32

const (
	FileTypeDatabase  FileType = format.FileTypeDatabase
	FileTypeStreaming FileType = format.FileTypeStreaming
)

// ParseHeader validates and wraps a raw 4096-byte header block. It does not
// compare primary against shadow; that comparison is made by selectPrimary
// when a File is opened.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < format.HeaderSize {
		return Header{}, wrap(ErrBadHeader, fmt.Sprintf("header truncated: have %d, need %d", len(b), format.HeaderSize), nil)
	}
	h := Header{buf: b[:format.HeaderSize]}

	sig := format.ReadU32(h.buf, format.HdrSignatureOffset)
	if sig != format.HeaderSignature {
		return Header{}, wrap(ErrBadHeader, fmt.Sprintf("signature 0x%08x != 0x%08x", sig, format.HeaderSignature), nil)
	}

	if err := h.validateVersion(); err != nil {
		return Header{}, err
	}
	if err := h.validatePageSize(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func (h Header) validateVersion() error {
	v := h.FormatVersion()
	switch v {
	case format.FormatVersionExchange55To2003, format.FormatVersionExchange2003SP1:
		return nil
	default:
		return wrap(ErrUnsupportedVersion, fmt.Sprintf("format version 0x%03x", v), nil)
	}
}

func (h Header) validatePageSize() error {
	p := h.PageSize()
	if p == 0 {
		return wrap(ErrBadHeader, "page size is zero", nil)
	}
	if p&(p-1) != 0 {
		return wrap(ErrBadHeader, fmt.Sprintf("page size %d is not a power of two", p), nil)
	}
	if p < 2048 || p > 65536 {
		return wrap(ErrBadHeader, fmt.Sprintf("page size %d out of supported range", p), nil)
	}
	return nil
}

// FormatVersion returns the raw format-version word (e.g. 0x620, 0x623).
func (h Header) FormatVersion() uint32 {
	return format.ReadU32(h.buf, format.HdrFormatVersionOffset)
}

// FormatRevision returns the format-revision word, used to select the
// checksum regime (legacy vs. new) and record layout (new vs. old record format).
func (h Header) FormatRevision() uint32 {
	return format.ReadU32(h.buf, format.HdrFormatRevisionOffset)
}

// FileType returns whether this is a database or a streaming file.
func (h Header) FileType() FileType {
	return FileType(format.ReadU32(h.buf, format.HdrFileTypeOffset))
}

// PageSize returns the configured page size, defaulting to 4096 for
// revisions that predate the explicit page-size field.
func (h Header) PageSize() uint32 {
	p := format.ReadU32(h.buf, format.HdrPageSizeOffset)
	if p == 0 {
		return format.DefaultPageSize
	}
	return p
}

// NewChecksumRegime reports whether pages in this file use the post-Exchange
// 2003 SP1 XOR-32+ECC-32 checksum scheme rather than the legacy single XOR-32.
func (h Header) NewChecksumRegime() bool {
	return h.FormatVersion() > format.FormatVersionExchange55To2003 ||
		(h.FormatVersion() == format.FormatVersionExchange55To2003 && h.FormatRevision() >= format.NewChecksumRevision)
}

// StoredChecksum returns the checksum word recorded at offset 0.
func (h Header) StoredChecksum() uint32 {
	return format.ReadU32(h.buf, format.HdrChecksumOffset)
}

// ComputedChecksum recomputes the header's XOR-32 checksum: the XOR of every
// little-endian uint32 word from offset 4 to the end of the block.
func (h Header) ComputedChecksum() uint32 {
	var sum uint32
	for i := 0; i < format.HeaderChecksumWords; i++ {
		off := format.HdrSignatureOffset + i*4
		sum ^= format.ReadU32(h.buf, off)
	}
	return sum
}

// ChecksumOK reports whether the stored checksum matches the computed one.
func (h Header) ChecksumOK() bool {
	return h.StoredChecksum() == h.ComputedChecksum()
}

// Bytes returns the raw 4096-byte header block (zero-copy).
func (h Header) Bytes() []byte { return h.buf }

// selectPrimary picks between a primary and shadow header, per §4.3: mismatch
// is reported but the primary always wins.
func selectPrimary(primary, shadow Header, diag *diagnosticCollector) Header {
	if !primary.ChecksumOK() {
		diag.record(DiagnosticECCCorrected, 0, "primary header checksum mismatch, shadow header not promoted")
	} else if shadow.buf != nil && !shadow.ChecksumOK() {
		diag.record(DiagnosticECCCorrected, 1, "shadow header checksum mismatch")
	}
	return primary
}
