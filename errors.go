package ese

import "fmt"

// ErrKind classifies the domain of an Error, mirroring the structured
// (domain, code, chained_cause, message) error model the library promises
// to its callers.
type ErrKind int

const (
	// ErrKindIO covers short reads, failed opens, and other backing-store errors.
	ErrKindIO ErrKind = iota
	// ErrKindFormat covers malformed headers, pages, or records.
	ErrKindFormat
	// ErrKindChecksum covers a page or header whose checksum did not validate.
	ErrKindChecksum
	// ErrKindArgument covers invalid caller input (bad index, nil handle, ...).
	ErrKindArgument
	// ErrKindUnsupported covers recognized-but-unimplemented format features.
	ErrKindUnsupported
	// ErrKindNotFound covers lookups (table, column, index) that found nothing.
	ErrKindNotFound
	// ErrKindCancelled covers traversal aborted via a cancelled context.
	ErrKindCancelled
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindIO:
		return "IO"
	case ErrKindFormat:
		return "Format"
	case ErrKindChecksum:
		return "Checksum"
	case ErrKindArgument:
		return "Argument"
	case ErrKindUnsupported:
		return "Unsupported"
	case ErrKindNotFound:
		return "NotFound"
	case ErrKindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the structured error type returned at every public boundary of
// this library: a domain (Kind), a human message, and an optional wrapped
// cause for errors.Is/errors.As chaining.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error

	// sentinel is the package-level *Error (one of the vars below) this
	// error was produced from via wrap, so Is can compare identity against
	// it even though wrap itself always allocates a fresh *Error.
	sentinel *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ese: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("ese: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether e was produced from target via wrap, so that
// errors.Is(err, ese.ErrNotFound) and the other exported sentinels work
// against every error this package returns, not just the sentinel values
// themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || e.sentinel == t
}

func newErr(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinel errors. Callers compare with errors.Is against these, or switch
// on (*Error).Kind for the coarser domain classification.
var (
	ErrBadHeader          = &Error{Kind: ErrKindFormat, Msg: "bad file header"}
	ErrUnsupportedVersion = &Error{Kind: ErrKindUnsupported, Msg: "unsupported file format version"}
	ErrChecksumMismatch   = &Error{Kind: ErrKindChecksum, Msg: "checksum mismatch"}
	ErrNotARoot           = &Error{Kind: ErrKindFormat, Msg: "page is not a root page"}
	ErrTagOutOfBounds     = &Error{Kind: ErrKindFormat, Msg: "page tag out of bounds"}
	ErrTagOverlap         = &Error{Kind: ErrKindFormat, Msg: "page tags overlap"}
	ErrUnknownPageRole    = &Error{Kind: ErrKindFormat, Msg: "unknown page role"}
	ErrMalformedRecord    = &Error{Kind: ErrKindFormat, Msg: "malformed record"}
	ErrTruncatedValue     = &Error{Kind: ErrKindFormat, Msg: "truncated value"}
	ErrUnknownColumnType  = &Error{Kind: ErrKindUnsupported, Msg: "unknown column type"}
	ErrCodepageUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported codepage"}
	ErrLongValueMissing   = &Error{Kind: ErrKindFormat, Msg: "long value missing"}
	ErrLongValueShort     = &Error{Kind: ErrKindFormat, Msg: "long value segment short"}
	ErrLongValueSizeMismatch = &Error{Kind: ErrKindFormat, Msg: "long value size mismatch"}
	ErrNotFound           = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	ErrCancelled          = &Error{Kind: ErrKindCancelled, Msg: "traversal cancelled"}
	ErrOutOfRange         = &Error{Kind: ErrKindArgument, Msg: "index out of range"}
	ErrClosed             = &Error{Kind: ErrKindArgument, Msg: "handle used after close"}
	ErrRecordTooLarge     = &Error{Kind: ErrKindFormat, Msg: "record exceeds configured size limit"}
)

// wrap produces a fresh *Error of the given sentinel's kind with additional
// context, preserving the sentinel's message as a prefix and recording the
// sentinel itself so errors.Is(result, sentinel) succeeds.
func wrap(sentinel *Error, detail string, cause error) *Error {
	msg := sentinel.Msg
	if detail != "" {
		msg = sentinel.Msg + ": " + detail
	}
	return &Error{Kind: sentinel.Kind, Msg: msg, Err: cause, sentinel: sentinel}
}
