package ese

// OpenOptions configures how a File is opened and how tolerant the reader is
// of recoverable corruption, mirroring the local-recovery policy described
// for the B+-tree walker and record codec.
type OpenOptions struct {
	// PageCacheSize is the number of decoded page frames kept in the LRU
	// cache (§4.2). Zero selects the default of 128.
	PageCacheSize int

	// CacheShards, when > 1, stripes the page cache across this many
	// independently-locked shards keyed by page_number % CacheShards, for
	// higher read fan-out across goroutines. Zero or one disables striping.
	CacheShards int

	// Tolerant continues traversal past a recoverable error (bad checksum on
	// one subtree, a malformed record) instead of surfacing it immediately,
	// recording a Diagnostic and skipping the affected cell or subtree.
	Tolerant bool

	// MaxRecordSize sanity-bounds a single decoded record, guarding against
	// a corrupt length field driving an unbounded allocation. Zero selects
	// a generous internal default.
	MaxRecordSize int

	// Lossy controls codepage decode failure behavior: when true, invalid
	// byte sequences are replaced rather than surfaced as an error.
	Lossy bool

	// CollectDiagnostics enables accumulation of non-fatal diagnostics
	// (scrubbed pages, ECC-corrected pages, skipped records) retrievable via
	// File.Diagnostics after the fact.
	CollectDiagnostics bool
}

const defaultPageCacheSize = 128
const defaultMaxRecordSize = 1 << 21

func (o OpenOptions) withDefaults() OpenOptions {
	if o.PageCacheSize <= 0 {
		o.PageCacheSize = defaultPageCacheSize
	}
	if o.MaxRecordSize <= 0 {
		o.MaxRecordSize = defaultMaxRecordSize
	}
	if o.CacheShards <= 0 {
		o.CacheShards = 1
	}
	return o
}
