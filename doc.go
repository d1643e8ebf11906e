// Package ese provides read-only access to Extensible Storage Engine (ESE,
// also known as JET Blue) database files: .edb, .dit (Active Directory's
// ntds.dit), .que, and the other extensions the engine uses.
//
// # Overview
//
// ESE organizes a database as a sequence of fixed-size pages forming one
// B+-tree per table plus a self-describing catalog tree (MSysObjects) that
// declares every other table's columns and indexes. This package decodes
// that structure directly from a memory-mapped or in-memory image, without
// needing a live Windows host or the original esent.dll.
//
// # Key Types
//
//   - File: an opened database, its header, page cache, and decoded catalog
//   - Catalog, Table, Column, Index: the decoded schema
//   - Record, Value: a scanned or looked-up row and its typed column values
//
// # Opening a database
//
//	f, err := ese.Open("ntds.dit", ese.OpenOptions{Tolerant: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
// OpenBytes and OpenReaderAt open an already-loaded image or an arbitrary
// io.ReaderAt, sharing the same validation and catalog-load path as Open.
//
// # Reading data
//
//	tbl, err := f.Table("datatable")
//	err = f.Records(ctx, tbl, func(r *ese.Record) error {
//	    v, err := r.Value("DNT_col")
//	    ...
//	    return nil
//	})
//
// Lookup seeks a table's data tree for one record by raw primary-key bytes;
// IndexEntries walks a secondary index's raw (key, primary-key reference)
// pairs. Neither performs ESE's Unicode key collation, so both only serve
// tables with byte-comparable keys — collation is out of scope, per the
// read-only, introspection-focused nature of this package.
//
// File, Table, and Record also expose positional access (NumberOfTables,
// TableByIndex, Table.NumberOfColumns, Table.ColumnByIndex, NumberOfRecords,
// RecordByIndex, Record.ValueAt) for callers working from an index rather
// than a name. Since ESE B-trees keep no running row count, NumberOfRecords
// and RecordByIndex cost a full sequential scan each call.
//
// # Tolerant mode
//
// With OpenOptions.Tolerant, a bad checksum, truncated record, or cycle in
// a B-tree is recorded as a Diagnostic and the affected page or record is
// skipped rather than aborting the whole read. File.Diagnostics returns
// everything recorded since Open, when OpenOptions.CollectDiagnostics is set.
//
// # Thread safety
//
// A File and its Catalog are immutable after Open and may be read from
// multiple goroutines concurrently; the page cache is the only shared
// mutable state and is safe for concurrent access.
//
// # Non-goals
//
// This package never writes to a database, replays its transaction log, or
// implements ESE's Unicode/NLS index-key collation. For a command-line
// inspector built on this package, see cmd/esedump.
package ese
