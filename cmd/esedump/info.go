package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ese/ese"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <database>",
		Short: "Validate a database header and report basic metadata",
		Long: `The info command opens an ESE database, validates its file header, and
reports the page size, checksum regime, and table count.

Example:
  esedump info ntds.dit
  esedump info Windows.edb --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

func runInfo(path string) error {
	printVerbose("Opening database: %s\n", path)

	f, err := ese.Open(path, ese.OpenOptions{Tolerant: true, CollectDiagnostics: true, Lossy: lossy})
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	tables := f.Tables()
	diags := f.Diagnostics()

	if jsonOut {
		return printJSON(map[string]any{
			"path":            path,
			"pageSize":        f.PageSize(),
			"newChecksum":     f.Header().NewChecksumRegime(),
			"tableCount":      len(tables),
			"diagnosticCount": len(diags),
		})
	}

	if stat, serr := os.Stat(path); serr == nil {
		printInfo("File: %s (%d bytes)\n", path, stat.Size())
	}
	printInfo("Page size: %d\n", f.PageSize())
	printInfo("Checksum regime: %s\n", checksumRegimeName(f))
	printInfo("Tables: %d\n", len(tables))
	if len(diags) > 0 {
		printInfo("Diagnostics: %d (run with -v to see them)\n", len(diags))
		for _, d := range diags {
			printVerbose("  [%s] page %d: %s\n", d.Kind, d.Page, d.Message)
		}
	}
	return nil
}

func checksumRegimeName(f *ese.File) string {
	if f.Header().NewChecksumRegime() {
		return "XOR32+ECC32 (new)"
	}
	return "XOR32 (legacy)"
}
