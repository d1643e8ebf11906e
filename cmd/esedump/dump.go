package main

import (
	"context"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ese/ese"
)

var (
	dumpLimit    int
	dumpCodePage uint32
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().IntVar(&dumpLimit, "limit", 0, "Stop after this many rows (0 = unlimited)")
	cmd.Flags().Uint32Var(&dumpCodePage, "codepage", 1252, "Codepage used to decode Text/LongText columns")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <database> <table>",
		Short: "Stream a table's rows as CSV or JSON",
		Long: `The dump command performs a full scan of a table's data tree, decoding
every column of every row, and streams them to stdout as CSV (the default) or,
with --json, as one indented JSON object per row.

Example:
  esedump dump ntds.dit datatable --limit 10
  esedump dump Windows.edb SystemIndex_PropertyStore --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0], args[1])
		},
	}
}

// errStopScan is a sentinel RecordVisitor error used only to break out of
// Records once --limit rows have been collected; it never reaches the user.
var errStopScan = errors.New("dump: row limit reached")

func runDump(path, tableName string) error {
	f, err := ese.Open(path, ese.OpenOptions{Tolerant: true, Lossy: lossy})
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := f.Table(tableName)
	if err != nil {
		return fmt.Errorf("table %q: %w", tableName, err)
	}

	var csvw *csv.Writer
	if !jsonOut {
		csvw = csv.NewWriter(os.Stdout)
		header := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			header[i] = c.Name
		}
		if err := csvw.Write(header); err != nil {
			return err
		}
	}

	n := 0
	scanErr := f.Records(context.Background(), tbl, func(r *ese.Record) error {
		if dumpLimit > 0 && n >= dumpLimit {
			return errStopScan
		}
		n++

		if jsonOut {
			row := make(map[string]string, len(tbl.Columns))
			for _, c := range tbl.Columns {
				v, verr := r.Value(c.Name)
				if verr != nil {
					continue
				}
				row[c.Name] = formatValue(v, c)
			}
			return printJSON(row)
		}

		record := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			v, verr := r.Value(c.Name)
			if verr != nil {
				record[i] = fmt.Sprintf("<%v>", verr)
				continue
			}
			record[i] = formatValue(v, c)
		}
		return csvw.Write(record)
	}, ese.WithPrefetch(8))

	if csvw != nil {
		csvw.Flush()
		if err := csvw.Error(); err != nil {
			return err
		}
	}
	if scanErr != nil && !errors.Is(scanErr, errStopScan) {
		return fmt.Errorf("scanning %s: %w", tableName, scanErr)
	}
	return nil
}

func formatValue(v ese.Value, c ese.Column) string {
	if v.Null {
		return ""
	}
	switch c.Type {
	case ese.ColTypeText, ese.ColTypeLongText:
		s, err := v.String(dumpCodePage)
		if err != nil {
			return fmt.Sprintf("<%v>", err)
		}
		return s
	case ese.ColTypeBit:
		return fmt.Sprintf("%v", v.Bool())
	case ese.ColTypeGUID:
		if id, ok := v.UUID(); ok {
			return id.String()
		}
		return "<invalid guid>"
	case ese.ColTypeDateTime:
		return v.Time().Format("2006-01-02T15:04:05Z07:00")
	case ese.ColTypeCurrency, ese.ColTypeIEEESingle, ese.ColTypeIEEEDouble:
		return fmt.Sprintf("%v", v.Float64())
	case ese.ColTypeBinary, ese.ColTypeLongBinary:
		b := v.Bytes()
		if len(b) > 32 {
			return fmt.Sprintf("%s...(%d bytes)", hex.EncodeToString(b[:32]), len(b))
		}
		return hex.EncodeToString(b)
	default:
		return fmt.Sprintf("%d", v.Int64())
	}
}
