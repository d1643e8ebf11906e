package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ese/ese"
)

func init() {
	rootCmd.AddCommand(newSchemaCmd())
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <database> <table>",
		Short: "Print a table's columns and indexes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(args[0], args[1])
		},
	}
}

func runSchema(path, tableName string) error {
	f, err := ese.Open(path, ese.OpenOptions{Tolerant: true})
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := f.Table(tableName)
	if err != nil {
		return fmt.Errorf("table %q: %w", tableName, err)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"name":    tbl.Name,
			"columns": tbl.Columns,
			"indexes": tbl.Indexes,
		})
	}

	printInfo("Table: %s (data root page %d)\n", tbl.Name, tbl.DataRoot)
	printInfo("Columns:\n")
	for _, c := range tbl.Columns {
		printInfo("  %-24s %-14s id=%d flags=0x%04x\n", c.Name, c.Type, c.ID, c.Flags)
	}
	if len(tbl.Indexes) > 0 {
		printInfo("Indexes:\n")
		for _, idx := range tbl.Indexes {
			printInfo("  %-24s root page %d\n", idx.Name, idx.Root)
		}
	}
	return nil
}
