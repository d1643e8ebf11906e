package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/go-ese/ese"
)

func init() {
	rootCmd.AddCommand(newTablesCmd())
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <database>",
		Short: "List every table known to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(args[0])
		},
	}
}

func runTables(path string) error {
	f, err := ese.Open(path, ese.OpenOptions{Tolerant: true})
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	names := f.Tables()
	sort.Strings(names)

	if jsonOut {
		return printJSON(names)
	}
	for _, n := range names {
		printInfo("%s\n", n)
	}
	return nil
}
