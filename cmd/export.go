// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"os"

	"flatbridge/cli/internal/session"

	"github.com/spf13/cobra"
)

var (
	exportTable   string
	exportColumns []string
	exportName    string
	exportStdout  bool
)

// exportCmd runs a store-to-file transfer without prompts.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export table columns to a CSV file",
	Long: `The export command discovers the store's tables, loads the columns of
--table and exports the columns named by --columns (all columns when omitted)
in the order given. The CSV is written to --out (default: current directory)
or to standard output with --stdout.`,
	Example: `  flatbridge export --table events --columns id,ts --out ./exports --gzip
  flatbridge export --table events --stdout > events.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportTable == "" {
			return errors.New("--table is required")
		}
		cfg, src, err := resolveConnection()
		if err != nil {
			return err
		}
		if !exportStdout {
			printConnection(cfg, src)
		}

		ctx := cmd.Context()
		s := newSession(newAPI(), cfg)
		if err := step(s, session.PhaseConnecting, func() error { return s.Connect(ctx) }); err != nil {
			return err
		}
		if err := s.SelectTable(exportTable); err != nil {
			return err
		}
		if err := step(s, session.PhaseLoadingColumns, func() error { return s.LoadColumns(ctx) }); err != nil {
			return err
		}

		columns := uniqueColumns(exportColumns)
		if len(columns) == 0 {
			columns = s.Snapshot().Columns
		}
		for _, c := range columns {
			if err := s.ToggleColumn(c); err != nil {
				return err
			}
		}
		if err := step(s, session.PhaseTransferring, func() error { return s.ExportSelection(ctx) }); err != nil {
			return err
		}

		snap := s.Snapshot()
		if exportStdout {
			res, ok := snap.Outcome.(session.ExportResult)
			if !ok {
				return nil
			}
			_, err := os.Stdout.WriteString(res.Payload)
			return err
		}
		return finishExport(snap, appConfig.Export.Dir, exportName, appConfig.Export.Gzip)
	},
}

// uniqueColumns drops repeated names, keeping the first occurrence, so a
// column named twice is toggled once.
func uniqueColumns(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func init() {
	rootCmd.AddCommand(exportCmd)
	f := exportCmd.Flags()
	f.StringVar(&exportTable, "table", "", "Table to export")
	f.StringSliceVar(&exportColumns, "columns", nil, "Columns to export, in order (default all)")
	f.String("out", "", "Directory the CSV file is written to")
	f.Bool("gzip", false, "Compress the CSV file with gzip")
	f.StringVar(&exportName, "name", "", "File name (default export.csv)")
	f.BoolVar(&exportStdout, "stdout", false, "Write the CSV to standard output")
}
