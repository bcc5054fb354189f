// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"flatbridge/cli/internal/presenter"
	"flatbridge/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// importCmd runs a file-to-store transfer without prompts.
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Upload a CSV file into the store",
	Long: `The import command uploads FILE to the transfer endpoint, which loads it into
--table (default from config, uploaded_data when unset) using --delimiter to split
fields. Use - as FILE to read from standard input.`,
	Example: `  flatbridge import people.csv --table people
  flatbridge import - --delimiter ';' < people.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, name, err := readUpload(args[0])
		if err != nil {
			return err
		}
		cfg, src, err := resolveConnection()
		if err != nil {
			return err
		}
		printConnection(cfg, src)

		s := newSession(newAPI(), cfg)
		if err := s.SetDirection(session.FileToStore); err != nil {
			return err
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Target table: ") + appConfig.Import.Table)
		err = step(s, session.PhaseTransferring, func() error {
			return s.ImportFile(cmd.Context(), data, name)
		})
		if err != nil {
			return err
		}
		presenter.RenderPhase(s.Snapshot(), appConfig.Endpoint, "")
		return nil
	},
}

// readUpload loads the whole file; uploads are sent in one request.
func readUpload(path string) ([]byte, string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return b, "stdin.csv", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return b, filepath.Base(path), nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	f := importCmd.Flags()
	f.String("table", "", "Target table (default from config)")
	f.String("delimiter", "", "Field delimiter (default from config)")
}
