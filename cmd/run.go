// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"flatbridge/cli/internal/conn"
	"flatbridge/cli/internal/presenter"
	"flatbridge/cli/internal/session"
	"flatbridge/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const (
	choiceExport = "Store → CSV file (export)"
	choiceImport = "CSV file → store (import)"
)

// runCmd is the interactive transfer wizard. It walks one session through
// direction, discovery, table and column selection, and the transfer itself.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Interactive transfer wizard",
	Long: `The run command starts an interactive session against the saved store
connection. Choose a direction, then either pick a table and columns to export
as CSV, or pick a CSV file to upload into the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !terminal.IsInteractive() {
			return errors.New("run needs an interactive terminal; use 'flatbridge export' or 'flatbridge import' in scripts")
		}
		cfg, src, err := resolveConnection()
		if err != nil {
			return err
		}
		printConnection(cfg, src)

		s := newSession(newAPI(), cfg)
		direction, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{choiceExport, choiceImport}).
			Show("Direction")
		if err != nil {
			return err
		}
		if direction == choiceImport {
			if err := s.SetDirection(session.FileToStore); err != nil {
				return err
			}
		}
		if err := reviewConfig(s); err != nil {
			return err
		}
		if direction == choiceImport {
			return runImportWizard(cmd.Context(), s)
		}
		return runExportWizard(cmd.Context(), s)
	},
}

// reviewConfig shows the connection and lets the operator edit single fields
// until they confirm it. Edits go through the session so it stays consistent.
func reviewConfig(s *session.Session) error {
	for {
		cfg := s.Snapshot().Config
		rows := make([]string, 0, len(conn.Fields))
		for _, f := range conn.Fields {
			v := cfg.Get(f)
			if f == conn.FieldCredential && v != "" {
				v = "***"
			}
			rows = append(rows, fmt.Sprintf("%-10s %s", promptLabel(f)+":", v))
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Connection")).
			WithPadding(1).
			Println(strings.Join(rows, "\n"))

		edit, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show("Edit a field?")
		if err != nil || !edit {
			return err
		}

		names := make([]string, len(conn.Fields))
		for i, f := range conn.Fields {
			names[i] = string(f)
		}
		name, err := pterm.DefaultInteractiveSelect.WithOptions(names).Show("Field")
		if err != nil {
			return err
		}
		field, err := conn.ParseField(name)
		if err != nil {
			return err
		}

		var value string
		if field == conn.FieldCredential {
			value, err = terminal.ReadSecret("Credential (JWT token): ")
		} else {
			value, err = pterm.DefaultInteractiveTextInput.
				WithDefaultValue(cfg.Get(field)).
				Show(promptLabel(field))
		}
		if err != nil {
			return err
		}
		if err := s.EditConfig(field, strings.TrimSpace(value)); err != nil {
			return err
		}
	}
}

func runExportWizard(ctx context.Context, s *session.Session) error {
	err := step(s, session.PhaseConnecting, func() error { return s.Connect(ctx) })
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	presenter.RenderPhase(snap, appConfig.Endpoint, "")
	if len(snap.Schema) == 0 {
		pterm.Warning.Println("The store has no tables to export")
		return nil
	}

	table, err := pterm.DefaultInteractiveSelect.WithOptions(snap.Schema).Show("Table")
	if err != nil {
		return err
	}
	if err := s.SelectTable(table); err != nil {
		return err
	}
	err = step(s, session.PhaseLoadingColumns, func() error { return s.LoadColumns(ctx) })
	if err != nil {
		return err
	}

	columns := s.Snapshot().Columns
	if len(columns) == 0 {
		pterm.Warning.Printf("%s has no columns\n", table)
		return nil
	}
	picked, err := pterm.DefaultInteractiveMultiselect.
		WithOptions(columns).
		WithDefaultOptions(columns).
		Show("Columns to export")
	if err != nil {
		return err
	}
	// Toggle in catalog order so the export keeps the table's column order.
	for _, c := range columns {
		if slices.Contains(picked, c) {
			if err := s.ToggleColumn(c); err != nil {
				return err
			}
		}
	}
	presenter.RenderPhase(s.Snapshot(), appConfig.Endpoint, "")
	if len(picked) == 0 {
		pterm.Warning.Println("No columns selected; nothing to export")
		return nil
	}

	err = step(s, session.PhaseTransferring, func() error { return s.ExportSelection(ctx) })
	if err != nil {
		return err
	}
	return finishExport(s.Snapshot(), appConfig.Export.Dir, "", appConfig.Export.Gzip)
}

func runImportWizard(ctx context.Context, s *session.Session) error {
	path, err := pterm.DefaultInteractiveTextInput.Show("CSV file to upload")
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Target table: ") + appConfig.Import.Table)
	err = step(s, session.PhaseTransferring, func() error {
		return s.ImportFile(ctx, data, filepath.Base(path))
	})
	if err != nil {
		return err
	}
	presenter.RenderPhase(s.Snapshot(), appConfig.Endpoint, "")
	return nil
}

// finishExport renders a successful export and writes its artifact into dir.
// An empty name keeps the default artifact name.
func finishExport(snap session.Snapshot, dir, name string, gzip bool) error {
	artifact, ok := presenter.ArtifactOf(snap.Outcome)
	if !ok {
		return nil
	}
	path, err := presenter.Save(dir, artifact, presenter.SaveOptions{Gzip: gzip, Name: name})
	if err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	presenter.RenderPhase(snap, appConfig.Endpoint, "")
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Saved to ") + path)
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
