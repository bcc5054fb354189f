// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package presenter

import (
	"fmt"
	"strings"

	apperr "flatbridge/cli/internal/errors"
	"flatbridge/cli/internal/httperrors"
	"flatbridge/cli/internal/session"

	"github.com/pterm/pterm"
)

// actions names what each busy phase is doing, for hints and spinners.
var actions = map[session.Phase]string{
	session.PhaseConnecting:     "connecting to the store",
	session.PhaseLoadingColumns: "loading columns",
	session.PhaseTransferring:   "transferring data",
}

// Action describes the work behind a busy phase.
func Action(p session.Phase) string {
	if a, ok := actions[p]; ok {
		return a
	}
	return p.String()
}

// Summary renders the snapshot as a single line of text.
func Summary(snap session.Snapshot) string {
	switch snap.Phase {
	case session.PhaseIdle:
		return fmt.Sprintf("Ready (%s)", snap.Mode)
	case session.PhaseConnected:
		return fmt.Sprintf("Connected: %d table(s) available", len(snap.Schema))
	case session.PhaseColumnsReady:
		return fmt.Sprintf("%s: %d column(s), %d selected", snap.Table, len(snap.Columns), len(snap.Selection))
	case session.PhaseSucceeded:
		return outcomeLine(snap.Outcome)
	case session.PhaseFailed:
		return snap.Message
	}
	return strings.ToUpper(Action(snap.Phase)[:1]) + Action(snap.Phase)[1:] + "..."
}

func outcomeLine(o session.Outcome) string {
	switch v := o.(type) {
	case session.ExportResult:
		return fmt.Sprintf("Exported %d record(s)", v.RecordCount)
	case session.ImportResult:
		if v.HasCount {
			return fmt.Sprintf("Imported %d record(s)", v.RecordCount)
		}
		return "Import accepted"
	}
	return "Done"
}

// RenderPhase prints the snapshot to the terminal. Failure messages are shown
// verbatim; transport failures get troubleshooting hints for endpointURL.
func RenderPhase(snap session.Snapshot, endpointURL string, failedAction string) {
	switch snap.Phase {
	case session.PhaseFailed:
		title := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Failed")
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(snap.Message))
		if apperr.KindOf(snap.Err) == apperr.TransportFailure {
			pterm.Println()
			httperrors.Show(snap.Err, failedAction, httperrors.ExtractHostFromURL(endpointURL))
		}
	case session.PhaseSucceeded:
		title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Done")
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(Summary(snap)))
	case session.PhaseConnected:
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ ") + Summary(snap))
		items := make([]pterm.BulletListItem, 0, len(snap.Schema))
		for _, t := range snap.Schema {
			items = append(items, pterm.BulletListItem{Level: 0, Text: t})
		}
		_ = pterm.DefaultBulletList.WithItems(items).Render()
	default:
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ ") + Summary(snap))
	}
}
