// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

// Outcome is the result of the last successful transfer: either an
// ExportResult or an ImportResult. A nil Outcome means no transfer succeeded
// since the last reset.
type Outcome interface {
	isOutcome()
}

// ExportResult is a complete export: every record and the full payload.
type ExportResult struct {
	RecordCount int
	Payload     string
}

// ImportResult acknowledges an import. The endpoint may or may not report a count.
type ImportResult struct {
	RecordCount int
	HasCount    bool
}

func (ExportResult) isOutcome() {}
func (ImportResult) isOutcome() {}
