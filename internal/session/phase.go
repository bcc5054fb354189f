// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

// Phase is the single enumerated state of a session. Whether an operation is
// in flight is derived from it; there is no separate loading flag.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseLoadingColumns
	PhaseColumnsReady
	PhaseTransferring
	PhaseSucceeded
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseIdle:           "idle",
	PhaseConnecting:     "connecting",
	PhaseConnected:      "connected",
	PhaseLoadingColumns: "loading_columns",
	PhaseColumnsReady:   "columns_ready",
	PhaseTransferring:   "transferring",
	PhaseSucceeded:      "succeeded",
	PhaseFailed:         "failed",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "unknown"
}

// Busy reports whether p means a network operation is in flight.
func (p Phase) Busy() bool {
	return p == PhaseConnecting || p == PhaseLoadingColumns || p == PhaseTransferring
}

// Mode selects which pipeline the session runs.
type Mode int

const (
	// StoreToFile discovers tables, selects columns and exports them as a file.
	StoreToFile Mode = iota
	// FileToStore uploads a delimited file into the store.
	FileToStore
)

func (m Mode) String() string {
	if m == FileToStore {
		return "file-to-store"
	}
	return "store-to-file"
}

// ParseMode accepts the String forms plus the short aliases used on the command line.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "store-to-file", "export", "out":
		return StoreToFile, true
	case "file-to-store", "import", "in":
		return FileToStore, true
	}
	return StoreToFile, false
}
