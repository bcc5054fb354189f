// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package endpoint provides the client side of the transfer endpoint: the
// stateless HTTP API that performs discovery, column listing, export and import
// against the analytical store. The session never talks HTTP itself; it goes
// through API so tests can substitute a fake.
package endpoint

import (
	"context"

	"flatbridge/cli/internal/conn"
)

// API defines the transfer endpoint operations the session depends on.
// Every call is synchronous; a returned error is always an *errors.E of kind
// RemoteFailure, TransportFailure or ValidationDeferred.
type API interface {
	// Connect runs discovery and returns the store's table names in server order.
	Connect(ctx context.Context, cfg conn.ConnectionConfig) ([]string, error)
	// Columns lists the columns of one table.
	Columns(ctx context.Context, cfg conn.ConnectionConfig, table string) ([]string, error)
	// Export reads the selected columns of a table as delimited text.
	Export(ctx context.Context, cfg conn.ConnectionConfig, table string, columns []string) (ExportResponse, error)
	// Import uploads a delimited file into the store.
	Import(ctx context.Context, cfg conn.ConnectionConfig, req ImportRequest) (ImportResponse, error)
}

// ExportResponse is the complete result of an export.
type ExportResponse struct {
	Count int    `json:"count"`
	Data  string `json:"data"`
}

// ImportRequest carries the file to upload. Data is sent as-is; the endpoint
// decodes it using Delimiter.
type ImportRequest struct {
	FileName  string
	Data      []byte
	Table     string
	Delimiter string
}

// ImportResponse is the endpoint's acknowledgment of an import. Both fields are
// optional on the wire.
type ImportResponse struct {
	Count *int    `json:"count,omitempty"`
	Data  *string `json:"data,omitempty"`
}

// Fallback messages used when a failure carries no detail.
const (
	MsgConnectFailed = "Connection failed"
	MsgColumnsFailed = "Failed to load columns"
	MsgExportFailed  = "Export failed"
	MsgImportFailed  = "Import failed"
)
