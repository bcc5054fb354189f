// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import (
	"context"

	"flatbridge/cli/internal/conn"
	apperr "flatbridge/cli/internal/errors"
	"flatbridge/cli/internal/logging"
)

// ColumnsRequest is the body of a column listing.
type ColumnsRequest struct {
	conn.Wire
	Table string `json:"table"`
}

// ExportRequest is the body of an export. Columns keep the caller's order.
type ExportRequest struct {
	conn.Wire
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// wire converts cfg for a request. A config the endpoint could never accept
// fails here instead, as a ValidationDeferred error with the given context.
func wire(cfg conn.ConnectionConfig, fallback string) (conn.Wire, error) {
	w, err := cfg.Wire()
	if err != nil {
		return conn.Wire{}, apperr.Wrap(apperr.ValidationDeferred, fallback+": "+err.Error(), err)
	}
	return w, nil
}

// Connect calls POST /connect-store and returns the discovered tables.
func (h *HTTP) Connect(ctx context.Context, cfg conn.ConnectionConfig) ([]string, error) {
	w, err := wire(cfg, MsgConnectFailed)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("discovering tables", "store", cfg.String())

	var out struct {
		Tables []string `json:"tables"`
	}
	if err := h.postJSON(ctx, h.endpoints.Connect, w, &out, MsgConnectFailed); err != nil {
		return nil, err
	}
	if out.Tables == nil {
		out.Tables = []string{}
	}
	return out.Tables, nil
}

// Columns calls POST /get-columns for one table.
func (h *HTTP) Columns(ctx context.Context, cfg conn.ConnectionConfig, table string) ([]string, error) {
	w, err := wire(cfg, MsgColumnsFailed)
	if err != nil {
		return nil, err
	}

	var out struct {
		Columns []string `json:"columns"`
	}
	if err := h.postJSON(ctx, h.endpoints.Columns, ColumnsRequest{Wire: w, Table: table}, &out, MsgColumnsFailed); err != nil {
		return nil, err
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	return out.Columns, nil
}

// Export calls POST /store-to-flatfile. The result is complete or absent.
func (h *HTTP) Export(ctx context.Context, cfg conn.ConnectionConfig, table string, columns []string) (ExportResponse, error) {
	w, err := wire(cfg, MsgExportFailed)
	if err != nil {
		return ExportResponse{}, err
	}

	var out ExportResponse
	body := ExportRequest{Wire: w, Table: table, Columns: columns}
	if err := h.postJSON(ctx, h.endpoints.Export, body, &out, MsgExportFailed); err != nil {
		return ExportResponse{}, err
	}
	return out, nil
}
