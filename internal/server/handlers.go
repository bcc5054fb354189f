// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"flatbridge/cli/internal/conn"
	"flatbridge/cli/internal/endpoint"
	"flatbridge/cli/internal/logging"
	"flatbridge/cli/internal/store"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

// Defaults applied to uploads that leave table or delimiter empty.
const (
	defaultImportTable = "uploaded_data"
	defaultDelimiter   = ","
)

// errInvalid marks request errors answered with 422.
var errInvalid = errors.New("invalid request")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errInvalid, err)
	}
	return nil
}

// connection validates the wire config of a request.
func connection(w conn.Wire) (conn.ConnectionConfig, error) {
	cfg := conn.FromWire(w)
	if err := cfg.Validate(); err != nil {
		return conn.ConnectionConfig{}, err
	}
	return cfg, nil
}

// withStore opens a store for cfg, runs fn and closes the store.
func (s *Server) withStore(ctx context.Context, cfg conn.ConnectionConfig, fn func(store.Store) error) error {
	st, err := s.opener.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.metrics.observe(op, err)
	if errors.Is(err, errInvalid) {
		respondValidation(w, r, err)
		return
	}
	respondError(w, r, op, err)
}

func requestContext(r *http.Request) context.Context {
	return logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
}

// handleConnect answers POST /connect-store with the tables of the store.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var body conn.Wire
	if err := decode(r, &body); err != nil {
		s.fail(w, r, opConnect, err)
		return
	}
	cfg, err := connection(body)
	if err != nil {
		s.fail(w, r, opConnect, fmt.Errorf("%w: %w", errInvalid, err))
		return
	}

	ctx := requestContext(r)
	var tables []string
	err = s.withStore(ctx, cfg, func(st store.Store) error {
		tables, err = st.Tables(ctx)
		return err
	})
	if err != nil {
		s.fail(w, r, opConnect, err)
		return
	}
	s.metrics.observe(opConnect, nil)
	logging.FromContext(ctx).Debug("tables listed", "store", cfg.String(), "count", len(tables))
	writeJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

// handleColumns answers POST /get-columns with the columns of one table.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	var body endpoint.ColumnsRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, opColumns, err)
		return
	}
	cfg, err := connection(body.Wire)
	if err != nil {
		s.fail(w, r, opColumns, fmt.Errorf("%w: %w", errInvalid, err))
		return
	}
	if body.Table == "" {
		s.fail(w, r, opColumns, fmt.Errorf("%w: table is required", errInvalid))
		return
	}

	ctx := requestContext(r)
	var columns []string
	err = s.withStore(ctx, cfg, func(st store.Store) error {
		columns, err = st.Columns(ctx, body.Table)
		if err == nil && len(columns) == 0 {
			err = fmt.Errorf("%w: %s", store.ErrUnknownTable, body.Table)
		}
		return err
	})
	if err != nil {
		s.fail(w, r, opColumns, err)
		return
	}
	s.metrics.observe(opColumns, nil)
	writeJSON(w, http.StatusOK, map[string][]string{"columns": columns})
}

// handleExport answers POST /store-to-flatfile with the CSV text of the
// selected columns.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body endpoint.ExportRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, opExport, err)
		return
	}
	cfg, err := connection(body.Wire)
	if err != nil {
		s.fail(w, r, opExport, fmt.Errorf("%w: %w", errInvalid, err))
		return
	}
	if body.Table == "" || len(body.Columns) == 0 {
		s.fail(w, r, opExport, fmt.Errorf("%w: table and columns are required", errInvalid))
		return
	}

	ctx := requestContext(r)
	var (
		buf bytes.Buffer
		n   int
	)
	err = s.withStore(ctx, cfg, func(st store.Store) error {
		n, err = st.Export(ctx, body.Table, body.Columns, &buf)
		return err
	})
	if err != nil {
		s.fail(w, r, opExport, err)
		return
	}
	s.metrics.observe(opExport, nil)
	s.metrics.addRows(opExport, n)
	writeJSON(w, http.StatusOK, endpoint.ExportResponse{Count: n, Data: buf.String()})
}

// handleImport answers POST /flatfile-to-store, loading the uploaded file.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		s.fail(w, r, opImport, fmt.Errorf("%w: malformed upload: %v", errInvalid, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	body, err := uploadWire(r)
	if err != nil {
		s.fail(w, r, opImport, err)
		return
	}
	cfg, err := connection(body)
	if err != nil {
		s.fail(w, r, opImport, fmt.Errorf("%w: %w", errInvalid, err))
		return
	}

	table := r.FormValue("table")
	if table == "" {
		table = defaultImportTable
	}
	delimiter := r.FormValue("delimiter")
	if delimiter == "" {
		delimiter = defaultDelimiter
	}
	if utf8.RuneCountInString(delimiter) != 1 {
		s.fail(w, r, opImport, fmt.Errorf("%w: delimiter must be a single character", errInvalid))
		return
	}
	comma, _ := utf8.DecodeRuneInString(delimiter)

	file, _, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, opImport, fmt.Errorf("%w: file part is required", errInvalid))
		return
	}
	defer file.Close()

	ctx := requestContext(r)
	var n int
	err = s.withStore(ctx, cfg, func(st store.Store) error {
		n, err = st.Import(ctx, table, comma, file)
		return err
	})
	if err != nil {
		s.fail(w, r, opImport, err)
		return
	}
	s.metrics.observe(opImport, nil)
	s.metrics.addRows(opImport, n)
	writeJSON(w, http.StatusOK, endpoint.ImportResponse{Count: &n})
}

// uploadWire reads the connection text parts of a multipart upload.
func uploadWire(r *http.Request) (conn.Wire, error) {
	port, err := strconv.Atoi(r.FormValue("port"))
	if err != nil {
		return conn.Wire{}, fmt.Errorf("%w: port must be an integer", errInvalid)
	}
	secure, _ := strconv.ParseBool(r.FormValue("secure"))
	return conn.Wire{
		Host:     r.FormValue("host"),
		Port:     port,
		Database: r.FormValue("database"),
		User:     r.FormValue("user"),
		JWTToken: r.FormValue("jwt_token"),
		Secure:   secure,
	}, nil
}
