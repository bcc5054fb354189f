// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import (
	"bytes"
	"context"
	"mime/multipart"
	"path/filepath"

	"flatbridge/cli/internal/conn"
	apperr "flatbridge/cli/internal/errors"
)

// Import calls POST /flatfile-to-store with a multipart body: the raw file as
// the binary part "file", then "table", "delimiter" and one text part per
// connection field.
func (h *HTTP) Import(ctx context.Context, cfg conn.ConnectionConfig, req ImportRequest) (ImportResponse, error) {
	w, err := wire(cfg, MsgImportFailed)
	if err != nil {
		return ImportResponse{}, err
	}

	body, contentType, err := encodeUpload(w, req)
	if err != nil {
		return ImportResponse{}, apperr.Wrap(apperr.TransportFailure, MsgImportFailed, err)
	}

	var out ImportResponse
	if err := h.do(ctx, h.endpoints.Import, contentType, body, &out, MsgImportFailed); err != nil {
		return ImportResponse{}, err
	}
	return out, nil
}

// encodeUpload builds the multipart body in memory; transfers are not streamed.
func encodeUpload(w conn.Wire, req ImportRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := filepath.Base(req.FileName)
	if name == "." || name == "/" || name == "" {
		name = "upload.csv"
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(req.Data); err != nil {
		return nil, "", err
	}

	fields := append([][2]string{
		{"table", req.Table},
		{"delimiter", req.Delimiter},
	}, w.Parts()...)
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
