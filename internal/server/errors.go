// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"flatbridge/cli/internal/logging"

	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-json"
)

// detailResponse is the error body for bad requests and store failures.
type detailResponse struct {
	Detail string `json:"detail"`
}

// fieldError is one entry of a validation failure body.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type validationResponse struct {
	Detail []fieldError `json:"detail"`
}

// wireNames maps config field names to the names used on the wire.
var wireNames = map[string]string{"credential": "jwt_token"}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError answers 400 with the masked error text as detail.
func respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("request error",
		"path", r.URL.Path,
		"operation", op,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusBadRequest, detailResponse{Detail: logging.Mask(err.Error())})
}

// respondValidation answers 422 with one entry per invalid field. Errors that
// are not per-field become a single body-level entry.
func respondValidation(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("validation failed",
		"path", r.URL.Path,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)

	var fields validation.Errors
	if !errors.As(err, &fields) {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Detail: []fieldError{{
			Loc:  []string{"body"},
			Msg:  err.Error(),
			Type: "value_error",
		}}})
		return
	}

	out := make([]fieldError, 0, len(fields))
	for name, ferr := range fields {
		wire := strings.ToLower(name)
		if alias, ok := wireNames[wire]; ok {
			wire = alias
		}
		out = append(out, fieldError{
			Loc:  []string{"body", wire},
			Msg:  wire + ": " + ferr.Error(),
			Type: "value_error",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Loc[1] < out[j].Loc[1] })
	writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Detail: out})
}
