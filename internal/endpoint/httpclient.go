// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	apperr "flatbridge/cli/internal/errors"
	"flatbridge/cli/internal/logging"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// maxErrorBody bounds how much of a failed response is read looking for detail.
const maxErrorBody = 64 << 10

// HTTP implements API over the endpoint's REST contract.
type HTTP struct {
	// baseURL is the base URL for all requests (e.g., "http://localhost:8000")
	baseURL string
	// endpoints contains the URL paths for each operation
	endpoints Endpoints
	// client is the underlying HTTP client
	client *http.Client
}

// newHTTP creates a new HTTP client with the given base URL and endpoints.
func newHTTP(baseURL string, endpoints Endpoints, timeout time.Duration) *HTTP {
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
	}
}

// setStandardHeaders stamps every request with a fresh request id and returns it.
func (h *HTTP) setStandardHeaders(req *http.Request) string {
	id := uuid.NewString()
	req.Header.Set("X-Request-ID", id)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flatbridge-cli")
	return id
}

// postJSON sends body as JSON to path and decodes a 2xx answer into out.
// fallback is the operator-facing message used when a failure has no detail.
func (h *HTTP) postJSON(ctx context.Context, path string, body any, out any, fallback string) error {
	b, err := json.Marshal(body)
	if err != nil {
		return apperr.Wrap(apperr.TransportFailure, fallback, err)
	}
	return h.do(ctx, path, "application/json", bytes.NewReader(b), out, fallback)
}

// do performs one request/response round trip. There are no retries.
func (h *HTTP) do(ctx context.Context, path, contentType string, body io.Reader, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, body)
	if err != nil {
		return apperr.Wrap(apperr.TransportFailure, fallback, err)
	}
	req.Header.Set("Content-Type", contentType)
	id := h.setStandardHeaders(req)

	log := logging.WithFields(logging.WithRequestID(ctx, id), "path", path)
	started := time.Now()

	resp, err := h.client.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return apperr.Wrap(apperr.TransportFailure, fallback, err)
	}
	defer resp.Body.Close()

	log.Debug("response received", "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return remoteFailure(resp.StatusCode, raw, fallback)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.RemoteFailure, fallback, err)
	}
	return nil
}
