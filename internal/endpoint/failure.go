// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import (
	"fmt"
	"strings"

	apperr "flatbridge/cli/internal/errors"

	"github.com/goccy/go-json"
)

// StatusError is the cause attached to a RemoteFailure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint returned %d: %s", e.StatusCode, e.Body)
}

// remoteFailure builds the error for a non-2xx answer. The operator sees the
// body's detail when there is one, otherwise fallback.
func remoteFailure(status int, body []byte, fallback string) error {
	msg := extractDetail(body)
	if msg == "" {
		msg = fallback
	}
	return apperr.Wrap(apperr.RemoteFailure, msg, &StatusError{StatusCode: status, Body: strings.TrimSpace(string(body))})
}

// extractDetail returns the detail string of an error body. Validation errors
// may carry detail as a list of {msg}; the first message is used then.
func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var raw struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	switch v := raw.Detail.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				if s, ok := m["msg"].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	return ""
}
