// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassGeneric},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ClassTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "nope.invalid"}, ClassDNS},
		{"refused op", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, ClassRefused},
		{"refused text", errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), ClassRefused},
		{"tls", errors.New("x509: certificate signed by unknown authority"), ClassTLS},
		{"server", errors.New("502 Bad Gateway"), ClassServer},
		{"other", errors.New("EOF"), ClassGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractHostFromURL(t *testing.T) {
	if got := ExtractHostFromURL("http://localhost:8000/connect-store"); got != "localhost:8000" {
		t.Errorf("got %q", got)
	}
	if got := ExtractHostFromURL("::bad"); got != "the endpoint" {
		t.Errorf("got %q", got)
	}
}

func TestHintForNamesHost(t *testing.T) {
	h := HintFor(ClassRefused, "connecting", "localhost:8000")
	if h.Headline != "🚫 Connection refused by localhost:8000 while connecting" {
		t.Errorf("headline = %q", h.Headline)
	}
	if len(h.Bullets) == 0 {
		t.Error("expected bullets")
	}
}
