// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport-level failures into operator hints.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Class is the coarse cause of a transport failure.
type Class int

const (
	ClassGeneric Class = iota
	ClassTimeout
	ClassDNS
	ClassRefused
	ClassTLS
	ClassServer
)

func (c Class) String() string {
	switch c {
	case ClassTimeout:
		return "timeout"
	case ClassDNS:
		return "dns"
	case ClassRefused:
		return "refused"
	case ClassTLS:
		return "tls"
	case ClassServer:
		return "server"
	}
	return "generic"
}

// Classify detects common error types (timeout, DNS, connection refused, TLS, server errors).
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassGeneric
	case isTimeoutError(err):
		return ClassTimeout
	case isDNSError(err):
		return ClassDNS
	case isConnectionRefusedError(err):
		return ClassRefused
	case isSSLError(err):
		return ClassTLS
	case isServerError(err.Error()):
		return ClassServer
	}
	return ClassGeneric
}

// Hint is a headline plus troubleshooting bullets for one Class.
type Hint struct {
	Headline string
	Bullets  []string
}

// HintFor returns the hint for class while doing action against host.
func HintFor(class Class, action, host string) Hint {
	switch class {
	case ClassTimeout:
		return Hint{
			Headline: fmt.Sprintf("⏱️  Connection timeout while %s", action),
			Bullets: []string{
				"The endpoint took too long to respond",
				"Large exports may need a longer --timeout",
				"A firewall may be dropping the connection",
			},
		}
	case ClassDNS:
		return Hint{
			Headline: fmt.Sprintf("🌐 Cannot resolve %s while %s", host, action),
			Bullets: []string{
				"Check the endpoint address (--endpoint or FLATBRIDGE_ENDPOINT)",
				"Check your DNS settings",
			},
		}
	case ClassRefused:
		return Hint{
			Headline: fmt.Sprintf("🚫 Connection refused by %s while %s", host, action),
			Bullets: []string{
				"The endpoint is not running (start one with: flatbridge serve)",
				"Wrong endpoint address or port",
			},
		}
	case ClassTLS:
		return Hint{
			Headline: fmt.Sprintf("🔒 Secure connection failed while %s", action),
			Bullets: []string{
				"Certificate issue on the endpoint",
				"A proxy interfering with HTTPS",
				"Incorrect system clock",
			},
		}
	case ClassServer:
		return Hint{
			Headline: fmt.Sprintf("⚠️  Endpoint error while %s", action),
			Bullets: []string{
				"The endpoint failed internally; check its logs",
			},
		}
	}
	return Hint{
		Headline: fmt.Sprintf("❌ Cannot reach %s while %s", host, action),
		Bullets: []string{
			"Your network connection",
			"Whether the endpoint is reachable from this machine",
		},
	}
}

// Show prints the hint for err with pterm.
func Show(err error, action, host string) {
	h := HintFor(Classify(err), action, host)
	pterm.Println(h.Headline)
	pterm.Println()
	for _, b := range h.Bullets {
		pterm.Println("  • " + b)
	}
	pterm.Println()
	if err != nil {
		details := err.Error()
		if len(details) > 100 {
			details = details[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", details)
	}
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// isServerError checks if the error indicates a server-side problem (5xx errors).
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	return strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable") ||
		strings.Contains(lower, "gateway timeout")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the endpoint"
	}
	return u.Host
}
