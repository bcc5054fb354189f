// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn converts between connection profiles and driver connection
// strings for the stores `flatbridge serve` can open.
package dsn

import "fmt"

// DBType names a store driver family.
type DBType string

const (
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeDuckDB     DBType = "duckdb"
	DBTypeUnknown    DBType = "unknown"
)

// DSNInfo is a DSN split into the fields a connection profile carries.
type DSNInfo struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// Resolver parses and rebuilds DSNs of one driver family.
type Resolver interface {
	// Parse parses a DSN string and returns normalized DSN info
	Parse(dsn string) (*DSNInfo, error)

	// Normalize converts DSN info to a properly formatted connection string
	Normalize(info *DSNInfo) (string, error)
}

// ParseError explains why a DSN was rejected, with a hint for the operator.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
