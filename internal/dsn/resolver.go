// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"fmt"
	"strings"

	"flatbridge/cli/internal/conn"
)

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(dsn)

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "duckdb://"), strings.HasSuffix(lower, ".duckdb"), strings.HasSuffix(lower, ".db"):
		return DBTypeDuckDB
	}
	return DBTypeUnknown
}

// ParseInfo parses a DSN string and returns detailed DSN info.
// A DuckDB DSN is a file path, optionally prefixed with duckdb://.
func ParseInfo(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	switch DetectDBType(dsn) {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver().Parse(dsn)
	case DBTypeDuckDB:
		return &DSNInfo{
			Type:     DBTypeDuckDB,
			Database: strings.TrimPrefix(dsn, "duckdb://"),
			Params:   map[string]string{},
			Original: dsn,
		}, nil
	}
	return nil, NewParseError(dsn, "unknown database type", "use postgres://, postgresql:// or a .duckdb file path")
}

// Parse parses a DSN string and returns normalized connection string
func Parse(dsn string) (string, error) {
	info, err := ParseInfo(dsn)
	if err != nil {
		return "", err
	}
	if info.Type == DBTypeDuckDB {
		return info.Database, nil
	}
	return NewPostgreSQLResolver().Normalize(info)
}

// ToConnection turns parsed DSN info into a connection profile. The password
// becomes the credential; sslmode=require or verify-* turns on Secure.
func ToConnection(info *DSNInfo) conn.ConnectionConfig {
	c := conn.ConnectionConfig{
		Host:       info.Host,
		Port:       info.Port,
		Database:   info.Database,
		User:       info.User,
		Credential: info.Password,
	}
	switch info.Params["sslmode"] {
	case "require", "verify-ca", "verify-full":
		c.Secure = true
	}
	return c
}

// FromConnection builds the driver connection string for c. For postgres the
// credential is the password and Secure selects sslmode=require. For duckdb
// the database field is the file path and the other fields are ignored.
func FromConnection(driver string, c conn.ConnectionConfig) (string, error) {
	switch driver {
	case "postgres", "postgresql", "pgx":
		port, err := c.PortNumber()
		if err != nil {
			return "", err
		}
		sslmode := "disable"
		if c.Secure {
			sslmode = "require"
		}
		return NewPostgreSQLResolver().Normalize(&DSNInfo{
			Type:     DBTypePostgreSQL,
			Host:     strings.TrimSpace(c.Host),
			Port:     fmt.Sprint(port),
			User:     c.User,
			Password: c.Credential,
			Database: c.Database,
			Params:   map[string]string{"sslmode": sslmode},
		})
	case "duckdb":
		path := strings.TrimSpace(strings.TrimPrefix(c.Database, "duckdb://"))
		if path == "" {
			return "", NewParseError("", "missing database file", "set the database field to a .duckdb file path")
		}
		return path, nil
	}
	return "", fmt.Errorf("unsupported driver %q", driver)
}
