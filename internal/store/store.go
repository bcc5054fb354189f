// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package store is the storage side of `flatbridge serve`: it lists tables and
// columns and moves rows between a table and CSV text.
//
// A Store is opened per request from the connection carried in that request
// and closed when the request is done.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"flatbridge/cli/internal/conn"
	"flatbridge/cli/internal/dsn"
)

// Store is one open connection to a columnar or relational store.
type Store interface {
	// Tables lists the tables of the current schema, sorted by name.
	Tables(ctx context.Context) ([]string, error)
	// Columns lists the columns of table in declaration order.
	Columns(ctx context.Context, table string) ([]string, error)
	// Export writes the selected columns of every row of table to w as CSV
	// with a header line, and returns the number of data rows.
	Export(ctx context.Context, table string, columns []string, w io.Writer) (int, error)
	// Import reads CSV with a header line from r into table, creating the
	// table with text columns when it does not exist. It returns the number
	// of rows written.
	Import(ctx context.Context, table string, delimiter rune, r io.Reader) (int, error)
	Close() error
}

// Opener opens a Store for one connection.
type Opener interface {
	Open(ctx context.Context, cfg conn.ConnectionConfig) (Store, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, cfg conn.ConnectionConfig) (Store, error)

func (f OpenerFunc) Open(ctx context.Context, cfg conn.ConnectionConfig) (Store, error) {
	return f(ctx, cfg)
}

// Errors shared by all drivers.
var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrEmptyFile     = errors.New("file has no header line")
)

// ForDriver returns the Opener for a driver name.
func ForDriver(driver string) (Opener, error) {
	switch driver {
	case "postgres", "postgresql", "pgx":
		return OpenerFunc(func(ctx context.Context, cfg conn.ConnectionConfig) (Store, error) {
			d, err := dsn.FromConnection("postgres", cfg)
			if err != nil {
				return nil, err
			}
			return OpenPostgres(ctx, d)
		}), nil
	case "duckdb":
		return OpenerFunc(func(ctx context.Context, cfg conn.ConnectionConfig) (Store, error) {
			d, err := dsn.FromConnection("duckdb", cfg)
			if err != nil {
				return nil, err
			}
			return OpenDuckDB(ctx, d)
		}), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

// checkSelection verifies columns against the catalog of a table.
func checkSelection(table string, catalog, columns []string) error {
	if len(catalog) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if len(columns) == 0 {
		return fmt.Errorf("no columns selected")
	}
	for _, c := range columns {
		if !slices.Contains(catalog, c) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, c)
		}
	}
	return nil
}
