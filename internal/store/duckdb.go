// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// insertBatch bounds how many rows go into one INSERT statement.
const insertBatch = 500

// DuckDB is a Store over an embedded DuckDB database file.
type DuckDB struct {
	db *sql.DB
}

// OpenDuckDB opens (creating if needed) the database file at path.
func OpenDuckDB(ctx context.Context, path string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDB{db: db}, nil
}

func (d *DuckDB) Close() error { return d.db.Close() }

func (d *DuckDB) Tables(ctx context.Context) ([]string, error) {
	return d.queryStrings(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
}

func (d *DuckDB) Columns(ctx context.Context, table string) ([]string, error) {
	schema, name := "", table
	if parts := splitQualified(table); len(parts) == 2 {
		schema, name = parts[0], parts[1]
	}
	return d.queryStrings(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF(?, ''), current_schema()) AND table_name = ?
		ORDER BY ordinal_position`, schema, name)
}

func (d *DuckDB) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DuckDB) Export(ctx context.Context, table string, columns []string, w io.Writer) (int, error) {
	catalog, err := d.Columns(ctx, table)
	if err != nil {
		return 0, err
	}
	if err := checkSelection(table, catalog, columns); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", quoteColumns(columns), quoteIdent(table))
	slog.Debug("duckdb export", "table", table, "columns", len(columns))

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	n, err := writeCSV(w, columns, func() ([]any, bool, error) {
		if !rows.Next() {
			return nil, false, rows.Err()
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, false, err
		}
		return values, true, nil
	})
	if err != nil {
		return n, err
	}
	return n, rows.Err()
}

// Import inserts in batches inside one transaction.
func (d *DuckDB) Import(ctx context.Context, table string, delimiter rune, r io.Reader) (int, error) {
	file, err := readCSV(r, delimiter)
	if err != nil {
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, createTableSQL(table, file.Header, "VARCHAR")); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(file.Header)), ", ") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", quoteIdent(table), quoteColumns(file.Header))

	for start := 0; start < len(file.Records); start += insertBatch {
		end := min(start+insertBatch, len(file.Records))
		batch := file.Records[start:end]

		args := make([]any, 0, len(batch)*len(file.Header))
		groups := make([]string, len(batch))
		for i, rec := range batch {
			groups[i] = placeholder
			for _, v := range rec {
				args = append(args, v)
			}
		}
		if _, err := tx.ExecContext(ctx, prefix+strings.Join(groups, ", "), args...); err != nil {
			return 0, fmt.Errorf("insert rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	slog.Debug("duckdb import", "table", table, "rows", len(file.Records))
	return len(file.Records), nil
}
