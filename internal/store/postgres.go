// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Postgres is a Store over a single pgx connection.
type Postgres struct {
	conn *pgx.Conn
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	ctxPing, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := pgx.Connect(ctxPing, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := c.Ping(ctxPing); err != nil {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{conn: c}, nil
}

func (p *Postgres) Close() error {
	return p.conn.Close(context.Background())
}

func (p *Postgres) Tables(ctx context.Context) ([]string, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

func (p *Postgres) Columns(ctx context.Context, table string) ([]string, error) {
	schema, name := "", table
	if parts := splitQualified(table); len(parts) == 2 {
		schema, name = parts[0], parts[1]
	}
	rows, err := p.conn.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND table_name = $2
		ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return nil, err
	}
	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []string{}
	}
	return columns, nil
}

// Export casts every column to text so numerics, json and arrays keep their
// Postgres spelling.
func (p *Postgres) Export(ctx context.Context, table string, columns []string, w io.Writer) (int, error) {
	catalog, err := p.Columns(ctx, table)
	if err != nil {
		return 0, err
	}
	if err := checkSelection(table, catalog, columns); err != nil {
		return 0, err
	}

	casts := make([]string, len(columns))
	for i, c := range columns {
		casts[i] = pgx.Identifier{c}.Sanitize() + "::text"
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(casts, ", "), quoteIdent(table))
	slog.Debug("postgres export", "table", table, "columns", len(columns))

	rows, err := p.conn.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n, err := writeCSV(w, columns, func() ([]any, bool, error) {
		if !rows.Next() {
			return nil, false, rows.Err()
		}
		values, err := rows.Values()
		return values, err == nil, err
	})
	if err != nil {
		return n, err
	}
	return n, rows.Err()
}

// Import bulk loads with COPY inside one transaction.
func (p *Postgres) Import(ctx context.Context, table string, delimiter rune, r io.Reader) (int, error) {
	file, err := readCSV(r, delimiter)
	if err != nil {
		return 0, err
	}

	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, createTableSQL(table, file.Header, "text")); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	rows := make([][]any, len(file.Records))
	for i, rec := range file.Records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		rows[i] = row
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier(splitQualified(table)), file.Header, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	slog.Debug("postgres import", "table", table, "rows", n)
	return int(n), nil
}
