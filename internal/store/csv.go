// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// rowSource yields one row of values per call; ok is false when exhausted.
type rowSource func() (values []any, ok bool, err error)

// writeCSV writes header and every row from next as CSV. It returns the
// number of data rows written.
func writeCSV(w io.Writer, header []string, next rowSource) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	record := make([]string, len(header))
	n := 0
	for {
		values, ok, err := next()
		if err != nil {
			return n, err
		}
		if !ok {
			break
		}
		for i, v := range values {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

// formatValue renders a driver value as CSV text. NULL becomes an empty cell.
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		if len(v) == 16 {
			return formatUUID([16]byte(v))
		}
		return fmt.Sprintf("\\x%x", v)
	case [16]byte:
		return formatUUID(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(val)
}

func formatUUID(v [16]byte) string {
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7],
		v[8], v[9], v[10], v[11], v[12], v[13], v[14], v[15])
}

// csvFile is a parsed upload: its header and its data records.
type csvFile struct {
	Header  []string
	Records [][]string
}

// readCSV parses an upload. Header names are trimmed; an unnamed column is
// called column_N. Every record must have as many fields as the header.
func readCSV(r io.Reader, delimiter rune) (csvFile, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return csvFile{}, ErrEmptyFile
	}
	if err != nil {
		return csvFile{}, fmt.Errorf("read header: %w", err)
	}
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		if seen[h] {
			return csvFile{}, fmt.Errorf("duplicate column %q in header", h)
		}
		seen[h] = true
		header[i] = h
	}

	records, err := cr.ReadAll()
	if err != nil {
		return csvFile{}, fmt.Errorf("read rows: %w", err)
	}
	return csvFile{Header: header, Records: records}, nil
}

// quoteIdent quotes a possibly schema-qualified name ("schema.table").
func quoteIdent(name string) string {
	return pgx.Identifier(splitQualified(name)).Sanitize()
}

// splitQualified splits "schema.table" into its parts; a bare name is one part.
func splitQualified(name string) []string {
	if schema, table, ok := strings.Cut(name, "."); ok && schema != "" && table != "" {
		return []string{schema, table}
	}
	return []string{name}
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func createTableSQL(table string, columns []string, textType string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pgx.Identifier{c}.Sanitize() + " " + textType
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}
