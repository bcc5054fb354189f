// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	id := [16]byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00}
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "a,b", "a,b"},
		{"int", int64(42), "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"uuid array", id, "123e4567-e89b-12d3-a456-426614174000"},
		{"uuid bytes", id[:], "123e4567-e89b-12d3-a456-426614174000"},
		{"bytes", []byte{0xde, 0xad}, `\xdead`},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}

func TestWriteCSV(t *testing.T) {
	rows := [][]any{{int64(1), "plain"}, {int64(2), `with "quotes", commas`}, {int64(3), nil}}
	i := 0
	var buf bytes.Buffer
	n, err := writeCSV(&buf, []string{"id", "note"}, func() ([]any, bool, error) {
		if i == len(rows) {
			return nil, false, nil
		}
		i++
		return rows[i-1], true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "id,note\n1,plain\n2,\"with \"\"quotes\"\", commas\"\n3,\n", buf.String())
}

func TestWriteCSVPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := writeCSV(&bytes.Buffer{}, []string{"a"}, func() ([]any, bool, error) {
		return nil, false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestReadCSV(t *testing.T) {
	f, err := readCSV(strings.NewReader("\ufeffid; name ;\n1;ann;x\n2;bob;y\n"), ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "column_3"}, f.Header)
	assert.Equal(t, [][]string{{"1", "ann", "x"}, {"2", "bob", "y"}}, f.Records)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := readCSV(strings.NewReader(""), ',')
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = readCSV(strings.NewReader("a,a\n1,2\n"), ',')
	assert.ErrorContains(t, err, "duplicate column")

	_, err = readCSV(strings.NewReader("a,b\n1\n"), ',')
	assert.ErrorContains(t, err, "read rows")
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"events"`, quoteIdent("events"))
	assert.Equal(t, `"analytics"."events"`, quoteIdent("analytics.events"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
	assert.Equal(t, `"id", "ts"`, quoteColumns([]string{"id", "ts"}))
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "t" ("a" text, "b" text)`, createTableSQL("t", []string{"a", "b"}, "text"))
}

func TestCheckSelection(t *testing.T) {
	assert.ErrorIs(t, checkSelection("ghost", nil, []string{"id"}), ErrUnknownTable)
	assert.ErrorIs(t, checkSelection("t", []string{"id"}, []string{"nope"}), ErrUnknownColumn)
	assert.Error(t, checkSelection("t", []string{"id"}, nil))
	assert.NoError(t, checkSelection("t", []string{"id", "ts"}, []string{"ts", "id"}))
}
