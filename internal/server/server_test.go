// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"flatbridge/cli/internal/conn"
	"flatbridge/cli/internal/endpoint"
	apperr "flatbridge/cli/internal/errors"
	"flatbridge/cli/internal/store"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory store.Store keyed by table name.
type memStore struct {
	mu     sync.Mutex
	tables map[string][][]string // first row is the header
	closed int
}

func (m *memStore) Tables(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for name := range m.tables {
		out = append(out, name)
	}
	return out, nil
}

func (m *memStore) Columns(_ context.Context, table string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[table]
	if !ok {
		return []string{}, nil
	}
	return rows[0], nil
}

func (m *memStore) Export(_ context.Context, table string, columns []string, w io.Writer) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = -1
		for j, h := range rows[0] {
			if h == c {
				idx[i] = j
			}
		}
		if idx[i] < 0 {
			return 0, fmt.Errorf("%w: %s", store.ErrUnknownColumn, c)
		}
	}
	fmt.Fprintln(w, strings.Join(columns, ","))
	for _, row := range rows[1:] {
		cells := make([]string, len(idx))
		for i, j := range idx {
			cells[i] = row[j]
		}
		fmt.Fprintln(w, strings.Join(cells, ","))
	}
	return len(rows) - 1, nil
}

func (m *memStore) Import(_ context.Context, table string, delimiter rune, r io.Reader) (int, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		m.tables[table] = append(m.tables[table], strings.Split(l, string(delimiter)))
	}
	return len(lines) - 1, nil
}

func (m *memStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func fixture() *memStore {
	return &memStore{tables: map[string][][]string{
		"events": {{"id", "ts"}, {"1", "t1"}, {"2", "t2"}, {"3", "t3"}},
	}}
}

type harness struct {
	store  *memStore
	server *Server
	srv    *httptest.Server
	api    endpoint.API
	seen   conn.ConnectionConfig
}

func newHarness(t *testing.T, openErr error) *harness {
	h := &harness{store: fixture()}
	opener := store.OpenerFunc(func(_ context.Context, cfg conn.ConnectionConfig) (store.Store, error) {
		h.seen = cfg
		if openErr != nil {
			return nil, openErr
		}
		return h.store, nil
	})
	h.server = New(opener, Options{Metrics: true, CORSOrigins: []string{"http://localhost:3000"}})
	h.srv = httptest.NewServer(h.server.Router())
	t.Cleanup(h.srv.Close)
	h.api = endpoint.New(h.srv.URL, endpoint.DefaultEndpoints(), 0)
	return h
}

func validConfig() conn.ConnectionConfig {
	return conn.ConnectionConfig{Host: "localhost", Port: "8123", Database: "default", User: "default", Credential: "jwt", Secure: true}
}

func TestClientServerRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	tables, err := h.api.Connect(ctx, validConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"events"}, tables)
	assert.Equal(t, validConfig(), h.seen, "credential and secure flag must reach the store")

	columns, err := h.api.Columns(ctx, validConfig(), "events")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "ts"}, columns)

	res, err := h.api.Export(ctx, validConfig(), "events", []string{"ts", "id"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, "ts,id\nt1,1\nt2,2\nt3,3\n", res.Data)

	imp, err := h.api.Import(ctx, validConfig(), endpoint.ImportRequest{
		FileName:  "people.csv",
		Data:      []byte("name;age\nann;30\nbob;41\n"),
		Table:     "people",
		Delimiter: ";",
	})
	require.NoError(t, err)
	require.NotNil(t, imp.Count)
	assert.Equal(t, 2, *imp.Count)
	assert.Equal(t, []string{"name", "age"}, h.store.tables["people"][0])

	assert.Equal(t, 4, h.store.closed, "every request closes its store")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metricTransfers("export", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metricRows("export")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metricRows("import")))
}

func (h *harness) metricTransfers(op, outcome string) prometheus.Collector {
	return h.server.metrics.transfers.WithLabelValues(op, outcome)
}

func (h *harness) metricRows(op string) prometheus.Collector {
	return h.server.metrics.rows.WithLabelValues(op)
}

func TestStoreFailureIsDetail(t *testing.T) {
	h := newHarness(t, errors.New("auth rejected"))

	_, err := h.api.Connect(context.Background(), validConfig())
	require.Error(t, err)
	assert.Equal(t, apperr.RemoteFailure, apperr.KindOf(err))
	assert.Equal(t, "auth rejected", apperr.MessageOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metricTransfers("connect", "failure")))
}

func TestUnknownTableIsDetail(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.api.Columns(context.Background(), validConfig(), "ghost")
	require.Error(t, err)
	assert.Equal(t, "unknown table: ghost", apperr.MessageOf(err))
}

func TestValidationFailureIs422(t *testing.T) {
	h := newHarness(t, nil)

	body := `{"host":"","port":8123,"database":"default","user":"default","jwt_token":"","secure":false}`
	resp, err := http.Post(h.srv.URL+"/connect-store", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var out struct {
		Detail []struct {
			Loc []string `json:"loc"`
			Msg string   `json:"msg"`
		} `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Detail, 2)
	assert.Equal(t, []string{"body", "host"}, out.Detail[0].Loc)
	assert.Equal(t, []string{"body", "jwt_token"}, out.Detail[1].Loc)
	assert.True(t, strings.HasPrefix(out.Detail[0].Msg, "host: "))
}

func TestMalformedBodyIs422(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := http.Post(h.srv.URL+"/get-columns", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestImportRejectsLongDelimiter(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.api.Import(context.Background(), validConfig(), endpoint.ImportRequest{
		Data:      []byte("a\n1\n"),
		Table:     "t",
		Delimiter: "::",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.RemoteFailure, apperr.KindOf(err))
	assert.Equal(t, "invalid request: delimiter must be a single character", apperr.MessageOf(err))
}

func TestHealthMetricsAndCORS(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := http.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = h.api.Connect(context.Background(), validConfig())
	require.NoError(t, err)

	resp, err = http.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), `flatbridge_transfers_total{operation="connect",outcome="success"} 1`)

	req, _ := http.NewRequest(http.MethodOptions, h.srv.URL+"/connect-store", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
