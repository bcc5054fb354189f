// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package server

import "github.com/prometheus/client_golang/prometheus"

// Operation labels.
const (
	opConnect = "connect"
	opColumns = "columns"
	opExport  = "export"
	opImport  = "import"
)

type metrics struct {
	transfers *prometheus.CounterVec
	rows      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flatbridge_transfers_total",
			Help: "Endpoint operations by outcome.",
		}, []string{"operation", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flatbridge_transfer_rows_total",
			Help: "Rows moved by exports and imports.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.transfers, m.rows)
	return m
}

func (m *metrics) observe(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.transfers.WithLabelValues(op, outcome).Inc()
}

func (m *metrics) addRows(op string, n int) {
	m.rows.WithLabelValues(op).Add(float64(n))
}
