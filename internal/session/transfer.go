// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"slices"

	"flatbridge/cli/internal/endpoint"
)

// Connect runs discovery with the current config. On success the schema is
// replaced wholesale and table, columns, selection and outcome are cleared.
// On failure the session is Failed with the endpoint's message and holds no
// schema.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.phase.Busy() {
		s.unlock()
		return ErrBusy
	}
	if s.mode != StoreToFile {
		s.unlock()
		return precondition("discovery does not apply to %s", s.mode)
	}
	cfg := s.config
	s.transition(PhaseConnecting)
	s.unlock()

	tables, err := s.api.Connect(ctx, cfg)

	s.mu.Lock()
	defer s.unlock()
	s.clearDiscovery()
	if err != nil {
		s.fail(PhaseIdle, err)
		return err
	}
	s.schema = slices.Clone(tables)
	s.discovered = cfg.Fingerprint()
	s.transition(PhaseConnected)
	return nil
}

// LoadColumns fetches the column catalog of the selected table. A new catalog
// always starts with an empty selection; a failed load leaves no catalog.
func (s *Session) LoadColumns(ctx context.Context) error {
	s.mu.Lock()
	if s.phase.Busy() {
		s.unlock()
		return ErrBusy
	}
	if s.table == "" {
		s.unlock()
		return precondition("no table selected")
	}
	cfg, table := s.config, s.table
	s.transition(PhaseLoadingColumns)
	s.unlock()

	columns, err := s.api.Columns(ctx, cfg, table)

	s.mu.Lock()
	defer s.unlock()
	if err != nil {
		s.clearColumns()
		s.fail(PhaseConnected, err)
		return err
	}
	s.columns = slices.Clone(columns)
	s.selection = nil
	s.outcome = nil
	s.transition(PhaseColumnsReady)
	return nil
}

// ExportSelection exports the selected columns of the selected table, in
// selection order. The outcome is replaced only on success.
func (s *Session) ExportSelection(ctx context.Context) error {
	s.mu.Lock()
	if s.phase.Busy() {
		s.unlock()
		return ErrBusy
	}
	if s.mode != StoreToFile {
		s.unlock()
		return precondition("export does not apply to %s", s.mode)
	}
	from := s.effective()
	if from != PhaseColumnsReady && from != PhaseSucceeded {
		s.unlock()
		return precondition("columns are not loaded")
	}
	if len(s.selection) == 0 {
		s.unlock()
		return precondition("no columns selected")
	}
	cfg, table, columns := s.config, s.table, slices.Clone(s.selection)
	s.transition(PhaseTransferring)
	s.unlock()

	res, err := s.api.Export(ctx, cfg, table, columns)

	s.mu.Lock()
	defer s.unlock()
	if err != nil {
		s.fail(from, err)
		return err
	}
	s.outcome = ExportResult{RecordCount: res.Count, Payload: res.Data}
	s.transition(PhaseSucceeded)
	return nil
}

// ImportFile uploads data into the configured import table. fileName is only
// used to name the upload part.
func (s *Session) ImportFile(ctx context.Context, data []byte, fileName string) error {
	s.mu.Lock()
	if s.phase.Busy() {
		s.unlock()
		return ErrBusy
	}
	if s.mode != FileToStore {
		s.unlock()
		return precondition("import does not apply to %s", s.mode)
	}
	from := s.effective()
	cfg := s.config
	req := endpoint.ImportRequest{
		FileName:  fileName,
		Data:      data,
		Table:     s.opts.ImportTable,
		Delimiter: s.opts.Delimiter,
	}
	s.transition(PhaseTransferring)
	s.unlock()

	res, err := s.api.Import(ctx, cfg, req)

	s.mu.Lock()
	defer s.unlock()
	if err != nil {
		s.fail(from, err)
		return err
	}
	ack := ImportResult{}
	if res.Count != nil {
		ack.RecordCount, ack.HasCount = *res.Count, true
	}
	s.outcome = ack
	s.transition(PhaseSucceeded)
	return nil
}
