// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session implements the state machine behind an interactive transfer:
// connection editing, table discovery, column selection and the two transfer
// directions. A Session owns every piece of that state and mediates every call
// to the transfer endpoint.
//
// All state lives behind one mutex. Network operations move the phase to its
// busy value while holding the lock, release it for the request, and take it
// again to settle, so at most one request is ever in flight and a second one
// is rejected with ErrBusy instead of queued.
package session

import (
	"fmt"
	"slices"
	"sync"

	"flatbridge/cli/internal/conn"
	"flatbridge/cli/internal/endpoint"
	apperr "flatbridge/cli/internal/errors"
)

var (
	// ErrBusy is returned, without side effects, when an operation is attempted
	// while another one is in flight.
	ErrBusy = apperr.New(apperr.PreconditionViolation, "another operation is in progress")
	// ErrPrecondition is returned, without side effects, when an operation is
	// not allowed in the current phase or with the given argument.
	ErrPrecondition = apperr.New(apperr.PreconditionViolation, "operation not allowed now")
)

// Default import target and delimiter.
const (
	DefaultImportTable = "uploaded_data"
	DefaultDelimiter   = ","
)

// Options tunes a Session.
type Options struct {
	// ImportTable is the table file uploads are written to.
	ImportTable string
	// Delimiter is the field delimiter announced for file uploads.
	Delimiter string
}

// TransitionFunc observes phase changes. It runs after the session lock is
// released and may call back into the session.
type TransitionFunc func(from, to Phase)

// Session is the transfer state machine. The zero value is not usable; use New.
type Session struct {
	mu   sync.Mutex
	api  endpoint.API
	opts Options

	mode  Mode
	phase Phase
	// stable is where a failed session returns to on Acknowledge.
	stable Phase

	config conn.ConnectionConfig
	// discovered holds the config fingerprint the schema was fetched with;
	// empty when there is no schema.
	discovered string
	schema     []string
	table      string
	columns    []string
	selection  []string
	outcome    Outcome
	lastErr    error

	observers []TransitionFunc
	pending   [][2]Phase
}

// New creates an idle store-to-file session over api.
func New(api endpoint.API, cfg conn.ConnectionConfig, opts Options) *Session {
	if opts.ImportTable == "" {
		opts.ImportTable = DefaultImportTable
	}
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}
	return &Session{
		api:    api,
		opts:   opts,
		config: cfg,
	}
}

// OnTransition registers an observer for phase changes.
func (s *Session) OnTransition(fn TransitionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// unlock releases the lock and then delivers queued transitions.
func (s *Session) unlock() {
	pending := s.pending
	s.pending = nil
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, t := range pending {
		for _, fn := range observers {
			fn(t[0], t[1])
		}
	}
}

// transition moves to phase p. Must be called with the lock held.
func (s *Session) transition(p Phase) {
	if p == s.phase {
		return
	}
	s.pending = append(s.pending, [2]Phase{s.phase, p})
	s.phase = p
	if p != PhaseFailed && !p.Busy() {
		s.stable = p
		s.lastErr = nil
	}
}

// fail records err and moves to Failed; Acknowledge returns to stable.
func (s *Session) fail(stable Phase, err error) {
	s.stable = stable
	s.lastErr = err
	s.transition(PhaseFailed)
}

// effective is the phase operations are checked against: a failed session
// behaves like the stable phase it came from.
func (s *Session) effective() Phase {
	if s.phase == PhaseFailed {
		return s.stable
	}
	return s.phase
}

func precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// clearColumns drops the column catalog and everything derived from it.
func (s *Session) clearColumns() {
	s.columns = nil
	s.selection = nil
	s.outcome = nil
}

// clearDiscovery drops the schema and everything derived from it.
func (s *Session) clearDiscovery() {
	s.discovered = ""
	s.schema = nil
	s.table = ""
	s.clearColumns()
}

// Busy reports whether a network operation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase.Busy()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SetDirection switches the pipeline mode and resets schema, table, columns,
// selection and outcome. It performs no I/O. It is refused only while an
// operation is in flight, since the settling operation would write into the
// reset state.
func (s *Session) SetDirection(mode Mode) error {
	s.mu.Lock()
	defer s.unlock()
	if s.phase.Busy() {
		return ErrBusy
	}
	s.mode = mode
	s.clearDiscovery()
	s.lastErr = nil
	s.transition(PhaseIdle)
	s.stable = PhaseIdle
	return nil
}

// EditConfig replaces one connection field. The value is not validated; a bad
// port surfaces as a failure of the next request. Editing a config that
// differs from the one the schema was discovered with discards the schema and
// everything derived from it, so discovery must run again.
func (s *Session) EditConfig(field conn.Field, value string) error {
	s.mu.Lock()
	defer s.unlock()
	if s.phase.Busy() {
		return ErrBusy
	}
	next, err := s.config.With(field, value)
	if err != nil {
		return precondition("%v", err)
	}
	s.config = next

	if s.discovered != "" && s.discovered != next.Fingerprint() {
		s.clearDiscovery()
		s.transition(PhaseIdle)
		s.stable = PhaseIdle
	}
	return nil
}

// SetConfig replaces the whole config at once, with the same staleness rule as EditConfig.
func (s *Session) SetConfig(cfg conn.ConnectionConfig) error {
	s.mu.Lock()
	defer s.unlock()
	if s.phase.Busy() {
		return ErrBusy
	}
	s.config = cfg
	if s.discovered != "" && s.discovered != cfg.Fingerprint() {
		s.clearDiscovery()
		s.transition(PhaseIdle)
		s.stable = PhaseIdle
	}
	return nil
}

// SelectTable picks a discovered table. Choosing a table drops any columns,
// selection and outcome from the previous one.
func (s *Session) SelectTable(name string) error {
	s.mu.Lock()
	defer s.unlock()
	if s.phase.Busy() {
		return ErrBusy
	}
	if s.mode != StoreToFile || s.discovered == "" {
		return precondition("no discovered schema")
	}
	if !slices.Contains(s.schema, name) {
		return precondition("table %q is not in the schema", name)
	}
	s.table = name
	s.clearColumns()
	s.transition(PhaseConnected)
	s.stable = PhaseConnected
	return nil
}

// ToggleColumn adds name to the selection, or removes it when already selected.
func (s *Session) ToggleColumn(name string) error {
	s.mu.Lock()
	defer s.unlock()
	if s.phase.Busy() {
		return ErrBusy
	}
	if p := s.effective(); p != PhaseColumnsReady && p != PhaseSucceeded {
		return precondition("columns are not loaded")
	}
	if !slices.Contains(s.columns, name) {
		return precondition("column %q is not in the catalog", name)
	}
	if i := slices.Index(s.selection, name); i >= 0 {
		s.selection = slices.Delete(s.selection, i, i+1)
	} else {
		s.selection = append(s.selection, name)
	}
	return nil
}

// Acknowledge leaves the Failed phase, returning to the phase the failed
// operation started from. It is a no-op in any other phase.
func (s *Session) Acknowledge() {
	s.mu.Lock()
	defer s.unlock()
	if s.phase != PhaseFailed {
		return
	}
	s.transition(s.stable)
}

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	Mode      Mode
	Phase     Phase
	Busy      bool
	Config    conn.ConnectionConfig
	Schema    []string
	Table     string
	Columns   []string
	Selection []string
	Outcome   Outcome
	// Err is the failure behind PhaseFailed, nil otherwise.
	Err error
	// Message is the operator-facing text of Err.
	Message string
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Mode:      s.mode,
		Phase:     s.phase,
		Busy:      s.phase.Busy(),
		Config:    s.config,
		Schema:    slices.Clone(s.schema),
		Table:     s.table,
		Columns:   slices.Clone(s.columns),
		Selection: slices.Clone(s.selection),
		Outcome:   s.outcome,
	}
	if s.phase == PhaseFailed {
		snap.Err = s.lastErr
		snap.Message = apperr.MessageOf(s.lastErr)
	}
	return snap
}
