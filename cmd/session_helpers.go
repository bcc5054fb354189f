// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"log/slog"

	"flatbridge/cli/internal/conn"
	"flatbridge/cli/internal/endpoint"
	"flatbridge/cli/internal/logging"
	"flatbridge/cli/internal/presenter"
	"flatbridge/cli/internal/secure"
	"flatbridge/cli/internal/session"
	"flatbridge/cli/internal/terminal"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

// reportedError is a failure already rendered to the operator. Execute exits
// non-zero without printing it again.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// errNoConnection is returned when neither a saved profile nor flags name a store.
var errNoConnection = errors.New("no store connection configured; run 'flatbridge connect' first")

// savedConnection combines the saved profile with the credential from the
// environment or the OS keychain.
func savedConnection() (conn.ConnectionConfig, secure.Source, error) {
	if appConfig.Profile.Empty() {
		return conn.ConnectionConfig{}, secure.SourceNone, errNoConnection
	}
	cred, src, err := secure.LoadCredential()
	if err != nil {
		slog.Debug("credential lookup failed", "error", err)
	}
	return appConfig.Profile.Connection(cred), src, nil
}

// resolveConnection is savedConnection plus a prompt for a missing credential.
func resolveConnection() (conn.ConnectionConfig, secure.Source, error) {
	cfg, src, err := savedConnection()
	if err != nil {
		return cfg, src, err
	}
	return ensureCredential(cfg, src)
}

// newAPI returns the endpoint client for the configured base URL.
func newAPI() endpoint.API {
	return endpoint.New(appConfig.Endpoint, endpoint.DefaultEndpoints(), appConfig.Timeout)
}

// newSession creates a session over the configured endpoint. Phase changes
// are logged at debug level under an id shared by the whole session.
func newSession(api endpoint.API, cfg conn.ConnectionConfig) *session.Session {
	s := session.New(api, cfg, session.Options{
		ImportTable: appConfig.Import.Table,
		Delimiter:   appConfig.Import.Delimiter,
	})
	log := logging.FromContext(logging.WithRequestID(context.Background(), uuid.NewString()))
	s.OnTransition(func(from, to session.Phase) {
		log.Debug("session transition", "from", from.String(), "to", to.String())
	})
	return s
}

// ensureCredential prompts for a missing credential on a terminal. The answer
// is used for this run only.
func ensureCredential(cfg conn.ConnectionConfig, src secure.Source) (conn.ConnectionConfig, secure.Source, error) {
	if cfg.Credential != "" || !terminal.IsInteractive() {
		return cfg, src, nil
	}
	cred, err := terminal.ReadSecret("Credential (JWT token): ")
	if err != nil {
		return cfg, src, err
	}
	cfg.Credential = cred
	return cfg, secure.SourcePrompt, nil
}

// step runs op behind a spinner describing busy. A failure moves the session
// to Failed; it is rendered, acknowledged and returned as a reportedError.
func step(s *session.Session, busy session.Phase, op func() error) error {
	stop := startSpinner(presenter.Action(busy))
	err := op()
	stop()
	if err == nil {
		return nil
	}

	snap := s.Snapshot()
	if snap.Phase != session.PhaseFailed {
		return err
	}
	presenter.RenderPhase(snap, appConfig.Endpoint, presenter.Action(busy))
	s.Acknowledge()
	return &reportedError{err: err}
}

// printConnection shows which store a command is about to use.
func printConnection(cfg conn.ConnectionConfig, src secure.Source) {
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Endpoint: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(appConfig.Endpoint))
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Store:    ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(cfg.String()))
	if src == secure.SourceNone {
		pterm.Warning.Println("No credential found; set " + secure.EnvCredential + " or run 'flatbridge connect'")
	}
	pterm.Println()
}
