// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package server is the reference transfer endpoint run by `flatbridge serve`.
// It speaks the same REST contract the CLI client uses and opens a store per
// request from the connection carried in that request.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"flatbridge/cli/internal/endpoint"
	"flatbridge/cli/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxUpload bounds the in-memory part of a multipart upload.
const maxUpload = 32 << 20

// Options configures a Server.
type Options struct {
	// CORSOrigins enables CORS for these origins; empty disables it.
	CORSOrigins []string
	// Metrics exposes /metrics.
	Metrics bool
	// Registry receives the transfer metrics; a fresh one is used when nil.
	Registry *prometheus.Registry
}

// Server is the HTTP server for the transfer endpoint.
type Server struct {
	opener  store.Opener
	router  *chi.Mux
	server  *http.Server
	metrics *metrics
	opts    Options
}

// New creates a Server over opener.
func New(opener store.Opener, opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		opener:  opener,
		router:  chi.NewRouter(),
		metrics: newMetrics(opts.Registry),
		opts:    opts,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	paths := endpoint.DefaultEndpoints()

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.opts.Metrics {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	}

	s.router.Post(paths.Connect, s.handleConnect)
	s.router.Post(paths.Columns, s.handleColumns)
	s.router.Post(paths.Export, s.handleExport)
	s.router.Post(paths.Import, s.handleImport)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("starting transfer endpoint", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger logs one line per request with slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
