// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"flatbridge/cli/internal/server"
	"flatbridge/cli/internal/store"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// serveCmd runs the reference transfer endpoint.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transfer endpoint",
	Long: `The serve command runs an HTTP transfer endpoint with the same contract the
CLI talks to. Every request carries its own connection; the endpoint opens the
store with --driver (postgres or duckdb) for that request and closes it after.

For duckdb the database field of the connection is the path of the database file.`,
	Example: `  flatbridge serve --addr :8000 --driver postgres
  flatbridge serve --driver duckdb --cors http://localhost:3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := appConfig.Server
		opener, err := store.ForDriver(sc.Driver)
		if err != nil {
			return err
		}

		srv := server.New(opener, server.Options{
			CORSOrigins: sc.CORSOrigins,
			Metrics:     sc.Metrics,
		})
		slog.Info("configuration loaded",
			"addr", sc.Addr,
			"driver", sc.Driver,
			"cors_origins", len(sc.CORSOrigins),
			"metrics", sc.Metrics,
		)

		// Graceful shutdown
		go func() {
			<-cmd.Context().Done()
			slog.Info("shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
			}
		}()

		if err := srv.Start(sc.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.String("addr", "", "Listen address (default :8000)")
	f.String("driver", "", "Store driver: postgres or duckdb")
	f.StringSlice("cors", nil, "Allowed CORS origins")
}
