// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for flatbridge.
// It implements the subcommands that move data between an analytical store and
// CSV files through a transfer endpoint, plus the reference endpoint itself,
// using the Cobra CLI framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flatbridge/cli/internal/config"
	"flatbridge/cli/internal/logging"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	cfgFile     string
	verbose     bool

	// appConfig is loaded once per invocation before any command runs.
	appConfig config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "flatbridge",
	Short: "Move data between an analytical store and CSV files",
	Long: `flatbridge moves data between a columnar analytical store and CSV files
through a transfer endpoint. Run 'flatbridge connect' once to save a connection,
then 'flatbridge run' for the interactive wizard or 'flatbridge export' and
'flatbridge import' for scripted transfers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		level := c.LogLevel
		if verbose {
			level = "debug"
		}
		logging.Setup(level, c.LogFormat, os.Stderr)
		appConfig = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application. Interrupts cancel the command context so
// in-flight requests are abandoned cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var shown *reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/flatbridge/config.yaml)")
	pf.String("endpoint", "", "Transfer endpoint base URL")
	pf.Duration("timeout", 0, "Per-request timeout (0 disables)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
}
