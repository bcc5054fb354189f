// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"

	"flatbridge/cli/internal/config"
	"flatbridge/cli/internal/keychain"
	"flatbridge/cli/internal/secure"

	"github.com/spf13/cobra"
)

// forgetCmd clears the saved connection.
var forgetCmd = &cobra.Command{
	Use:     "forget",
	Aliases: []string{"logout"},
	Short:   "Remove the saved connection and credential",
	Long: `The forget command clears the saved store connection from the config file
and removes the credential from the OS keychain. A credential supplied through
` + secure.EnvCredential + ` is not affected.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		// Keychain first: a missing or unavailable keychain still clears the profile
		if err := secure.ClearCredential(); err != nil && !errors.Is(err, keychain.ErrNotFound) {
			fmt.Println("⚠️  Could not clear the OS keychain: " + err.Error())
		}

		next := appConfig
		next.Profile = config.Profile{}
		if err := config.Save(cfgFile, next); err != nil {
			return err
		}

		fmt.Println("✅ Saved connection and credential have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}
