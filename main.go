// Package main is the entry point for the flatbridge CLI application.
// It moves data between an analytical store and CSV files through a transfer endpoint.
package main

import (
	"flatbridge/cli/cmd"
)

// main is the entry point for the flatbridge CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
