// Package xdg provides helpers to resolve XDG Base Directory paths for flatbridge.
// The config dir holds config.yaml; the state dir holds the default duckdb file
// used by `flatbridge serve`.
//
// Both fall back to the traditional locations when the XDG environment
// variables are not set, and are created with private permissions.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "flatbridge"

// ConfigDir returns the XDG config directory for flatbridge.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/flatbridge when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for flatbridge.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/flatbridge when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
