// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package presenter turns session outcomes into things an operator can keep or
// read: the export artifact on disk and a terminal rendering of each phase.
// Nothing here performs network I/O or touches session state.
package presenter

import (
	"fmt"
	"os"
	"path/filepath"

	"flatbridge/cli/internal/session"

	"github.com/klauspost/compress/gzip"
)

// Artifact naming for exports.
const (
	ArtifactName      = "export.csv"
	ArtifactMediaType = "text/csv"
)

// Artifact is a downloadable export.
type Artifact struct {
	Name      string
	MediaType string
	Data      []byte
}

// ArtifactOf derives the artifact for an outcome. Only an export yields one;
// an export with an empty payload yields an empty file.
func ArtifactOf(outcome session.Outcome) (Artifact, bool) {
	res, ok := outcome.(session.ExportResult)
	if !ok {
		return Artifact{}, false
	}
	return Artifact{
		Name:      ArtifactName,
		MediaType: ArtifactMediaType,
		Data:      []byte(res.Payload),
	}, true
}

// SaveOptions controls how an artifact is written.
type SaveOptions struct {
	// Gzip compresses the file and appends .gz to its name.
	Gzip bool
	// Name overrides the artifact name.
	Name string
}

// Save writes a into dir and returns the final path. The file appears
// atomically: it is written to a temporary name and renamed into place.
func Save(dir string, a Artifact, opts SaveOptions) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := a.Name
	if opts.Name != "" {
		name = opts.Name
	}
	if opts.Gzip {
		name += ".gz"
	}
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeArtifact(tmp, a, opts); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("rename into place: %w", err)
	}
	return final, nil
}

func writeArtifact(f *os.File, a Artifact, opts SaveOptions) error {
	if !opts.Gzip {
		if _, err := f.Write(a.Data); err != nil {
			return fmt.Errorf("write artifact: %w", err)
		}
		return nil
	}

	zw := gzip.NewWriter(f)
	zw.Name = a.Name
	if _, err := zw.Write(a.Data); err != nil {
		return fmt.Errorf("compress artifact: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress artifact: %w", err)
	}
	return nil
}
