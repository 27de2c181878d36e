// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package staging manages per-request scratch directories for transports
// that receive files. Every request gets its own input and output
// directory named by a fresh request ID, so concurrent requests never
// share paths.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Stager creates request directories under two roots.
type Stager struct {
	uploadsDir string
	outputDir  string
}

// New returns a Stager staging inputs under uploadsDir and outputs under
// outputDir.
func New(uploadsDir, outputDir string) *Stager {
	return &Stager{uploadsDir: uploadsDir, outputDir: outputDir}
}

// Request is the scratch space of one conversion request.
type Request struct {
	ID        string
	InputDir  string
	OutputDir string
}

// Begin creates the directories of a new request.
func (s *Stager) Begin() (*Request, error) {
	id := uuid.New().String()
	req := &Request{
		ID:        id,
		InputDir:  filepath.Join(s.uploadsDir, id),
		OutputDir: filepath.Join(s.outputDir, id),
	}
	for _, dir := range []string{req.InputDir, req.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			req.Cleanup()
			return nil, fmt.Errorf("creating staging directory %s: %w", dir, err)
		}
	}
	return req, nil
}

// InputPath returns where a received file called name is stored. Only the
// base name is kept.
func (r *Request) InputPath(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	return filepath.Join(r.InputDir, base)
}

// Cleanup removes both request directories and everything in them.
func (r *Request) Cleanup() error {
	return errors.Join(os.RemoveAll(r.InputDir), os.RemoveAll(r.OutputDir))
}
