// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs one conversion request end to end: decode the
// input, detect its layout, normalize every row, render the submission
// file, and write exactly one output file. The document is rendered in
// memory first, so a failed request never leaves a partial file behind.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/apyexit/internal/normalize"
	"github.com/pdiddy/apyexit/internal/render"
	"github.com/pdiddy/apyexit/internal/source"
	"github.com/pdiddy/apyexit/pkg/types"
)

// Document is a rendered submission file.
type Document struct {
	// Name is the generated file name.
	Name    string
	Variant normalize.Variant
	Rows    []types.NormalizedRow
	Content []byte
}

// Result describes a document written to disk.
type Result struct {
	Source  string
	Output  string
	Variant string
	Records int
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int
	Results   []Result
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Converter runs conversions. It keeps no per-request state and may be
// shared by concurrent requests.
type Converter struct {
	renderer *render.Renderer
	now      func() time.Time
}

// Option customizes a Converter.
type Option func(*Converter)

// WithClock sets the clock used for <req-date> and generated file names.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// New creates a Converter rendering with cfg.
func New(cfg types.RenderConfig, opts ...Option) *Converter {
	c := &Converter{renderer: render.New(cfg), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Document decodes r (named name, which selects the decoder and the
// output name) and renders its submission file in memory.
func (c *Converter) Document(ctx context.Context, name string, r io.Reader) (Document, error) {
	tbl, err := source.Load(ctx, name, r)
	if err != nil {
		return Document{}, err
	}
	return c.FromTable(name, tbl)
}

// FromTable renders the submission file for an already decoded table.
func (c *Converter) FromTable(name string, tbl types.Table) (Document, error) {
	v, rows, err := normalize.Table(tbl)
	if err != nil {
		return Document{}, err
	}

	now := c.now()
	content, err := c.renderer.Bytes(v, rows, now)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:    render.FileName(v, name, now),
		Variant: v,
		Rows:    rows,
		Content: content,
	}, nil
}

// ConvertFile converts the file at path and writes the result into outDir.
func (c *Converter) ConvertFile(ctx context.Context, path, outDir string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := c.Document(ctx, filepath.Base(path), f)
	if err != nil {
		return Result{}, err
	}

	out, err := WriteDocument(outDir, doc)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Source:  path,
		Output:  out,
		Variant: doc.Variant.Name,
		Records: len(doc.Rows),
	}, nil
}

// ConvertBatch converts each path in turn, printing per-file status to w
// and returning a summary. It continues after individual failures.
func (c *Converter) ConvertBatch(ctx context.Context, paths []string, outDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", p, err)
			result.Failed++
			continue
		}
		res, err := c.ConvertFile(ctx, p, outDir)
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", p, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s -> %s (variant %s, %d records)\n", p, res.Output, res.Variant, res.Records)
		result.Converted++
		result.Results = append(result.Results, res)
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		result.Converted, result.Failed, result.Total())
	return result
}

// WriteDocument writes doc into dir under doc.Name and returns the path.
// Content goes to a temporary file first and is renamed into place.
func WriteDocument(dir string, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".apyexit-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(doc.Content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing %s: %w", doc.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing %s: %w", doc.Name, err)
	}

	out := filepath.Join(dir, doc.Name)
	if err := os.Rename(tmpPath, out); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming to %s: %w", out, err)
	}
	return out, nil
}
