// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source decodes tabular inputs into rows of named cells.
// Spreadsheets are read with excelize (first sheet only); CSV files with
// encoding/csv. The first row is the header.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/apyexit/pkg/types"
)

// Format identifies a supported input format.
type Format string

const (
	FormatSpreadsheet Format = "xlsx"
	FormatCSV         Format = "csv"
)

var formatsByExt = map[string]Format{
	".xlsx": FormatSpreadsheet,
	".xlsm": FormatSpreadsheet,
	".xltx": FormatSpreadsheet,
	".xltm": FormatSpreadsheet,
	".csv":  FormatCSV,
}

// DecodeError reports an input that is not a readable file of a supported
// format.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FormatOf returns the format selected by the extension of name.
func FormatOf(name string) (Format, bool) {
	f, ok := formatsByExt[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// Supported lists the accepted file extensions.
func Supported() []string {
	return []string{".xlsx", ".xlsm", ".xltx", ".xltm", ".csv"}
}

// Load decodes r, choosing the decoder from the extension of name.
func Load(ctx context.Context, name string, r io.Reader) (types.Table, error) {
	if err := ctx.Err(); err != nil {
		return types.Table{}, err
	}
	format, ok := FormatOf(name)
	if !ok {
		return types.Table{}, &DecodeError{
			Name: name,
			Err:  fmt.Errorf("unsupported file type %q (supported: %s)", filepath.Ext(name), strings.Join(Supported(), ", ")),
		}
	}

	switch format {
	case FormatCSV:
		return decodeCSV(ctx, name, r)
	default:
		return decodeSpreadsheet(ctx, name, r)
	}
}

// LoadFile opens path and decodes it.
func LoadFile(ctx context.Context, path string) (types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Load(ctx, filepath.Base(path), f)
}

// tableBuilder collects header and rows shared by both decoders.
type tableBuilder struct {
	table types.Table
	index []int // header column position -> position in table.Columns, -1 to drop
}

// setHeader trims names and drops blank and repeated columns; the first
// column with a given name wins.
func (b *tableBuilder) setHeader(raw []string) {
	seen := make(map[string]bool, len(raw))
	b.index = make([]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" || seen[name] {
			b.index[i] = -1
			continue
		}
		seen[name] = true
		b.index[i] = len(b.table.Columns)
		b.table.Columns = append(b.table.Columns, name)
	}
}

// addRow appends a row built by cell(i) for each kept header position.
// Rows whose kept cells are all empty are skipped.
func (b *tableBuilder) addRow(line int, cell func(pos int) (types.Cell, error)) error {
	row := types.Row{Line: line, Cells: make(map[string]types.Cell, len(b.table.Columns))}
	blank := true
	for pos, idx := range b.index {
		if idx < 0 {
			continue
		}
		c, err := cell(pos)
		if err != nil {
			return err
		}
		if c.Kind != types.CellEmpty {
			blank = false
		}
		row.Cells[b.table.Columns[idx]] = c
	}
	if !blank {
		b.table.Rows = append(b.table.Rows, row)
	}
	return nil
}
