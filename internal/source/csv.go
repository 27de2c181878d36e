// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/pdiddy/apyexit/pkg/types"
)

const utf8BOM = "\ufeff"

// decodeCSV reads a comma-separated file. All non-empty cells are text;
// CSV carries no type information to recover numbers from.
func decodeCSV(ctx context.Context, name string, r io.Reader) (types.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var b tableBuilder
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return b.table, nil
	}
	if err != nil {
		return types.Table{}, &DecodeError{Name: name, Err: err}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	b.setHeader(header)

	for i := 0; ; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return types.Table{}, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.Table{}, &DecodeError{Name: name, Err: err}
		}
		line, _ := reader.FieldPos(0)
		err = b.addRow(line, func(pos int) (types.Cell, error) {
			if pos >= len(record) {
				return types.Cell{}, nil
			}
			return types.TextCell(record[pos]), nil
		})
		if err != nil {
			return types.Table{}, &DecodeError{Name: name, Err: err}
		}
	}
	return b.table, nil
}
