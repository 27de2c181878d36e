// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/apyexit/pkg/types"
)

// ctxCheckEvery is how many rows are decoded between context checks.
const ctxCheckEvery = 256

// decodeSpreadsheet reads the first sheet of an OOXML workbook. Raw cell
// values are read so numbers keep their stored literal instead of the
// display format applied by Excel.
func decodeSpreadsheet(ctx context.Context, name string, r io.Reader) (types.Table, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return types.Table{}, &DecodeError{Name: name, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return types.Table{}, &DecodeError{Name: name, Err: errors.New("workbook has no sheets")}
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return types.Table{}, &DecodeError{Name: name, Err: err}
	}

	var b tableBuilder
	if len(rows) == 0 {
		return b.table, nil
	}
	b.setHeader(rows[0])

	sc := &sheetCells{
		f:          f,
		sheet:      sheet,
		date1904:   uses1904(f),
		dateStyles: make(map[int]bool),
	}
	for i, raw := range rows[1:] {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return types.Table{}, err
			}
		}
		line := i + 2
		err := b.addRow(line, func(pos int) (types.Cell, error) {
			if pos >= len(raw) || raw[pos] == "" {
				return types.Cell{}, nil
			}
			return sc.cell(pos+1, line, raw[pos])
		})
		if err != nil {
			return types.Table{}, &DecodeError{Name: name, Err: err}
		}
	}
	return b.table, nil
}

// sheetCells types raw cell values using the cell type and number format
// stored in the workbook.
type sheetCells struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (s *sheetCells) cell(col, line int, value string) (types.Cell, error) {
	axis, err := excelize.CoordinatesToCellName(col, line)
	if err != nil {
		return types.Cell{}, err
	}
	kind, err := s.f.GetCellType(s.sheet, axis)
	if err != nil {
		return types.Cell{}, err
	}

	switch kind {
	case excelize.CellTypeBool:
		return types.Cell{Kind: types.CellBool, Bool: value == "1" || strings.EqualFold(value, "true")}, nil
	case excelize.CellTypeDate:
		if t, ok := parseISOTime(value); ok {
			return types.Cell{Kind: types.CellTime, Time: t}, nil
		}
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			break
		}
		if s.isDate(axis) {
			if t, err := excelize.ExcelDateToTime(v, s.date1904); err == nil {
				return types.Cell{Kind: types.CellTime, Time: t}, nil
			}
		}
		return types.Cell{Kind: types.CellNumber, Text: value, Number: v}, nil
	}
	return types.TextCell(value), nil
}

func (s *sheetCells) isDate(axis string) bool {
	styleID, err := s.f.GetCellStyle(s.sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if d, ok := s.dateStyles[styleID]; ok {
		return d
	}
	d := false
	if style, err := s.f.GetStyle(styleID); err == nil && style != nil {
		d = isDateNumFmt(style.NumFmt) || (style.CustomNumFmt != nil && isDateFormat(*style.CustomNumFmt))
	}
	s.dateStyles[styleID] = d
	return d
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	return err == nil && props.Date1904 != nil && *props.Date1904
}

// isDateNumFmt reports whether id is a built-in date or time format.
func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormat reports whether a custom number format code formats dates
// or times. Quoted literals, escaped characters and bracketed sections
// (colors, locales, elapsed-time markers) are ignored.
func isDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydhs")
}

var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseISOTime(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
