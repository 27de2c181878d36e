// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns decoded rows into the display strings rendered in
// the submission file. It detects the input layout, looks up the six
// required cells of every row, and applies the numeric and date rules.
package normalize

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pdiddy/apyexit/pkg/types"
)

// timeLayout matches how date cells print before exit-date truncation.
const timeLayout = "2006-01-02 15:04:05"

// Table detects the variant of t and normalizes all of its rows.
func Table(t types.Table) (Variant, []types.NormalizedRow, error) {
	v, err := Detect(t)
	if err != nil {
		return Variant{}, nil, err
	}
	rows, err := Normalize(v, t.Rows)
	if err != nil {
		return Variant{}, nil, err
	}
	return v, rows, nil
}

// Normalize converts rows in order. The first row lacking a required cell
// fails the whole call with a *MissingFieldError.
func Normalize(v Variant, rows []types.Row) ([]types.NormalizedRow, error) {
	out := make([]types.NormalizedRow, 0, len(rows))
	for _, row := range rows {
		nr, err := v.normalizeRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, nr)
	}
	return out, nil
}

func (v Variant) normalizeRow(row types.Row) (types.NormalizedRow, error) {
	nr := types.NormalizedRow{Line: row.Line}
	fields := []struct {
		column string
		dst    *string
	}{
		{v.Columns.PRAN, &nr.PRAN},
		{v.Columns.ExitDate, &nr.ExitDate},
		{v.Columns.Account, &nr.Account},
		{v.Columns.BranchCode, &nr.BranchCode},
		{v.Columns.Address, &nr.Address},
		{v.Columns.Pin, &nr.Pin},
	}
	for _, f := range fields {
		cell, ok := row.Get(f.column)
		if !ok {
			return types.NormalizedRow{}, &MissingFieldError{Column: f.column, Line: row.Line}
		}
		*f.dst = Display(cell)
	}
	if v.TruncateExitDate {
		nr.ExitDate = firstToken(nr.ExitDate)
	}
	return nr, nil
}

// Display renders a cell as its display string.
func Display(c types.Cell) string {
	switch c.Kind {
	case types.CellNumber:
		return displayNumber(c)
	case types.CellText:
		return c.Text
	case types.CellBool:
		if c.Bool {
			return "True"
		}
		return "False"
	case types.CellTime:
		return c.Time.Format(timeLayout)
	}
	return ""
}

// displayNumber renders from the float value, except that a stored
// integer literal is printed exactly so digits past float precision
// survive. Fractional literals such as 42.000000000000001 go through the
// float and print as 42.
func displayNumber(c types.Cell) string {
	if isIntegerLiteral(c.Text) {
		if d, err := decimal.NewFromString(c.Text); err == nil {
			return d.String()
		}
	}
	return FormatFloat(c.Number)
}

// isIntegerLiteral reports whether s is an optionally signed run of digits.
func isIntegerLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatFloat renders v with no decimal point when it is integral and in
// plain decimal notation otherwise. NaN renders as "".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return decimal.NewFromFloat(v).String()
}

// firstToken returns s up to its first ASCII whitespace.
func firstToken(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
