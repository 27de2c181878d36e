// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CellKind identifies how a raw cell value was stored in the source sheet.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellBool
	CellTime
)

// Cell is one raw value read from a tabular input.
type Cell struct {
	Kind CellKind

	// Text holds the value of text cells and the stored decimal literal of
	// number cells, when the source kept one.
	Text string

	// Number holds the value of number cells.
	Number float64

	// Bool holds the value of boolean cells.
	Bool bool

	// Time holds the value of date-formatted cells.
	Time time.Time
}

// TextCell returns a text cell, or an empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a number cell without a stored literal.
func NumberCell(v float64) Cell {
	return Cell{Kind: CellNumber, Number: v}
}

// Row is one data row: cells keyed by column name.
type Row struct {
	// Line is the 1-based line of the row in the source sheet.
	Line int

	Cells map[string]Cell
}

// Get returns the cell for column and whether the row has it.
func (r Row) Get(column string) (Cell, bool) {
	c, ok := r.Cells[column]
	return c, ok
}

// Table is the decoded content of one sheet: header names in sheet order
// and the data rows in sheet order.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contains name.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizedRow holds the display strings of the six fields a detail block
// needs.
type NormalizedRow struct {
	Line       int    `json:"line" yaml:"line"`
	PRAN       string `json:"pran" yaml:"pran"`
	ExitDate   string `json:"exit_date" yaml:"exit_date"`
	Account    string `json:"account" yaml:"account"`
	BranchCode string `json:"branch_code" yaml:"branch_code"`
	Address    string `json:"address" yaml:"address"`
	Pin        string `json:"pin" yaml:"pin"`
}
