// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testutil builds spreadsheet fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// HeaderA is the header row of the space-separated layout.
var HeaderA = []any{"PRAN NO", "EXIT DATE/STATUS", "ACC NO", "SOL No", "BRANCH", "PINCODE"}

// HeaderB is the header row of the underscore-separated layout.
var HeaderB = []any{"PRAN_NO", "EXIT_DATE", "ACC_NO", "SOL_NO", "BRANCH", "PINCODE"}

// Workbook returns an xlsx file whose first sheet holds rows.
func Workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// WriteWorkbook writes Workbook(rows) to dir/name and returns the path.
func WriteWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, Workbook(t, rows), 0o644))
	return path
}

// SampleA returns a three-row workbook in the space-separated layout.
func SampleA() [][]any {
	return [][]any{
		HeaderA,
		{110012345678, "01-05-2021", 5001000100012345, 501, "MAIN ROAD", 141001},
		{110012345679, "02-05-2021", 5001000100012346, 502, "CIVIL LINES", 141002},
		{110012345680, "03-05-2021", 5001000100012347, 503, "MODEL TOWN", 141003},
	}
}
