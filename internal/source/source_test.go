// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/apyexit/internal/normalize"
	"github.com/pdiddy/apyexit/internal/testutil"
	"github.com/pdiddy/apyexit/pkg/types"
)

func TestLoad_Spreadsheet(t *testing.T) {
	exit := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	data := testutil.Workbook(t, [][]any{
		{"PRAN_NO", " EXIT_DATE ", "ACC_NO", "SOL_NO", "BRANCH", "PINCODE", "ACTIVE"},
		{110012345678, exit, 5001000100012345, 501, "MAIN ROAD", 141001.0, true},
		{},
		{"110012345679", "2021-05-02 00:00:00", 12.5, "502", "CIVIL LINES"},
	})

	tbl, err := Load(context.Background(), "exits.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"PRAN_NO", "EXIT_DATE", "ACC_NO", "SOL_NO", "BRANCH", "PINCODE", "ACTIVE"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2, "blank rows are skipped")

	first := tbl.Rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, types.CellNumber, first.Cells["PRAN_NO"].Kind)
	assert.Equal(t, "110012345678", first.Cells["PRAN_NO"].Text)
	assert.Equal(t, "5001000100012345", first.Cells["ACC_NO"].Text)
	assert.Equal(t, float64(501), first.Cells["SOL_NO"].Number)
	assert.Equal(t, types.CellText, first.Cells["BRANCH"].Kind)
	assert.Equal(t, "MAIN ROAD", first.Cells["BRANCH"].Text)
	assert.Equal(t, float64(141001), first.Cells["PINCODE"].Number)
	assert.Equal(t, types.CellBool, first.Cells["ACTIVE"].Kind)
	assert.True(t, first.Cells["ACTIVE"].Bool)

	exitCell := first.Cells["EXIT_DATE"]
	require.Equal(t, types.CellTime, exitCell.Kind)
	assert.Equal(t, "2021-05-01", exitCell.Time.Format("2006-01-02"))

	second := tbl.Rows[1]
	assert.Equal(t, 4, second.Line)
	assert.Equal(t, types.CellText, second.Cells["PRAN_NO"].Kind)
	assert.Equal(t, "2021-05-02 00:00:00", second.Cells["EXIT_DATE"].Text)
	assert.Equal(t, 12.5, second.Cells["ACC_NO"].Number)
	pin, ok := second.Get("PINCODE")
	require.True(t, ok, "short rows still carry every header column")
	assert.Equal(t, types.CellEmpty, pin.Kind)
}

func TestLoad_SpreadsheetStoredLiterals(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"PRAN NO", "EXIT DATE/STATUS", "ACC NO", "SOL No", "BRANCH", "PINCODE"}))
	require.NoError(t, f.SetCellDefault("Sheet1", "A2", "110012345678"))
	require.NoError(t, f.SetCellStr("Sheet1", "B2", "01-05-2021"))
	require.NoError(t, f.SetCellDefault("Sheet1", "C2", "12.300000000000001"))
	require.NoError(t, f.SetCellDefault("Sheet1", "D2", "42.000000000000001"))
	require.NoError(t, f.SetCellStr("Sheet1", "E2", "MAIN ROAD"))
	require.NoError(t, f.SetCellDefault("Sheet1", "F2", "12345678901234567890"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := Load(context.Background(), "exits.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, 12.3, tbl.Rows[0].Cells["ACC NO"].Number)

	_, rows, err := normalize.Table(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "110012345678", rows[0].PRAN)
	assert.Equal(t, "12.3", rows[0].Account)
	assert.Equal(t, "42", rows[0].BranchCode)
	assert.Equal(t, "12345678901234567890", rows[0].Pin, "integer literals beyond float precision keep every digit")
}

func TestTableBuilder_AddRowPropagatesCellErrors(t *testing.T) {
	var b tableBuilder
	b.setHeader([]string{"PRAN NO", "ACC NO"})

	boom := errors.New("bad cell")
	err := b.addRow(2, func(pos int) (types.Cell, error) {
		if pos == 1 {
			return types.Cell{}, boom
		}
		return types.TextCell("x"), nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, b.table.Rows, "a failed row is not appended")
}

func TestLoad_SpreadsheetFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"PRAN NO"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1"}))
	_, err := f.NewSheet("Archive")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Archive", "A1", &[]any{"PRAN_NO"}))
	require.NoError(t, f.SetSheetRow("Archive", "A2", &[]any{"2"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := Load(context.Background(), "exits.xlsx", buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"PRAN NO"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "1", tbl.Rows[0].Cells["PRAN NO"].Text)
}

func TestLoad_HeaderOnly(t *testing.T) {
	data := testutil.Workbook(t, [][]any{{"PRAN NO", "ACC NO"}})

	tbl, err := Load(context.Background(), "exits.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"PRAN NO", "ACC NO"}, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestLoad_DuplicateAndBlankHeaders(t *testing.T) {
	data := testutil.Workbook(t, [][]any{
		{"PRAN NO", "", "PRAN NO"},
		{"first", "ignored", "second"},
	})

	tbl, err := Load(context.Background(), "exits.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"PRAN NO"}, tbl.Columns)
	assert.Equal(t, "first", tbl.Rows[0].Cells["PRAN NO"].Text)
}

func TestLoad_CSV(t *testing.T) {
	input := "\ufeffPRAN NO,EXIT DATE/STATUS,ACC NO\n" +
		"110012345678,01-05-2021,000123\n" +
		",,\n" +
		"110012345679,\"02-05-2021, late\"\n"

	tbl, err := Load(context.Background(), "exits.CSV", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"PRAN NO", "EXIT DATE/STATUS", "ACC NO"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, 2, tbl.Rows[0].Line)
	assert.Equal(t, types.TextCell("000123"), tbl.Rows[0].Cells["ACC NO"])
	assert.Equal(t, 4, tbl.Rows[1].Line)
	assert.Equal(t, "02-05-2021, late", tbl.Rows[1].Cells["EXIT DATE/STATUS"].Text)
	assert.Equal(t, types.CellEmpty, tbl.Rows[1].Cells["ACC NO"].Kind)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		input string
	}{
		{name: "unsupported extension", file: "exits.xls", input: "anything"},
		{name: "no extension", file: "exits", input: "anything"},
		{name: "not a zip archive", file: "exits.xlsx", input: "PRAN NO,ACC NO\n1,2\n"},
		{name: "malformed csv", file: "exits.csv", input: "PRAN NO,ACC NO\n\"unterminated,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.file, strings.NewReader(tt.input))
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.file, de.Name)
		})
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, "exits.csv", strings.NewReader("PRAN NO\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exits.xlsx")
	require.NoError(t, os.WriteFile(path, testutil.Workbook(t, [][]any{{"PRAN NO"}, {"1"}}), 0o644))

	tbl, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)

	_, err = LoadFile(context.Background(), filepath.Join(dir, "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm", true},
		{"[$-409]mmmm d, yyyy", true},
		{"0.00", false},
		{"#,##0", false},
		{`0 "days"`, false},
		{"@", false},
		{"General", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormat(tt.code))
		})
	}
}
