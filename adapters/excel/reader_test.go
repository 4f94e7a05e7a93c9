package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ngsrerun/internal/errors"
)

func TestParseDelimitedComma(t *testing.T) {
	content := "barcode,plate,wellLocation\nS1,plate1,A1\nS2,plate1,A2\n"
	tbl, err := ParseDelimited(content)
	require.NoError(t, err)

	assert.Equal(t, []string{"barcode", "plate", "wellLocation"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "S1", tbl.Rows[0]["barcode"])
	assert.Equal(t, "A2", tbl.Rows[1]["wellLocation"])
}

func TestParseDelimitedTab(t *testing.T) {
	content := "barcode\tplate\twellLocation\nS1\tplate1\tA1\n"
	tbl, err := ParseDelimited(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"barcode", "plate", "wellLocation"}, tbl.Headers)
	assert.Equal(t, "plate1", tbl.Rows[0]["plate"])
}

func TestParseDelimitedRaggedRows(t *testing.T) {
	// Instruments pad trailing columns inconsistently; short rows must
	// not fail, and extra cells beyond the header are dropped.
	content := "a,b,c\n1,2\n1,2,3,4\n"
	tbl, err := ParseDelimited(content)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "", tbl.Rows[0]["c"])
	assert.Equal(t, "3", tbl.Rows[1]["c"])
}

func TestParseDelimitedHeaderOnly(t *testing.T) {
	_, err := ParseDelimited("a,b,c\n")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParseError))
}

func TestReadTableCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("barcode,plate\nS1, plate1 \n"), 0644))

	tbl, warnings, err := NewDataReader(path).ReadTable()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "plate1", tbl.Rows[0]["plate"], "cells are trimmed")
}

func TestReadTableMissingFile(t *testing.T) {
	_, _, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).ReadTable()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestReadTableWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "barcode"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "plate"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "S1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "plate1"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reader := NewDataReader(path)
	assert.True(t, reader.IsWorkbook())

	tbl, _, err := reader.ReadTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"barcode", "plate"}, tbl.Headers)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "S1", tbl.Rows[0]["barcode"])
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', rune(sniffDelimiter("a,b,c\n1,2,3")))
	assert.Equal(t, '\t', rune(sniffDelimiter("a\tb\tc\n")))
	// Mixed header with more tabs than commas is tab-delimited.
	assert.Equal(t, '\t', rune(sniffDelimiter("a\tb\tc,d\n")))
}
