package writers

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ngsrerun/domain/manifest"
	"ngsrerun/domain/plate"
)

func sampleEntries() []manifest.Entry {
	return []manifest.Entry{
		{
			Well: plate.Well{Row: 0, Col: 0}, Sample: "S1", Assay: "AssayX",
			AlleleSymbol: "sym1", ClientName: "rerun", SampleName: "",
		},
		{
			Well: plate.Well{Row: 0, Col: 1}, Sample: "S2", Assay: "AssayY",
			AlleleSymbol: "sym2", ClientName: "client-a", SampleName: "mouse 12",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "RERUN-01", sampleEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Sample no,plateBarcode,well,sampleBarcode,Assay,clientName,sampleName,alleleSymbol", lines[0])
	assert.Equal(t, "1,RERUN-01,A1,S1,AssayX,rerun,,sym1", lines[1])
	assert.Equal(t, "2,RERUN-01,A2,S2,AssayY,client-a,mouse 12,sym2", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "RERUN-01", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1, "header only for an empty selection")
}

func TestSaveXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	require.NoError(t, SaveXLSX(path, "RERUN-01", sampleEntries()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "A1", rows[1][2])
	assert.Equal(t, "S2", rows[2][3])
}
