package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngsrerun/internal/config"
	"ngsrerun/internal/errors"
	"ngsrerun/internal/session"
)

const reportHeader = "barcode,code_assays,plate,wellLocation,sex,alleleSymbol,alleleKey,assayKey,passFail,efficiency,alleleRatio,genotype,reason\n"

func reportLine(sample, assay, well, passFail, genotype string) string {
	return fmt.Sprintf("%s,%s;%s,plate1,%s,F,sym,ak,asy,%s,0.9,0.5,%s,\n",
		sample, sample, assay, well, passFail, genotype)
}

func newTestService(t *testing.T) *RerunService {
	t.Helper()
	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	return NewRerunService(store, config.PlateConfig{Rows: 16, Cols: 24})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSessionEndToEnd(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	report := reportHeader +
		reportLine("S1", "AssayX", "A1", "fail", "?") +
		reportLine("S2", "AssayY", "A2", "pass", "wt/wt") +
		reportLine("S3", "AssayZ", "A3", "fail", "?")
	reportPath := writeFile(t, dir, "report.csv", report)

	stage3 := "sampleBarcode,stage,status,clientName,sampleName\nS1,3,complete,client-a,mouse 12\n"
	stage3Path := writeFile(t, dir, "stage3.csv", stage3)

	sess, err := svc.LoadSession(context.Background(), reportPath, stage3Path)
	require.NoError(t, err)
	require.Empty(t, sess.Issues)

	assert.Len(t, sess.Rows, 3)
	assert.Equal(t, 2, sess.Summary.Failed)
	assert.Equal(t, []int{0, 2}, sess.Selection, "default selection is the failures in report order")

	entries, err := svc.BuildManifest(sess)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A1", entries[0].Well.Name())
	assert.Equal(t, "A2", entries[1].Well.Name())
	assert.Equal(t, "client-a", entries[0].ClientName, "stage3 metadata enriches the entry")
	assert.Equal(t, "rerun", entries[1].ClientName)

	// The session snapshot is resumable.
	loaded, err := svc.Store().Load(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Selection, loaded.Selection)
}

func TestLoadSessionContentIssues(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, t.TempDir(), "report.csv",
		reportHeader+reportLine("S’1", "AssayX", "A1", "fail", "?"))

	sess, err := svc.LoadSession(context.Background(), path, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Issues, "non-ASCII content is reported")
	assert.Empty(t, sess.Rows, "parsing is withheld while issues exist")
}

func TestLoadSessionMissingColumn(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, t.TempDir(), "report.csv", "barcode,plate\nS1,plate1\n")

	_, err := svc.LoadSession(context.Background(), path, "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParseError), "code = %s", errors.GetCode(err))
}

func TestWriteManifestCSV(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, t.TempDir(), "report.csv",
		reportHeader+reportLine("S1", "AssayX", "A1", "fail", "?"))

	sess, err := svc.LoadSession(context.Background(), path, "")
	require.NoError(t, err)
	sess.PlateBarcode = "RERUN-01"

	var buf bytes.Buffer
	require.NoError(t, svc.WriteManifestCSV(&buf, sess))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,RERUN-01,A1,S1,AssayX,rerun,,sym", lines[1])
}

func TestManifestCapacityError(t *testing.T) {
	svc := NewRerunService(mustStore(t), config.PlateConfig{Rows: 1, Cols: 2})

	var sb strings.Builder
	sb.WriteString(reportHeader)
	for i := 0; i < 3; i++ {
		sb.WriteString(reportLine(fmt.Sprintf("S%d", i), "AssayX", fmt.Sprintf("A%d", i+1), "fail", "?"))
	}
	path := writeFile(t, t.TempDir(), "report.csv", sb.String())

	sess, err := svc.LoadSession(context.Background(), path, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = svc.WriteManifestCSV(&buf, sess)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeCapacityExceeded))
	assert.Zero(t, buf.Len(), "no partial manifest on capacity error")
}

func TestSaveManifestFormats(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, t.TempDir(), "report.csv",
		reportHeader+reportLine("S1", "AssayX", "A1", "fail", "?"))

	sess, err := svc.LoadSession(context.Background(), path, "")
	require.NoError(t, err)

	csvPath, err := svc.SaveManifest(sess, "csv")
	require.NoError(t, err)
	assert.FileExists(t, csvPath)

	xlsxPath, err := svc.SaveManifest(sess, "xlsx")
	require.NoError(t, err)
	assert.FileExists(t, xlsxPath)

	_, err = svc.SaveManifest(sess, "pdf")
	require.Error(t, err)
}

func mustStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}
