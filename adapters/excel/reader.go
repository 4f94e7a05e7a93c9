package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ngsrerun/adapters/textenc"
	"ngsrerun/domain/report"
	"ngsrerun/internal/errors"
)

// DataReader reads a results workbook (.xlsx) or delimited report
// (.csv/.tsv/.txt) into the raw table form the report parser consumes.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "text"
}

// NewDataReader creates a reader for the given file, picking the
// handling strategy from the extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "text"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm", ".xls":
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadTable reads the file into a raw table. For delimited text the
// encoding is auto-detected first; a low-confidence detection is
// returned as a warning rather than an error.
func (r *DataReader) ReadTable() (report.Table, []string, error) {
	log.Printf("[DataReader] reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return report.Table{}, nil, errors.NotFound(fmt.Sprintf("input file %s", r.filePath))
	}

	switch r.fileType {
	case "xlsx":
		t, err := r.readWorkbook()
		return t, nil, err
	default:
		return r.readDelimited()
	}
}

// readWorkbook reads Sheet1 of an Excel workbook, the sheet the
// genotyping instrument writes its results to.
func (r *DataReader) readWorkbook() (report.Table, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return report.Table{}, errors.Wrap(errors.ParseError(err.Error()), "failed to open workbook")
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return report.Table{}, errors.Wrap(errors.ParseError(err.Error()), "failed to read Sheet1")
	}
	log.Printf("[DataReader] workbook read in %.2fms (%d rows)",
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return tableFromRows(rows)
}

// IsWorkbook reports whether the reader treats its file as an Excel
// workbook rather than delimited text.
func (r *DataReader) IsWorkbook() bool {
	return r.fileType == "xlsx"
}

// ReadText reads and charset-decodes a delimited text file without
// parsing it, for callers that pre-validate content.
func ReadText(path string) (string, textenc.Detection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", textenc.Detection{}, errors.Wrap(err, "failed to read input file")
	}
	content, det := textenc.Decode(raw)
	return content, det, nil
}

// readDelimited decodes a text report with charset detection, sniffs
// the delimiter and parses it as CSV/TSV.
func (r *DataReader) readDelimited() (report.Table, []string, error) {
	content, det, err := ReadText(r.filePath)
	if err != nil {
		return report.Table{}, nil, err
	}

	var warnings []string
	if det.LowConfidence {
		warnings = append(warnings, fmt.Sprintf(
			"character encoding detected as %s with low confidence (%d%%); proceeding with best guess",
			det.Charset, det.Confidence))
	}
	log.Printf("[DataReader] text report decoded as %s (confidence %d%%)", det.Charset, det.Confidence)

	t, err := ParseDelimited(content)
	return t, warnings, err
}

// ParseDelimited sniffs the delimiter of already-decoded report text
// and parses it into a raw table.
func ParseDelimited(content string) (report.Table, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1 // instruments pad trailing columns inconsistently
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return report.Table{}, errors.Wrap(errors.ParseError(err.Error()), "failed to parse delimited report")
	}
	return tableFromRows(rows)
}

// sniffDelimiter picks tab or comma based on the header line. The
// genotyping report is documented as tab-delimited but comes through
// the pipeline comma-separated often enough that both must work.
func sniffDelimiter(content string) rune {
	header := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		header = content[:i]
	}
	if strings.Count(header, "\t") > strings.Count(header, ",") {
		return '\t'
	}
	return ','
}

// tableFromRows converts raw string rows into the header-keyed table
// form, trimming cell whitespace.
func tableFromRows(rows [][]string) (report.Table, error) {
	if len(rows) < 2 {
		return report.Table{}, errors.ParseError("input must have a header row and at least one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	dataRows := make([]report.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(report.RawRow, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return report.Table{Headers: headers, Rows: dataRows}, nil
}
