package report

import (
	"strconv"
	"strings"

	"ngsrerun/internal/errors"
)

// RawRow is one row of a decoded report keyed by header name.
type RawRow map[string]string

// Table is the raw decoded form of a report file before typing.
type Table struct {
	Headers []string
	Rows    []RawRow
}

// Column names as they appear in the genotyping report header. The
// report is header-addressed rather than positional so that column
// reordering by the instrument software does not silently shift data.
const (
	ColBarcode      = "barcode"
	ColCodeAssays   = "code_assays"
	ColPlate        = "plate"
	ColWell         = "wellLocation"
	ColSex          = "sex"
	ColAlleleSymbol = "alleleSymbol"
	ColAlleleKey    = "alleleKey"
	ColAssayKey     = "assayKey"
	ColPassFail     = "passFail"
	ColEfficiency   = "efficiency"
	ColAlleleRatio  = "alleleRatio"
	ColGenotype     = "genotype"
	ColReason       = "reason"
)

var requiredColumns = []string{
	ColBarcode, ColCodeAssays, ColPlate, ColWell, ColPassFail, ColGenotype,
}

// Parse converts a raw table into typed ResultRows, validating the
// header up front. A missing required column is a parse error naming
// the column; no rows are returned on error.
func Parse(t Table) ([]ResultRow, error) {
	have := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		have[h] = true
	}
	for _, col := range requiredColumns {
		if !have[col] {
			return nil, errors.ParseError("report is missing required column " + strconv.Quote(col))
		}
	}

	rows := make([]ResultRow, 0, len(t.Rows))
	for i, raw := range t.Rows {
		row, err := parseRow(i, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "report row %d", i+2) // +2: 1-based plus header
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(index int, raw RawRow) (ResultRow, error) {
	sample, assay, err := splitCodeAssays(raw[ColCodeAssays])
	if err != nil {
		return ResultRow{}, err
	}

	row := ResultRow{
		Index:        index,
		Sample:       sample,
		Assay:        assay,
		Plate:        strings.TrimSpace(raw[ColPlate]),
		Well:         strings.TrimSpace(raw[ColWell]),
		Sex:          strings.TrimSpace(raw[ColSex]),
		AlleleSymbol: strings.TrimSpace(raw[ColAlleleSymbol]),
		AlleleKey:    strings.TrimSpace(raw[ColAlleleKey]),
		AssayKey:     strings.TrimSpace(raw[ColAssayKey]),
		Call:         ParseCall(raw[ColPassFail]),
		Genotype:     strings.TrimSpace(raw[ColGenotype]),
		Reason:       strings.TrimSpace(raw[ColReason]),
	}

	eff, effOK := parseMetric(raw[ColEfficiency])
	ratio, ratioOK := parseMetric(raw[ColAlleleRatio])
	row.Efficiency = eff
	row.AlleleRatio = ratio
	row.HasMetrics = effOK && ratioOK

	if row.Sample == "" {
		return ResultRow{}, errors.ParseError("empty sample barcode")
	}
	return row, nil
}

// splitCodeAssays splits the combined "barcode;assay" identifier the
// pipeline packs into the code_assays column.
func splitCodeAssays(s string) (sample, assay string, err error) {
	parts := strings.SplitN(s, ";", 2)
	if len(parts) != 2 {
		return "", "", errors.ParseError("code_assays " + strconv.Quote(s) + " is not in barcode;assay form")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func parseMetric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
