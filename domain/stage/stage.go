package stage

import (
	"strconv"
	"strings"

	"ngsrerun/domain/report"
	"ngsrerun/internal/errors"
)

// Record is the per-sample stage metadata carried by the pipeline's
// Stage3 file.
type Record struct {
	Sample     string
	Stage      string
	Status     string
	ClientName string
	SampleName string
}

// Metadata indexes Stage3 records by sample barcode. A later record
// for the same barcode replaces an earlier one.
type Metadata map[string]Record

// Stage3 column names.
const (
	ColSample     = "sampleBarcode"
	ColStage      = "stage"
	ColStatus     = "status"
	ColClientName = "clientName"
	ColSampleName = "sampleName"
)

// Parse converts a decoded Stage3 table into indexed metadata. Only
// the sampleBarcode column is mandatory; the rest of the columns are
// carried through when present.
func Parse(t report.Table) (Metadata, error) {
	have := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		have[h] = true
	}
	if !have[ColSample] {
		return nil, errors.ParseError("stage3 file is missing required column " + strconv.Quote(ColSample))
	}

	md := make(Metadata, len(t.Rows))
	for i, raw := range t.Rows {
		sample := strings.TrimSpace(raw[ColSample])
		if sample == "" {
			return nil, errors.ParseError("stage3 row " + strconv.Itoa(i+2) + " has an empty sample barcode")
		}
		md[sample] = Record{
			Sample:     sample,
			Stage:      strings.TrimSpace(raw[ColStage]),
			Status:     strings.TrimSpace(raw[ColStatus]),
			ClientName: strings.TrimSpace(raw[ColClientName]),
			SampleName: strings.TrimSpace(raw[ColSampleName]),
		}
	}
	return md, nil
}

// Lookup returns the record for a sample barcode, if any.
func (m Metadata) Lookup(sample string) (Record, bool) {
	if m == nil {
		return Record{}, false
	}
	r, ok := m[sample]
	return r, ok
}
