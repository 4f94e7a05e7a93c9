package manifest

import (
	"ngsrerun/domain/plate"
)

// DefaultClientName is written when the Stage3 file does not name a
// client for the sample. The downstream pipeline keys rerun plates on
// this value.
const DefaultClientName = "rerun"

// Entry is one row of the output manifest: a failed sample/assay pair
// assigned to a well on the rerun plate.
type Entry struct {
	Well         plate.Well
	Sample       string
	Assay        string
	AlleleSymbol string
	ClientName   string
	SampleName   string

	// Back-reference to the report row the entry was generated from.
	SourceIndex int
	SourcePlate string
	SourceWell  string
}

// key identifies a sample/assay pair for de-duplication.
type key struct {
	sample string
	assay  string
}
