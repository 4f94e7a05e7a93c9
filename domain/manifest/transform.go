package manifest

import (
	"fmt"

	"ngsrerun/domain/plate"
	"ngsrerun/domain/report"
	"ngsrerun/domain/stage"
	"ngsrerun/internal/errors"
)

// Transform maps the selected report rows onto consecutive wells of the
// target plate and returns the resulting manifest entries.
//
// selection is an ordered list of report row indices; order of the
// slice is the packing order. Rows with a pass call are rejected, never
// emitted. Duplicate (sample, assay) pairs collapse to a single entry
// and the last selection wins: the earlier occurrence is dropped and
// the pair takes the later position. When the selected rows exceed the
// free wells of the layout the transform returns CapacityExceeded and
// no entries.
//
// The function is pure: it does not advance the caller's layout cursor
// and performs no I/O.
func Transform(rows []report.ResultRow, selection []int, layout *plate.Layout, md stage.Metadata) ([]Entry, error) {
	if layout == nil {
		return nil, errors.InvalidInput("nil plate layout")
	}

	pending := make([]Entry, 0, len(selection))
	position := make(map[key]int, len(selection))

	for _, idx := range selection {
		if idx < 0 || idx >= len(rows) {
			return nil, errors.InvalidInput(fmt.Sprintf("selection references row %d outside the report", idx))
		}
		row := rows[idx]
		if row.Sample == "" || row.Assay == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("report row %d has an empty sample or assay identifier", idx))
		}
		if row.Call == report.CallPass && !row.Failed() {
			return nil, errors.InvalidInput(fmt.Sprintf("report row %d (%s/%s) passed and cannot be rerun", idx, row.Sample, row.Assay))
		}

		entry := Entry{
			Sample:       row.Sample,
			Assay:        row.Assay,
			AlleleSymbol: row.AlleleSymbol,
			ClientName:   DefaultClientName,
			SourceIndex:  row.Index,
			SourcePlate:  row.Plate,
			SourceWell:   row.Well,
		}
		if rec, ok := md.Lookup(row.Sample); ok {
			if rec.ClientName != "" {
				entry.ClientName = rec.ClientName
			}
			entry.SampleName = rec.SampleName
		}

		k := key{sample: row.Sample, assay: row.Assay}
		if prev, dup := position[k]; dup {
			pending = append(pending[:prev], pending[prev+1:]...)
			for pk, pi := range position {
				if pi > prev {
					position[pk] = pi - 1
				}
			}
		}
		position[k] = len(pending)
		pending = append(pending, entry)
	}

	// Capacity is checked against the de-duplicated count so that a
	// selection that collapses below the plate size still fits.
	scratch := *layout
	if len(pending) > scratch.Free() {
		return nil, errors.CapacityExceeded(fmt.Sprintf(
			"%d selected rows exceed the %d free wells of the %dx%d plate",
			len(pending), scratch.Free(), scratch.Rows, scratch.Cols))
	}

	for i := range pending {
		w, ok := scratch.Next()
		if !ok {
			return nil, errors.InternalError("plate cursor exhausted after capacity check")
		}
		pending[i].Well = w
	}
	return pending, nil
}

// DefaultSelection returns the indices of every definite failure in
// report order. Rows needing confirmation are excluded until the user
// opts them in.
func DefaultSelection(rows []report.ResultRow) []int {
	sel := make([]int, 0, len(rows))
	for _, r := range rows {
		if r.Failed() {
			sel = append(sel, r.Index)
		}
	}
	return sel
}
