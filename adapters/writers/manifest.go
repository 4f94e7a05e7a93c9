package writers

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"ngsrerun/domain/manifest"
	"ngsrerun/internal/errors"
)

// Header is the custom-manifest column layout the downstream pipeline
// expects. Sample no auto-increments from 1.
var Header = []string{
	"Sample no", "plateBarcode", "well", "sampleBarcode",
	"Assay", "clientName", "sampleName", "alleleSymbol",
}

// entryRecord flattens a manifest entry into the output column order.
func entryRecord(n int, plateBarcode string, e manifest.Entry) []string {
	return []string{
		strconv.Itoa(n),
		plateBarcode,
		e.Well.Name(),
		e.Sample,
		e.Assay,
		e.ClientName,
		e.SampleName,
		e.AlleleSymbol,
	}
}

// WriteCSV serializes the manifest entries as the pipeline's
// comma-delimited custom manifest.
func WriteCSV(w io.Writer, plateBarcode string, entries []manifest.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "failed to write manifest header")
	}
	for i, e := range entries {
		if err := cw.Write(entryRecord(i+1, plateBarcode, e)); err != nil {
			return errors.Wrapf(err, "failed to write manifest row %d", i+1)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the manifest to a file, creating or truncating it.
func SaveCSV(path, plateBarcode string, entries []manifest.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create manifest file")
	}
	defer f.Close()
	return WriteCSV(f, plateBarcode, entries)
}

// WriteXLSX serializes the manifest entries as a single-sheet workbook.
func WriteXLSX(w io.Writer, plateBarcode string, entries []manifest.Entry) error {
	f, err := buildWorkbook(plateBarcode, entries)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write manifest workbook")
	}
	return nil
}

// SaveXLSX writes the manifest workbook to a file.
func SaveXLSX(path, plateBarcode string, entries []manifest.Entry) error {
	f, err := buildWorkbook(plateBarcode, entries)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save manifest workbook")
	}
	return nil
}

func buildWorkbook(plateBarcode string, entries []manifest.Entry) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Sheet1"

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, errors.Wrap(err, "failed to write manifest header")
		}
	}
	for r, e := range entries {
		for c, v := range entryRecord(r+1, plateBarcode, e) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, errors.Wrapf(err, "failed to write manifest row %d", r+1)
			}
		}
	}
	return f, nil
}
