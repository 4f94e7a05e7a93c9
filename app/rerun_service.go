package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"ngsrerun/adapters/excel"
	"ngsrerun/adapters/writers"
	"ngsrerun/domain/manifest"
	"ngsrerun/domain/plate"
	"ngsrerun/domain/report"
	"ngsrerun/domain/stage"
	"ngsrerun/internal/config"
	"ngsrerun/internal/errors"
	"ngsrerun/internal/qc"
	"ngsrerun/internal/session"
	"ngsrerun/internal/validation"
)

// RerunService wires the loader, transformer and writers together: it
// turns uploaded input files into a reviewed session and a session
// into a rerun manifest.
type RerunService struct {
	store    *session.Store
	plateCfg config.PlateConfig
}

// NewRerunService creates the service.
func NewRerunService(store *session.Store, plateCfg config.PlateConfig) *RerunService {
	return &RerunService{store: store, plateCfg: plateCfg}
}

// Layout returns a fresh layout of the configured target plate.
func (s *RerunService) Layout() (*plate.Layout, error) {
	return plate.NewLayout(s.plateCfg.Rows, s.plateCfg.Cols)
}

// Store exposes the session store for snapshot handling.
func (s *RerunService) Store() *session.Store {
	return s.store
}

// LoadSession parses the report and optional Stage3 file into a new
// session. The two files load concurrently; the call itself is
// synchronous. When the report contains content issues (non-ASCII
// characters) the session carries the issue list and no rows: the
// user fixes the file and re-uploads.
func (s *RerunService) LoadSession(ctx context.Context, reportPath, stage3Path string) (*session.Session, error) {
	sess := session.New()
	sess.ReportFile = reportPath
	sess.Stage3File = stage3Path
	sess.PlateBarcode = defaultPlateBarcode(sess.ID)

	var (
		rows     []report.ResultRow
		issues   []validation.Issue
		warnings []string
		md       stage.Metadata
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, issues, warnings, err = s.loadReport(reportPath)
		return err
	})
	if stage3Path != "" {
		g.Go(func() error {
			var err error
			md, err = s.loadStage3(stage3Path)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sess.Issues = issues
	sess.Warnings = warnings
	if len(issues) > 0 {
		log.Printf("[RerunService] report has %d content issues, parsing withheld", len(issues))
		return sess, nil
	}

	sess.Rows = rows
	sess.Metadata = md
	sess.Summary = qc.Summarize(rows)
	sess.Selection = manifest.DefaultSelection(rows)

	layout, err := s.Layout()
	if err != nil {
		return nil, err
	}
	log.Printf("[RerunService] session %s loaded: %d rows, %d failed, %d to confirm, plate capacity %d",
		sess.ID, len(rows), sess.Summary.Failed, sess.Summary.NeedsConfirm, layout.Capacity())

	if err := s.store.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// loadReport reads, content-checks and parses the results report.
func (s *RerunService) loadReport(path string) ([]report.ResultRow, []validation.Issue, []string, error) {
	reader := excel.NewDataReader(path)

	if reader.IsWorkbook() {
		t, warnings, err := reader.ReadTable()
		if err != nil {
			return nil, nil, nil, err
		}
		rows, err := report.Parse(t)
		return rows, nil, warnings, err
	}

	content, det, err := excel.ReadText(path)
	if err != nil {
		return nil, nil, nil, err
	}
	var warnings []string
	if det.LowConfidence {
		warnings = append(warnings, encodingWarning(det.Charset, det.Confidence))
	}

	if issues := validation.CheckNonASCII(content); len(issues) > 0 {
		return nil, issues, warnings, nil
	}

	t, err := excel.ParseDelimited(content)
	if err != nil {
		return nil, nil, warnings, err
	}
	rows, err := report.Parse(t)
	return rows, nil, warnings, err
}

// loadStage3 parses the companion per-sample stage metadata CSV.
func (s *RerunService) loadStage3(path string) (stage.Metadata, error) {
	t, _, err := excel.NewDataReader(path).ReadTable()
	if err != nil {
		return nil, errors.Wrap(err, "stage3 file")
	}
	md, err := stage.Parse(t)
	if err != nil {
		return nil, err
	}
	log.Printf("[RerunService] stage3 metadata loaded for %d samples", len(md))
	return md, nil
}

// BuildManifest runs the transformer against the session's current
// selection.
func (s *RerunService) BuildManifest(sess *session.Session) ([]manifest.Entry, error) {
	layout, err := s.Layout()
	if err != nil {
		return nil, err
	}
	return manifest.Transform(sess.Rows, sess.Selection, layout, sess.Metadata)
}

// WriteManifestCSV transforms and streams the manifest as CSV. Nothing
// is written when the transform fails.
func (s *RerunService) WriteManifestCSV(w io.Writer, sess *session.Session) error {
	entries, err := s.BuildManifest(sess)
	if err != nil {
		return err
	}
	return writers.WriteCSV(w, sess.PlateBarcode, entries)
}

// WriteManifestXLSX transforms and streams the manifest as a workbook.
func (s *RerunService) WriteManifestXLSX(w io.Writer, sess *session.Session) error {
	entries, err := s.BuildManifest(sess)
	if err != nil {
		return err
	}
	return writers.WriteXLSX(w, sess.PlateBarcode, entries)
}

// SaveManifest transforms and writes the manifest into the work
// directory, returning the file path.
func (s *RerunService) SaveManifest(sess *session.Session, format string) (string, error) {
	entries, err := s.BuildManifest(sess)
	if err != nil {
		return "", err
	}

	switch format {
	case "xlsx":
		path := s.store.ManifestPath(sess.ID, "rerun_manifest.xlsx")
		return path, writers.SaveXLSX(path, sess.PlateBarcode, entries)
	case "csv", "":
		path := s.store.ManifestPath(sess.ID, "rerun_manifest.csv")
		return path, writers.SaveCSV(path, sess.PlateBarcode, entries)
	default:
		return "", errors.InvalidInput("unsupported manifest format " + format)
	}
}

func encodingWarning(charset string, confidence int) string {
	return fmt.Sprintf(
		"character encoding detected as %s with low confidence (%d%%); proceeding with best guess",
		charset, confidence)
}

// defaultPlateBarcode derives a rerun plate barcode from the session
// ID; the user can override it on the review page.
func defaultPlateBarcode(id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return "RERUN-" + short
}
