// Command rerun-cli converts a genotyping results report into a rerun
// manifest without the browser review step. Every definite failure is
// selected; rows needing confirmation are reported and skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ngsrerun/adapters/writers"
	"ngsrerun/app"
	"ngsrerun/domain/manifest"
	"ngsrerun/internal/config"
	"ngsrerun/internal/session"
)

func main() {
	var (
		reportPath = flag.String("report", "", "results report (.xlsx/.csv/.tsv), required")
		stage3Path = flag.String("stage3", "", "companion Stage3 CSV (optional)")
		outPath    = flag.String("out", "rerun_manifest.csv", "output manifest path (.csv or .xlsx)")
		barcode    = flag.String("plate", "", "rerun plate barcode (default derived from session)")
	)
	flag.Parse()

	if *reportPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*reportPath, *stage3Path, *outPath, *barcode); err != nil {
		log.Fatal(err)
	}
}

func run(reportPath, stage3Path, outPath, barcode string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := session.NewStore(cfg.Paths.WorkDir)
	if err != nil {
		return fmt.Errorf("failed to initialize work directory: %w", err)
	}

	svc := app.NewRerunService(store, cfg.Plate)

	sess, err := svc.LoadSession(context.Background(), reportPath, stage3Path)
	if err != nil {
		return err
	}

	if len(sess.Issues) > 0 {
		for _, issue := range sess.Issues {
			fmt.Fprintf(os.Stderr, "line %d: %s\n", issue.Line, issue.Message)
		}
		return fmt.Errorf("%d content issues found, fix the report and retry", len(sess.Issues))
	}

	if barcode != "" {
		sess.PlateBarcode = barcode
	}

	if n := sess.Summary.NeedsConfirm; n > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d rows have unrecognized calls and were skipped; review them in the web UI\n", n)
	}
	for _, w := range sess.Warnings {
		fmt.Fprintln(os.Stderr, "warning: "+w)
	}

	entries, err := svc.BuildManifest(sess)
	if err != nil {
		return err
	}

	if err := writeOut(outPath, sess.PlateBarcode, entries); err != nil {
		return err
	}
	fmt.Printf("wrote %d manifest rows to %s\n", len(entries), outPath)
	return nil
}

func writeOut(path, plateBarcode string, entries []manifest.Entry) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writers.SaveXLSX(path, plateBarcode, entries)
	}
	return writers.SaveCSV(path, plateBarcode, entries)
}
