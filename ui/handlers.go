package ui

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ngsrerun/domain/manifest"
	"ngsrerun/domain/report"
	"ngsrerun/internal/errors"
	"ngsrerun/internal/qc"
	"ngsrerun/internal/session"
)

// rowView is one line of the review grid.
type rowView struct {
	Index    int
	Sample   string
	Assay    string
	Plate    string
	Well     string
	Call     string
	Genotype string
	Reason   string
	Selected bool
	Flagged  bool
}

// reviewData feeds the review page template.
type reviewData struct {
	Sess          *session.Session
	Rows          []rowView
	Summary       qc.Summary
	Entries       []manifest.Entry
	TransformErr  string
	Capacity      int
	SelectedCount int
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	sess := a.sess
	a.mu.Unlock()

	a.render(w, "index.html", map[string]interface{}{
		"HasSession": sess != nil,
	})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.cfg.Upload.MaxSizeMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		a.renderError(w, fmt.Sprintf("upload exceeds the %dMB limit", a.cfg.Upload.MaxSizeMB))
		return
	}

	uploadID := uuid.NewString()

	reportPath, err := a.saveUpload(r, "report", uploadID)
	if err != nil {
		a.renderError(w, "a results report file is required")
		return
	}

	stage3Path, err := a.saveUpload(r, "stage3", uploadID)
	if err != nil {
		stage3Path = "" // companion file is optional
	}

	sess, err := a.svc.LoadSession(r.Context(), reportPath, stage3Path)
	if err != nil {
		log.Printf("[ui] upload failed: %v", err)
		a.renderError(w, err.Error())
		return
	}

	a.mu.Lock()
	a.sess = sess
	a.mu.Unlock()

	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

// saveUpload stores one multipart file into the work directory and
// returns its path.
func (a *App) saveUpload(r *http.Request, field, uploadID string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if !validUploadName(header.Filename) {
		return "", errors.InvalidInput("only .xlsx, .csv, .tsv and .txt files are accepted")
	}

	path := a.svc.Store().UploadPath(uploadID, header.Filename)
	if err := writeUpload(path, file); err != nil {
		return "", err
	}
	log.Printf("[ui] stored upload %s (%d bytes)", path, header.Size)
	return path, nil
}

func validUploadName(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range []string{".xlsx", ".xls", ".csv", ".tsv", ".txt"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func writeUpload(path string, src multipart.File) error {
	dst, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to store upload")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(err, "failed to store upload")
	}
	return nil
}

func (a *App) handleReview(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if len(a.sess.Issues) > 0 {
		a.render(w, "issues.html", map[string]interface{}{
			"Issues": a.sess.Issues,
			"File":   a.sess.ReportFile,
		})
		return
	}

	data := reviewData{
		Sess:          a.sess,
		Summary:       a.sess.Summary,
		SelectedCount: len(a.sess.Selection),
	}

	layout, err := a.svc.Layout()
	if err == nil {
		data.Capacity = layout.Capacity()
	}

	for _, row := range a.sess.Rows {
		if row.Call == report.CallPass && !row.Failed() {
			continue // passed rows are never rerun candidates
		}
		data.Rows = append(data.Rows, rowView{
			Index:    row.Index,
			Sample:   row.Sample,
			Assay:    row.Assay,
			Plate:    row.Plate,
			Well:     row.Well,
			Call:     string(row.Call),
			Genotype: row.Genotype,
			Reason:   row.Reason,
			Selected: a.sess.Selected(row.Index),
			Flagged:  row.NeedsConfirm(),
		})
	}

	entries, err := a.svc.BuildManifest(a.sess)
	if err != nil {
		data.TransformErr = err.Error()
	} else {
		data.Entries = entries
	}

	a.render(w, "review.html", data)
}

func (a *App) handleToggle(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		http.Error(w, "bad row index", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	if a.sess != nil && idx >= 0 && idx < len(a.sess.Rows) {
		a.sess.Toggle(idx)
		if err := a.svc.Store().Save(a.sess); err != nil {
			log.Printf("[ui] snapshot save failed: %v", err)
		}
	}
	a.mu.Unlock()

	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

func (a *App) handleSelection(w http.ResponseWriter, r *http.Request) {
	action := r.FormValue("action")

	a.mu.Lock()
	if a.sess != nil {
		switch action {
		case "failed":
			a.sess.SetSelection(manifest.DefaultSelection(a.sess.Rows))
		case "all":
			sel := manifest.DefaultSelection(a.sess.Rows)
			for _, row := range a.sess.Rows {
				if row.NeedsConfirm() {
					sel = append(sel, row.Index)
				}
			}
			a.sess.SetSelection(sel)
		case "clear":
			a.sess.SetSelection(nil)
		}
		if err := a.svc.Store().Save(a.sess); err != nil {
			log.Printf("[ui] snapshot save failed: %v", err)
		}
	}
	a.mu.Unlock()

	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

func (a *App) handlePlateBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(r.FormValue("plate_barcode"))

	a.mu.Lock()
	if a.sess != nil && barcode != "" {
		a.sess.PlateBarcode = barcode
		if err := a.svc.Store().Save(a.sess); err != nil {
			log.Printf("[ui] snapshot save failed: %v", err)
		}
	}
	a.mu.Unlock()

	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

func (a *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	sess := a.sess
	a.mu.Unlock()

	if sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	// Transform first so a capacity error never yields a partial file.
	if _, err := a.svc.BuildManifest(sess); err != nil {
		a.renderError(w, err.Error())
		return
	}

	var err error
	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="rerun_manifest.xlsx"`)
		err = a.svc.WriteManifestXLSX(w, sess)
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="rerun_manifest.csv"`)
		err = a.svc.WriteManifestCSV(w, sess)
	}
	if err != nil {
		log.Printf("[ui] manifest download failed: %v", err)
	}
}

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	if a.sess != nil {
		if err := a.svc.Store().Delete(a.sess.ID); err != nil {
			log.Printf("[ui] snapshot delete failed: %v", err)
		}
		a.sess = nil
	}
	a.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) renderError(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	a.render(w, "error.html", map[string]interface{}{
		"Message": message,
	})
}
