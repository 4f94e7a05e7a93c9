package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ngsrerun/app"
	"ngsrerun/internal/config"
	"ngsrerun/internal/session"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App is the review UI: a localhost, single-session web front end over
// the rerun service.
type App struct {
	router    *chi.Mux
	svc       *app.RerunService
	cfg       *config.Config
	templates *template.Template

	// One session per process. The mutex serializes handler access;
	// there is no multi-user state.
	mu   sync.Mutex
	sess *session.Session
}

// NewApp creates the UI application and resumes the latest session
// snapshot if one exists.
func NewApp(cfg *config.Config, svc *app.RerunService) (*App, error) {
	funcMap := template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
		"f2":  func(f float64) string { return fmt.Sprintf("%.2f", f) },
		"add": func(a, b int) int { return a + b },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		svc:       svc,
		cfg:       cfg,
		templates: templates,
	}

	if sess, err := svc.Store().Latest(); err == nil && sess != nil {
		log.Printf("[ui] resuming session %s (updated %s)", sess.ID, sess.UpdatedAt.Format("2006-01-02 15:04:05"))
		a.sess = sess
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", http.StripPrefix("/", staticFS))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/upload", a.handleUpload)
	a.router.Get("/review", a.handleReview)
	a.router.Post("/toggle/{idx}", a.handleToggle)
	a.router.Post("/selection", a.handleSelection)
	a.router.Post("/plate", a.handlePlateBarcode)
	a.router.Get("/download", a.handleDownload)
	a.router.Post("/reset", a.handleReset)
	a.router.Get("/help", a.handleHelp)
}

// Start runs the HTTP server until it fails.
func (a *App) Start() error {
	addr := ":" + a.cfg.Server.Port
	log.Printf("[ui] listening on http://localhost%s", addr)
	return http.ListenAndServe(addr, a.router)
}

// render executes a page template, logging failures.
func (a *App) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[ui] template %s failed: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
