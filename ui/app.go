package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"optiscope/adapters/excel"
	"optiscope/internal"
	"optiscope/internal/analysis"
	"optiscope/internal/config"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App serves the upload form, the HTML report and the JSON API
type App struct {
	router    *chi.Mux
	config    *config.Config
	loader    *excel.Loader
	analyzer  *analysis.Analyzer
	limiter   *semaphore.Weighted
	templates *template.Template
	logger    *internal.Logger
}

// NewApp creates the web application from loaded configuration
func NewApp(cfg *config.Config, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	funcMap := template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router: chi.NewRouter(),
		config: cfg,
		loader: excel.NewLoader(excel.DefaultLoaderConfig(), logger),
		analyzer: analysis.NewAnalyzer(
			analysis.WithLogger(logger),
			analysis.WithTopValues(cfg.Analysis.TopValues),
			analysis.WithAnnualizationFactor(cfg.Analysis.AnnualizationFactor),
		),
		limiter:   semaphore.NewWeighted(cfg.Server.MaxConcurrent),
		templates: templates,
		logger:    logger.With("Server"),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/analyze", a.handleAnalyzePage)
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", a.handleAnalyzeAPI)
	})
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.config.Server.Port
	a.logger.Info("starting optiscope server on %s (max %d concurrent analyses)", addr, a.config.Server.MaxConcurrent)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
