package ui

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inequalitymap/internal"
	"inequalitymap/ui/services"
)

// Server represents the web server for the dashboard
type Server struct {
	router    *gin.Engine
	templates *template.Template
	files     fs.FS
	nav       *Navigation
	data      *services.DataService
	render    *services.RenderService
	logger    *internal.Logger
}

// ServerOptions configures NewServer
type ServerOptions struct {
	// Files holds ui/templates, ui/static and ui/pages
	Files          fs.FS
	Data           *services.DataService
	Logger         *internal.Logger
	GinMode        string
	ShowEvaluation bool
}

// NewServer parses templates and pages and wires routes
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	nav, err := LoadNavigation(opts.Files, "ui/pages", opts.ShowEvaluation)
	if err != nil {
		return nil, err
	}

	templates, err := parseTemplates(opts.Files, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		templates: templates,
		files:     opts.Files,
		nav:       nav,
		data:      opts.Data,
		render:    services.NewRenderService(templates, logger),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// parseTemplates parses every template file under ui/templates, naming each
// by its path relative to that directory
func parseTemplates(files fs.FS, logger *internal.Logger) (*template.Template, error) {
	templatesFS, err := fs.Sub(files, "ui/templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	root, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob root templates: %w", err)
	}
	nested, err := fs.Glob(templatesFS, "*/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob nested templates: %w", err)
	}
	names := append(root, nested...)
	logger.Debug("[TemplateInit] Found %d template files: %v", len(names), names)

	templates := template.New("").Funcs(templateFuncs())
	for _, name := range names {
		content, err := fs.ReadFile(templatesFS, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		if _, err := templates.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}
	return templates, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/pages/:page", s.handlePage)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/years", s.handleYears)
	api.GET("/ranges", s.handleRanges)
	api.GET("/metrics", s.handleMetrics)
	api.GET("/panels/:family", s.handlePanel)
	api.GET("/panels/:family/export.xlsx", s.handlePanelExport)

	s.router.NoRoute(s.handleNotFound)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// WarmUp loads the dataset once in the background so the first visitor to
// the data page does not pay for the fetch. A failure is only logged; the
// next data request tries again.
func (s *Server) WarmUp(ctx context.Context) {
	go func() {
		start := time.Now()
		if _, err := s.data.Snapshot(ctx); err != nil {
			s.logger.Warn("[WarmUp] dataset not loaded at startup: %v", err)
			return
		}
		s.logger.Info("[WarmUp] dataset ready after %s", time.Since(start).Round(time.Millisecond))
	}()
}

// Start starts the web server and blocks until ctx is cancelled or the
// listener fails
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting dashboard on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down dashboard")
		return srv.Shutdown(shutdownCtx)
	}
}
