package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"inequalitymap/internal"
)

// ProfilingApp serves net/http/pprof on a port of its own, away from the
// public router
type ProfilingApp struct {
	router *chi.Mux
	logger *internal.Logger
}

// NewProfilingApp mounts the pprof handlers under /debug
func NewProfilingApp(logger *internal.Logger) *ProfilingApp {
	app := &ProfilingApp{
		router: chi.NewRouter(),
		logger: logger,
	}

	app.router.Use(chimw.RealIP)
	app.router.Use(chimw.Recoverer)
	app.router.Mount("/debug", chimw.Profiler())
	app.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/pprof/", http.StatusFound)
	})

	return app
}

// Handler exposes the router, mainly for tests
func (a *ProfilingApp) Handler() http.Handler {
	return a.router
}

// Start serves until ctx is cancelled
func (a *ProfilingApp) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Profiling on http://%s/debug/pprof/", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
