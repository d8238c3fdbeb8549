package ui

import (
	"io/fs"
	"net/http"

	"inequalitymap/ui/middleware"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(s.logger))

	staticFS, err := fs.Sub(s.files, "ui/static")
	if err != nil {
		s.logger.Error("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.logger.Debug("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
}
