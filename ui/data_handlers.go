package ui

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal/errors"
	"inequalitymap/ui/middleware"
	"inequalitymap/ui/services"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleStatus reports whether the dataset is loaded without triggering a load
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.data.Status())
}

func (s *Server) handleYears(c *gin.Context) {
	snap, err := s.data.Snapshot(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"years": snap.Years,
		"count": len(snap.Years),
	})
}

// handleRanges returns observed per-column ranges next to the fixed bounds
// the maps actually use
func (s *Server) handleRanges(c *gin.Context) {
	snap, err := s.data.Snapshot(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	bounds := make(map[string]ownership.Bounds, len(ownership.Families))
	for _, f := range ownership.Families {
		bounds[f.Key] = f.Bounds
	}

	c.JSON(http.StatusOK, gin.H{
		"observed": snap.Ranges,
		"bounds":   bounds,
	})
}

type familyResponse struct {
	Key        string             `json:"key"`
	Title      string             `json:"title"`
	Metrics    []ownership.Metric `json:"metrics"`
	Bounds     ownership.Bounds   `json:"bounds"`
	ColorScale string             `json:"colorscale"`
}

// handleMetrics lists the metric registry
func (s *Server) handleMetrics(c *gin.Context) {
	families := make([]familyResponse, 0, len(ownership.Families))
	for _, f := range ownership.Families {
		families = append(families, familyResponse{
			Key:        f.Key,
			Title:      f.Title,
			Metrics:    f.Metrics,
			Bounds:     f.Bounds,
			ColorScale: f.ColorScale,
		})
	}
	c.JSON(http.StatusOK, gin.H{"families": families})
}

type panelResponse struct {
	Family   string               `json:"family"`
	Metric   ownership.Metric     `json:"metric"`
	Year     int                  `json:"year"`
	Years    []int                `json:"years"`
	Title    string               `json:"title"`
	Warning  string               `json:"warning,omitempty"`
	Figure   *services.Choropleth `json:"figure,omitempty"`
	Points   []ownership.Point    `json:"points"`
	Observed ownership.Range      `json:"observed"`
}

// handlePanel evaluates one panel. htmx swaps get the HTML fragment,
// everyone else gets JSON.
func (s *Server) handlePanel(c *gin.Context) {
	panel, err := s.panelFromRequest(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if c.GetHeader("HX-Request") == "true" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, s.render.RenderPanelFragment(panel))
		return
	}

	points := panel.Points
	if points == nil {
		points = []ownership.Point{}
	}
	c.JSON(http.StatusOK, panelResponse{
		Family:   panel.Family,
		Metric:   panel.Metric,
		Year:     panel.Year,
		Years:    panel.Years,
		Title:    panel.Title,
		Warning:  panel.Warning,
		Figure:   panel.Chart,
		Points:   points,
		Observed: panel.Observed,
	})
}

// panelFromRequest resolves :family and the family's query parameters
func (s *Server) panelFromRequest(c *gin.Context) (services.PanelView, error) {
	family, ok := ownership.FamilyByKey(c.Param("family"))
	if !ok {
		return services.PanelView{}, errors.NotFound(fmt.Sprintf("metric family %q", c.Param("family")))
	}

	state, err := parsePanelQuery(c, family)
	if err != nil {
		return services.PanelView{}, err
	}

	return s.data.Panel(c.Request.Context(), family, state)
}

// respondError maps err onto a status code and writes it in the shape the
// caller asked for
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	s.logger.Warn("[API] %s failed with %d (id=%s): %v", c.Request.URL.Path, status, middleware.GetRequestID(c), err)
	_ = c.Error(err)

	if c.GetHeader("HX-Request") == "true" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(status, `<div class="alert alert-error">%s</div>`, template.HTMLEscapeString(err.Error()))
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
