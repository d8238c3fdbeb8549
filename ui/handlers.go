package ui

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal/errors"
	"inequalitymap/ui/middleware"
	"inequalitymap/ui/services"
)

// handleIndex sends visitors to the first page of the navigation
func (s *Server) handleIndex(c *gin.Context) {
	c.Redirect(http.StatusFound, "/pages/"+s.nav.Home().Slug)
}

// handlePage renders the page chosen in the navigation
func (s *Server) handlePage(c *gin.Context) {
	slug := c.Param("page")
	page, ok := s.nav.Route(slug)
	if !ok {
		s.renderNotFound(c, slug)
		return
	}

	if page.Kind == PageKindData {
		s.handleDataPage(c, page)
		return
	}

	data := s.pageData(page.Slug)
	data["Page"] = page
	s.renderTemplate(c, http.StatusOK, "page.html", data)
}

// handleDataPage renders both map panels for the query's selections
func (s *Server) handleDataPage(c *gin.Context, page Page) {
	state, err := parseDataState(c)
	if err != nil {
		s.renderError(c, page, err)
		return
	}

	view, err := s.data.Page(c.Request.Context(), state)
	if err != nil {
		s.renderError(c, page, err)
		return
	}

	data := s.pageData(page.Slug)
	data["Page"] = page
	data["View"] = view
	s.renderTemplate(c, http.StatusOK, "data.html", data)
}

// handleNotFound answers unknown routes; API paths get JSON
func (s *Server) handleNotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		s.respondError(c, errors.NotFound("route "+c.Request.URL.Path))
		return
	}
	s.renderNotFound(c, strings.TrimPrefix(c.Request.URL.Path, "/pages/"))
}

func (s *Server) renderNotFound(c *gin.Context, requested string) {
	data := s.pageData("")
	data["Requested"] = requested
	if page, ok := s.nav.DataPage(); ok {
		data["DataPage"] = page
	}
	s.renderTemplate(c, http.StatusNotFound, "not_found.html", data)
}

// renderError shows a failed data request inside the page layout so the
// navigation keeps working
func (s *Server) renderError(c *gin.Context, page Page, err error) {
	status := errors.HTTPStatus(err)
	s.logger.Warn("[Pages] %s failed with %d (id=%s): %v", page.Slug, status, middleware.GetRequestID(c), err)
	_ = c.Error(err)

	problem := "The dataset could not be loaded."
	if errors.HasCode(err, errors.CodeInvalidInput) {
		problem = "The selection in this link is not valid."
	}

	data := s.pageData(page.Slug)
	data["Page"] = page
	data["Problem"] = problem
	data["Error"] = err.Error()
	s.renderTemplate(c, status, "error.html", data)
}

// parseDataState reads every panel's selection from the query string
func parseDataState(c *gin.Context) (services.DataState, error) {
	rates, err := parsePanelQuery(c, ownership.Rates)
	if err != nil {
		return services.DataState{}, err
	}
	ratios, err := parsePanelQuery(c, ownership.Ratios)
	if err != nil {
		return services.DataState{}, err
	}
	return services.DataState{Rates: rates, Ratios: ratios}, nil
}

// parsePanelQuery reads <family> and <family>_year
func parsePanelQuery(c *gin.Context, family ownership.Family) (services.PanelState, error) {
	return services.ParsePanelState(family, c.Query(family.Key), c.Query(family.Key+"_year"))
}
