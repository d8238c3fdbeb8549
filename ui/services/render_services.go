package services

import (
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"inequalitymap/internal"
)

type RenderService struct {
	templates *template.Template
	logger    *internal.Logger
}

func NewRenderService(templates *template.Template, logger *internal.Logger) *RenderService {
	return &RenderService{
		templates: templates,
		logger:    logger,
	}
}

// RenderPanelFragment renders one map panel for in-place updates
func (s *RenderService) RenderPanelFragment(panel PanelView) string {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, "fragments/panel.html", panel); err != nil {
		s.logger.Error("[RenderService] Failed to render panel %s: %v", panel.Family, err)
		return `<div class="panel-error">Error rendering map panel</div>`
	}

	return buf.String()
}

// Markdown converts markdown into trusted HTML. Inputs are the embedded
// pages and the fixed explanation texts, never user data.
func Markdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(src), p, renderer))
}
