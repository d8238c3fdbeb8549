package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"inequalitymap/ui/services"
)

// PageKind separates static markdown pages from the interactive data page
type PageKind string

const (
	PageKindStatic PageKind = "static"
	PageKindData   PageKind = "data"
)

// Page is one navigation choice
type Page struct {
	Slug     string   `yaml:"slug"`
	Nav      string   `yaml:"nav"`
	Header   string   `yaml:"header"`
	File     string   `yaml:"file"`
	Kind     PageKind `yaml:"kind"`
	Optional bool     `yaml:"optional"`

	Body template.HTML `yaml:"-"`
}

// Navigation is the closed set of pages the sidebar offers, in order
type Navigation struct {
	Title string `yaml:"title"`
	Site  string `yaml:"site"`
	Pages []Page `yaml:"pages"`
}

// LoadNavigation reads pages.yaml from dir in fsys and renders every static
// page body once. Optional pages are dropped unless includeOptional is set.
func LoadNavigation(fsys fs.FS, dir string, includeOptional bool) (*Navigation, error) {
	raw, err := fs.ReadFile(fsys, path.Join(dir, "pages.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read page manifest: %w", err)
	}

	var manifest Navigation
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse page manifest: %w", err)
	}

	nav := &Navigation{Title: manifest.Title, Site: manifest.Site}
	seen := make(map[string]bool, len(manifest.Pages))
	for _, page := range manifest.Pages {
		if page.Slug == "" || seen[page.Slug] {
			return nil, fmt.Errorf("page manifest has an empty or repeated slug %q", page.Slug)
		}
		seen[page.Slug] = true

		if page.Optional && !includeOptional {
			continue
		}
		if page.Kind == "" {
			page.Kind = PageKindStatic
		}

		if page.Kind == PageKindStatic {
			body, err := fs.ReadFile(fsys, path.Join(dir, page.File))
			if err != nil {
				return nil, fmt.Errorf("failed to read page %s: %w", page.Slug, err)
			}
			page.Body = services.Markdown(string(body))
		}
		nav.Pages = append(nav.Pages, page)
	}

	if len(nav.Pages) == 0 {
		return nil, fmt.Errorf("page manifest lists no pages")
	}
	return nav, nil
}

// Route resolves a navigation selection. Selections outside the manifest
// report false and are answered with a not-found page.
func (n *Navigation) Route(slug string) (Page, bool) {
	for _, p := range n.Pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// Home is the first page of the manifest
func (n *Navigation) Home() Page {
	return n.Pages[0]
}

// DataPage returns the interactive page, if the manifest has one
func (n *Navigation) DataPage() (Page, bool) {
	for _, p := range n.Pages {
		if p.Kind == PageKindData {
			return p, true
		}
	}
	return Page{}, false
}
