package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"inequalitymap/internal"
	"inequalitymap/internal/errors"
)

// HTTPReader fetches a published spreadsheet export with a single GET.
// There is no retry: a failed fetch fails the caller.
type HTTPReader struct {
	url    string
	client *http.Client
	parser tableParser
}

// NewHTTPReader creates a reader for rawURL. A zero timeout means the
// request is bounded only by the caller's context.
func NewHTTPReader(rawURL string, timeout time.Duration, logger *internal.Logger) *HTTPReader {
	return &HTTPReader{
		url:    rawURL,
		client: &http.Client{Timeout: timeout},
		parser: tableParser{format: formatFromURL(rawURL), logger: logger},
	}
}

// Describe returns the URL without its query string
func (r *HTTPReader) Describe() string {
	if u, err := url.Parse(r.url); err == nil {
		return u.Scheme + "://" + u.Host + u.Path
	}
	return r.url
}

// ReadTable downloads and parses the export
func (r *HTTPReader) ReadTable(ctx context.Context) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, errors.FetchFailed(r.Describe(), err)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.FetchFailed(r.Describe(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.FetchFailed(r.Describe(), fmt.Errorf("unexpected status %s", resp.Status))
	}

	table, err := r.parser.parse(resp.Body)
	if err != nil {
		return nil, errors.FetchFailed(r.Describe(), err)
	}
	r.parser.logger.Info("[HTTPReader] fetched %d rows from %s in %s", len(table.Rows), r.Describe(), time.Since(start).Round(time.Millisecond))
	return table, nil
}

// formatFromURL recognises Google Sheets "output=xlsx" exports and .xlsx paths
func formatFromURL(rawURL string) Format {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatCSV
	}
	if strings.EqualFold(u.Query().Get("output"), "xlsx") {
		return FormatXLSX
	}
	if strings.EqualFold(path.Ext(u.Path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}
