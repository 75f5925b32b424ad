package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// FileRepository loads the catalog from a local CSV export.
type FileRepository struct {
	path string
}

// NewFileRepository returns a repository reading path on each call.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Entries parses the CSV file.
func (f *FileRepository) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()
	return ParseCSV(file)
}

// HTTPRepository downloads the catalog CSV from an object-store URL.
type HTTPRepository struct {
	url    string
	client *http.Client
}

// NewHTTPRepository returns a repository fetching url. A nil client gets a
// default with a one minute timeout.
func NewHTTPRepository(url string, client *http.Client) *HTTPRepository {
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	return &HTTPRepository{url: strings.TrimSpace(url), client: client}
}

// Entries downloads and parses the CSV blob.
func (h *HTTPRepository) Entries(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog download: new request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, */*")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog download: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return ParseCSV(resp.Body)
}
