package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wouterstultiens/boardgame-finder/internal/logging"
)

const maxPageBytes = 8 << 20

// Details is what a listing page adds on top of the search result.
type Details struct {
	Images      []string
	Description string
}

// DetailFetcher downloads listing pages and scrapes their details.
type DetailFetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewDetailFetcher returns a fetcher. A nil client gets a default one with
// timeout applied.
func NewDetailFetcher(client *http.Client, userAgent string, timeout time.Duration, logger *slog.Logger) *DetailFetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &DetailFetcher{
		client:    client,
		userAgent: userAgent,
		logger:    logging.NewComponentLogger(logger, "listing-details"),
	}
}

// Fetch downloads url and parses it. Any failure yields empty details.
func (f *DetailFetcher) Fetch(ctx context.Context, url string) Details {
	body, err := f.download(ctx, url)
	if err != nil {
		logging.WarnWithContext(f.logger, "listing details unavailable", "listing_details_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.String(logging.FieldImpact, "listing keeps its summary description and images"),
		)
		return Details{}
	}
	details, err := ParseDetails(body)
	if err != nil {
		f.logger.Debug("listing page not parseable", logging.String("url", url), logging.Error(err))
		return Details{}
	}
	return details
}

// Apply fills l with fetched details, keeping existing values where the page
// had none.
func (f *DetailFetcher) Apply(ctx context.Context, l Listing) Listing {
	d := f.Fetch(ctx, l.Link)
	if d.Description != "" {
		l.Description = d.Description
	}
	if len(d.Images) > 0 {
		l.Images = d.Images
	}
	return l
}

func (f *DetailFetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

// ParseDetails extracts the Product image gallery from the ld+json block and
// the full description text.
func ParseDetails(html []byte) (Details, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Details{}, err
	}

	var details Details
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if payload["@type"] != "Product" {
			return true
		}
		details.Images = productImages(payload["image"])
		return false
	})

	desc := doc.Find("div.Description-description").First()
	if desc.Length() > 0 {
		desc.Find("br").ReplaceWithHtml("\n")
		details.Description = strings.TrimSpace(desc.Text())
	}
	return details, nil
}

func productImages(value any) []string {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	images := make([]string, 0, len(raw))
	for _, img := range raw {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		if strings.HasPrefix(img, "//") {
			img = "https:" + img
		}
		images = append(images, img)
	}
	return images
}
