package listing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wouterstultiens/boardgame-finder/internal/services"
)

// keyLength is the number of hex characters kept from the link hash.
const keyLength = 20

// Listing is one marketplace advertisement.
type Listing struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	PriceType   string    `json:"price_type"`
	Link        string    `json:"link"`
	City        string    `json:"city"`
	DistanceKM  int       `json:"distance_km"`
	Date        time.Time `json:"date"`
	Images      []string  `json:"images,omitempty"`
	ImageTexts  []string  `json:"image_texts,omitempty"`
}

// Key returns the stable identifier for the listing.
func (l Listing) Key() string { return Key(l.Link) }

// Key hashes link into the stable listing identifier.
func Key(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])[:keyLength]
}

// Source yields raw listings.
type Source interface {
	Listings(ctx context.Context) ([]Listing, error)
}

// FileSource reads a JSON array of listings from disk.
type FileSource struct {
	path  string
	limit int
}

// NewFileSource returns a source over path. A positive limit keeps only the
// first limit listings.
func NewFileSource(path string, limit int) *FileSource {
	return &FileSource{path: path, limit: limit}
}

// Listings implements Source. Entries without a link are dropped.
func (s *FileSource) Listings(ctx context.Context) ([]Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "listings", "read source", s.path, err)
	}
	var raw []Listing
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, services.Wrap(services.ErrValidation, "listings", "decode source", s.path, err)
	}

	out := make([]Listing, 0, len(raw))
	for _, l := range raw {
		l.Link = strings.TrimSpace(l.Link)
		if l.Link == "" {
			continue
		}
		out = append(out, l)
		if s.limit > 0 && len(out) == s.limit {
			break
		}
	}
	return out, nil
}

// StaticSource serves a fixed slice of listings.
type StaticSource []Listing

// Listings implements Source.
func (s StaticSource) Listings(context.Context) ([]Listing, error) {
	return append([]Listing(nil), s...), nil
}

// WriteFile stores listings as an indented JSON array.
func WriteFile(path string, listings []Listing) error {
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode listings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write listings: %w", err)
	}
	return nil
}
