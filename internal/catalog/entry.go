package catalog

import (
	"context"
	"fmt"
)

// Entry is one reference game. Optional numeric metadata is nil when the
// source has no value.
type Entry struct {
	ID               int      `db:"id" json:"id"`
	Name             string   `db:"name" json:"name"`
	YearPublished    *int     `db:"year_published" json:"year_published,omitempty"`
	ComplexityWeight *float64 `db:"complexity_weight" json:"complexity_weight,omitempty"`
	AverageRating    *float64 `db:"average_rating" json:"average_rating,omitempty"`
	ImagePath        string   `db:"image_path" json:"image_path,omitempty"`
}

// Link returns the BoardGameGeek page for the entry.
func (e Entry) Link() string {
	return fmt.Sprintf("https://boardgamegeek.com/boardgame/%d", e.ID)
}

// Repository yields the full catalog. Implementations may cache after the
// first successful load.
type Repository interface {
	Entries(ctx context.Context) ([]Entry, error)
}

// MemoryRepository serves a fixed slice of entries.
type MemoryRepository struct {
	entries []Entry
}

// NewMemoryRepository returns a repository over a copy of entries.
func NewMemoryRepository(entries []Entry) *MemoryRepository {
	return &MemoryRepository{entries: append([]Entry(nil), entries...)}
}

// Entries returns a copy of the configured entries.
func (m *MemoryRepository) Entries(context.Context) ([]Entry, error) {
	return append([]Entry(nil), m.entries...), nil
}
