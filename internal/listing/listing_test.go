package listing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wouterstultiens/boardgame-finder/internal/services"
)

func TestKey(t *testing.T) {
	link := "https://www.marktplaats.nl/v/spellen/bordspellen/m2101234567-party-co"
	got := Key(link)
	if got != "aad6a87c5a2b94676442" {
		t.Fatalf("Key() = %q", got)
	}
	if len(got) != keyLength {
		t.Fatalf("expected %d characters, got %d", keyLength, len(got))
	}
	if (Listing{Link: link}).Key() != got {
		t.Fatal("method and function disagree")
	}
	if Key(link+"?x=1") == got {
		t.Fatal("expected distinct keys for distinct links")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listings.json")
	date := time.Date(2025, 11, 2, 10, 30, 0, 0, time.UTC)
	input := []Listing{
		{Title: "Party & Co", Link: "https://example.test/1", Price: 12.5, PriceType: "FIXED", City: "Utrecht", DistanceKM: 4, Date: date},
		{Title: "no link"},
		{Title: "Catan", Link: " https://example.test/2 ", Images: []string{"https://img.test/a.jpg"}},
		{Title: "Carcassonne", Link: "https://example.test/3"},
	}
	if err := WriteFile(path, input); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := NewFileSource(path, 0).Listings(context.Background())
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 listings with links, got %d", len(got))
	}
	if got[0].Price != 12.5 || !got[0].Date.Equal(date) || got[0].DistanceKM != 4 {
		t.Fatalf("fields not round-tripped: %+v", got[0])
	}
	if got[1].Link != "https://example.test/2" {
		t.Fatalf("expected trimmed link, got %q", got[1].Link)
	}

	limited, err := NewFileSource(path, 2).Listings(context.Background())
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(limited) != 2 || limited[1].Title != "Catan" {
		t.Fatalf("unexpected limited listings %+v", limited)
	}
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileSource(filepath.Join(dir, "missing.json"), 0).Listings(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileSource(bad, 0).Listings(context.Background()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStaticSourceCopies(t *testing.T) {
	src := StaticSource{{Link: "a"}}
	got, _ := src.Listings(context.Background())
	got[0].Link = "b"
	if src[0].Link != "a" {
		t.Fatal("expected a copy")
	}
}
