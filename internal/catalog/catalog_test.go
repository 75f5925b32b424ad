package catalog

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
)

const sampleCSV = `BGGId,Name,YearPublished,GameWeight,AvgRating,ImagePath,NumOwned
13972,Party & Co,1998.0,1.2,5.4,https://cf.geekdo-images.com/party.jpg,900
31395,Party & Co: Extension,2001,,6.1,,120
299571,Bandida,2020,1.05,,https://cf.geekdo-images.com/bandida.jpg,5000
abc,Broken Row,2000,2,7,,1
`

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestParseCSV(t *testing.T) {
	entries, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	party := entries[0]
	if party.ID != 13972 || party.Name != "Party & Co" || party.YearPublished == nil || *party.YearPublished != 1998 {
		t.Fatalf("unexpected first entry: %+v", party)
	}
	expansion := entries[1]
	if expansion.ComplexityWeight != nil {
		t.Fatalf("expected absent weight, got %v", *expansion.ComplexityWeight)
	}
	if expansion.AverageRating == nil || *expansion.AverageRating != 6.1 {
		t.Fatalf("unexpected rating: %+v", expansion.AverageRating)
	}
	if entries[2].AverageRating != nil {
		t.Fatal("expected absent rating for Bandida")
	}
	if got := entries[2].Link(); got != "https://boardgamegeek.com/boardgame/299571" {
		t.Fatalf("unexpected link %q", got)
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("BGGId,Name\n1,Foo\n"))
	if err == nil || !strings.Contains(err.Error(), "YearPublished") {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestWriteCSVRoundTripKeepsAbsentValues(t *testing.T) {
	entries := []Entry{
		{ID: 1, Name: "Monopoly", YearPublished: intPtr(1935), ComplexityWeight: floatPtr(1.6)},
		{ID: 2, Name: "Monopoly: Batman"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	parsed, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(parsed) != 2 || parsed[1].YearPublished != nil || parsed[1].ComplexityWeight != nil {
		t.Fatalf("unexpected parsed entries: %+v", parsed)
	}
	if *parsed[0].ComplexityWeight != 1.6 {
		t.Fatalf("unexpected weight %v", *parsed[0].ComplexityWeight)
	}
}

func TestSanitizeDropsDuplicatesAndEmptyNames(t *testing.T) {
	entries := []Entry{
		{ID: 1, Name: "Monopoly"},
		{ID: 2, Name: "   "},
		{ID: 1, Name: "Monopoly Duplicate"},
		{ID: 3, Name: " Catan "},
	}
	got := Sanitize(entries, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %+v", got)
	}
	if got[0].Name != "Monopoly" || got[1].Name != "Catan" {
		t.Fatalf("unexpected sanitized entries: %+v", got)
	}
}

func TestFilterKeepsAbsentMetrics(t *testing.T) {
	entries := []Entry{
		{ID: 1, Name: "Low", AverageRating: floatPtr(4), ComplexityWeight: floatPtr(2)},
		{ID: 2, Name: "High", AverageRating: floatPtr(8), ComplexityWeight: floatPtr(2)},
		{ID: 3, Name: "Unrated"},
		{ID: 4, Name: "Heavy", AverageRating: floatPtr(8), ComplexityWeight: floatPtr(4.5)},
	}
	got := Filter(entries, FilterOptions{MinRating: 6, MaxWeight: 4})
	var ids []int
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Fatalf("unexpected filtered ids %v", ids)
	}
	if len(Filter(entries, FilterOptions{})) != len(entries) {
		t.Fatal("inactive filter should keep every entry")
	}
}

type countingRepository struct {
	mu      sync.Mutex
	calls   int
	entries []Entry
	err     error
}

func (c *countingRepository) Entries(context.Context) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.entries, c.err
}

func TestCachedLoadsOnce(t *testing.T) {
	source := &countingRepository{entries: []Entry{{ID: 1, Name: "Monopoly"}, {ID: 1, Name: "Again"}}}
	cached := NewCached(source, FilterOptions{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := cached.Entries(context.Background())
			if err != nil || len(entries) != 1 {
				t.Errorf("unexpected result: %v %v", entries, err)
			}
		}()
	}
	wg.Wait()
	if source.calls != 1 {
		t.Fatalf("expected a single load, got %d", source.calls)
	}
}

func TestCachedWrapsLoadFailureAsFatal(t *testing.T) {
	cached := NewCached(&countingRepository{err: errors.New("disk gone")}, FilterOptions{}, nil)
	_, err := cached.Entries(context.Background())
	if !errors.Is(err, services.ErrCatalogUnavailable) || !services.IsFatal(err) {
		t.Fatalf("expected fatal catalog error, got %v", err)
	}
}

func TestHTTPRepository(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/boardgames.csv" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("no such object"))
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	entries, err := NewHTTPRepository(server.URL+"/catalog/boardgames.csv", nil).Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	_, err = NewHTTPRepository(server.URL+"/missing.csv", server.Client()).Entries(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestSQLiteRepositoryReplaceAndFilter(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer repo.Close()

	entries := []Entry{
		{ID: 50, Name: "Zeta", AverageRating: floatPtr(7.5)},
		{ID: 10, Name: "Alpha", AverageRating: floatPtr(3.0), YearPublished: intPtr(1999)},
		{ID: 30, Name: "Unrated", ImagePath: "https://example.com/u.jpg"},
		{ID: 50, Name: "Zeta duplicate"},
	}
	inserted, err := repo.Replace(ctx, entries)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("expected 3 inserted rows, got %d", inserted)
	}
	count, err := repo.Count(ctx)
	if err != nil || count != 3 {
		t.Fatalf("Count = %d, %v", count, err)
	}

	all, err := repo.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(all) != 3 || all[0].ID != 50 || all[1].ID != 10 || all[2].ID != 30 {
		t.Fatalf("expected import order, got %+v", all)
	}
	if all[1].YearPublished == nil || *all[1].YearPublished != 1999 || all[0].YearPublished != nil {
		t.Fatalf("unexpected year values: %+v", all)
	}
	if all[2].ImagePath != "https://example.com/u.jpg" {
		t.Fatalf("unexpected image path %q", all[2].ImagePath)
	}

	filtered, err := repo.WithFilter(FilterOptions{MinRating: 5}).Entries(ctx)
	if err != nil {
		t.Fatalf("filtered Entries: %v", err)
	}
	if len(filtered) != 2 || filtered[0].ID != 50 || filtered[1].ID != 30 {
		t.Fatalf("unexpected filtered entries: %+v", filtered)
	}

	if _, err := repo.Replace(ctx, entries[:1]); err != nil {
		t.Fatalf("second Replace: %v", err)
	}
	if count, _ := repo.Count(ctx); count != 1 {
		t.Fatalf("expected replace to clear old rows, count=%d", count)
	}
}

func TestNewSelectsSource(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "boardgames.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	cfg := config.Default()
	cfg.Catalog.Source = "file"
	cfg.Catalog.Path = csvPath
	cfg.Catalog.MinRating = 6
	repo, err := New(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entries, err := repo.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 31395 || entries[1].ID != 299571 {
		t.Fatalf("unexpected filtered file entries: %+v", entries)
	}

	cfg.Catalog.Source = "http"
	cfg.Catalog.URL = "https://example.test/boardgames.csv"
	cfg.Catalog.TimeoutSeconds = 300
	cfg.Listings.RequestTimeoutSeconds = 5
	repo, err = New(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("New http: %v", err)
	}
	httpRepo, ok := repo.source.(*HTTPRepository)
	if !ok {
		t.Fatalf("expected an http repository, got %T", repo.source)
	}
	if httpRepo.client.Timeout != 300*time.Second {
		t.Fatalf("catalog download timeout = %v, want 5m0s", httpRepo.client.Timeout)
	}

	cfg.Catalog.Source = "memory"
	repo, err = New(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	if entries, err := repo.Entries(context.Background()); err != nil || len(entries) != 0 {
		t.Fatalf("expected empty memory catalog, got %v %v", entries, err)
	}

	cfg.Catalog.Source = "gcs"
	if _, err := New(context.Background(), &cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
