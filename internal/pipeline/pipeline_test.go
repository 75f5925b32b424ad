package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/extraction"
	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/matching"
	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
	"github.com/wouterstultiens/boardgame-finder/internal/testsupport"
)

const partyAndCoReply = `[{"name": "Party & Co", "language": "nl"}, {"name": "Party & Co: 1000 Nieuwe Vragen", "language": "nl"}]`

func newEnricher(t *testing.T, cfg *config.Config, oracle *testsupport.ScriptedOracle, opts ...pipeline.EnricherOption) *pipeline.Enricher {
	t.Helper()
	resolver, err := matching.New(cfg, testsupport.CatalogEntries(), oracle, logging.NewNop())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	extractor := extraction.New(oracle, cfg.OracleTimeout(), logging.NewNop())
	opts = append(opts, pipeline.WithNameConcurrency(cfg.Pipeline.NameConcurrency))
	return pipeline.NewEnricher(extractor, resolver, logging.NewNop(), opts...)
}

func matchedIDs(item pipeline.EnrichedListing) []int {
	var ids []int
	for _, g := range item.Games {
		if g.Entry != nil {
			ids = append(ids, g.Entry.ID)
		}
	}
	return ids
}

func TestEnrichPartyAndCo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	e := newEnricher(t, cfg, testsupport.RoutedOracle(partyAndCoReply))

	item := e.Enrich(context.Background(), listing.Listing{
		Title:       "Party & Co + 1000 extra vragen",
		Description: "Niet veel gebruikt",
		Link:        "https://example.test/party",
	})

	if item.Outcome != pipeline.OutcomeFound {
		t.Fatalf("expected found, got %s", item.Outcome)
	}
	if len(item.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(item.Games))
	}
	if item.Games[0].Name != "Party & Co" || item.Games[1].Name != "Party & Co: 1000 Nieuwe Vragen" {
		t.Fatalf("games out of extraction order: %+v", item.Games)
	}
	ids := matchedIDs(item)
	if len(ids) != 2 || ids[0] != 13972 || ids[1] != 31395 {
		t.Fatalf("expected [13972 31395], got %v", ids)
	}
	if item.Games[1].Link != "https://boardgamegeek.com/boardgame/31395" {
		t.Fatalf("unexpected link %q", item.Games[1].Link)
	}
	if item.MatchedCount() != 2 || !item.Processed() {
		t.Fatalf("expected a processed listing with 2 matches")
	}
}

func TestEnrichUnknownGame(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	oracle := testsupport.RoutedOracle(`[{"name": "Het Oud & Nieuw Spel", "language": "nl"}]`)
	e := newEnricher(t, cfg, oracle)

	item := e.Enrich(context.Background(), listing.Listing{Title: "Het Oud & Nieuw Spel - Dilemma's, Vragen, Uitbeelden"})

	if item.Outcome != pipeline.OutcomeFound || len(item.Games) != 1 {
		t.Fatalf("expected one extracted game, got %+v", item)
	}
	game := item.Games[0]
	if game.Status != pipeline.StatusUnmatched || game.Entry != nil {
		t.Fatalf("expected unmatched game, got %+v", game)
	}
	if game.Decision != matching.DecisionNoCandidates {
		t.Fatalf("expected no_candidates, got %s", game.Decision)
	}
	if oracle.CallCount() != 1 {
		t.Fatalf("expected only the extraction call, got %d", oracle.CallCount())
	}
}

func TestEnrichIsolatesNameFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	oracle := testsupport.NewScriptedOracle(func(system, user string) (string, error) {
		if system != matching.SystemPrompt {
			return `[{"name": "Catan", "language": "nl"}, {"name": "Wingspan", "language": "en"}]`, nil
		}
		if strings.Contains(user, `Original game name: "Catan"`) {
			return "", errors.New("upstream 502")
		}
		return testsupport.Librarian(user), nil
	})
	e := newEnricher(t, cfg, oracle)

	item := e.Enrich(context.Background(), listing.Listing{Title: "Catan en Wingspan"})

	if len(item.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(item.Games))
	}
	if item.Games[0].Status != pipeline.StatusFailed || item.Games[0].Error == "" {
		t.Fatalf("expected failed Catan with error, got %+v", item.Games[0])
	}
	if item.Games[1].Status != pipeline.StatusMatched || item.Games[1].Entry.ID != 266192 {
		t.Fatalf("expected Wingspan matched, got %+v", item.Games[1])
	}
}

func TestEnrichExtractionFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	oracle := testsupport.StaticOracle("sorry, I cannot help")
	e := newEnricher(t, cfg, oracle)

	item := e.Enrich(context.Background(), listing.Listing{Title: "Doos met spullen"})
	if item.Outcome != pipeline.OutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", item.Outcome)
	}
	if len(item.Games) != 0 || item.Processed() {
		t.Fatalf("failed extraction must not count as processed")
	}
}

func TestEnrichExtractionNone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	e := newEnricher(t, cfg, testsupport.StaticOracle("[]"))

	item := e.Enrich(context.Background(), listing.Listing{Title: "Houten puzzel"})
	if item.Outcome != pipeline.OutcomeNone || item.Games == nil || len(item.Games) != 0 {
		t.Fatalf("expected none with an empty games slice, got %+v", item)
	}
}

type fakeOCR struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeOCR) ReadTexts(_ context.Context, urls []string) []string {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := make([]string, len(urls))
	for i := range urls {
		out[i] = "WINGSPAN"
	}
	return out
}

func TestEnrichFillsImageTexts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reader := &fakeOCR{}
	oracle := testsupport.RoutedOracle(`[{"name": "Wingspan", "language": "en"}]`)
	e := newEnricher(t, cfg, oracle, pipeline.WithOCR(reader))

	item := e.Enrich(context.Background(), listing.Listing{
		Title:  "Bordspel",
		Images: []string{"https://img.test/1.jpg", "https://img.test/2.jpg"},
	})
	if reader.calls != 1 {
		t.Fatalf("expected one OCR pass, got %d", reader.calls)
	}
	if len(item.Listing.ImageTexts) != 2 {
		t.Fatalf("expected image texts to be filled, got %v", item.Listing.ImageTexts)
	}
	if !strings.Contains(oracle.Calls()[0].UserPrompt, "WINGSPAN") {
		t.Fatal("extraction prompt should include OCR text")
	}

	// Existing texts are kept.
	e.Enrich(context.Background(), listing.Listing{
		Title:      "Bordspel",
		Images:     []string{"https://img.test/1.jpg"},
		ImageTexts: []string{"already read"},
	})
	if reader.calls != 1 {
		t.Fatalf("OCR should not run when texts exist, got %d calls", reader.calls)
	}
}

func TestEnrichDeterministic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	l := listing.Listing{Title: "Party & Co", Link: "https://example.test/party"}

	first := newEnricher(t, cfg, testsupport.RoutedOracle(partyAndCoReply)).Enrich(context.Background(), l)
	second := newEnricher(t, cfg, testsupport.RoutedOracle(partyAndCoReply)).Enrich(context.Background(), l)

	a, b := matchedIDs(first), matchedIDs(second)
	if len(a) != len(b) {
		t.Fatalf("runs differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs differ: %v vs %v", a, b)
		}
	}
}
