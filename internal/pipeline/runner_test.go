package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/matching"
	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
	"github.com/wouterstultiens/boardgame-finder/internal/testsupport"
)

// catalogOracle extracts the listing title as the only game name.
func catalogOracle() *testsupport.ScriptedOracle {
	return testsupport.NewScriptedOracle(func(system, user string) (string, error) {
		if system == matching.SystemPrompt {
			return testsupport.Librarian(user), nil
		}
		title := strings.SplitN(user, "\n", 3)[1]
		if title == "broken" {
			return "not json", nil
		}
		return `[{"name": "` + title + `", "language": "en"}]`, nil
	})
}

func batch(titles ...string) []listing.Listing {
	out := make([]listing.Listing, 0, len(titles))
	for _, title := range titles {
		out = append(out, listing.Listing{Title: title, Link: "https://example.test/" + strings.ReplaceAll(title, " ", "-")})
	}
	return out
}

func TestRunnerEnrichesAndSaves(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConcurrency(3, 2))
	store := testsupport.MustOpenStore(t, cfg)
	runner := pipeline.NewRunner(newEnricher(t, cfg, catalogOracle()), store, logging.NewNop(),
		pipeline.WithListingConcurrency(cfg.Pipeline.ListingConcurrency))

	summary, err := runner.Run(context.Background(), batch("Catan", "Wingspan", "broken", "Camel Up"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected a run id")
	}
	if summary.Found != 4 || summary.Enriched != 3 || summary.Failed != 1 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.MatchedNames != 3 {
		t.Fatalf("expected 3 matched names, got %d", summary.MatchedNames)
	}
	wantOrder := []string{"Catan", "Wingspan", "broken", "Camel Up"}
	if len(summary.Listings) != len(wantOrder) {
		t.Fatalf("expected %d listings, got %d", len(wantOrder), len(summary.Listings))
	}
	for i, title := range wantOrder {
		if summary.Listings[i].Listing.Title != title {
			t.Fatalf("listing %d: expected %q, got %q", i, title, summary.Listings[i].Listing.Title)
		}
		if summary.Listings[i].RunID != summary.RunID {
			t.Fatalf("listing %d missing run id", i)
		}
	}

	saved, ok, err := store.FindByLink(context.Background(), "https://example.test/Wingspan")
	if err != nil || !ok {
		t.Fatalf("expected saved listing, ok=%v err=%v", ok, err)
	}
	if saved.MatchedCount() != 1 || saved.Games[0].Entry.ID != 266192 {
		t.Fatalf("unexpected saved listing %+v", saved)
	}
	count, err := store.Count(context.Background())
	if err != nil || count != 4 {
		t.Fatalf("expected 4 stored rows, got %d (err=%v)", count, err)
	}
}

func TestRunnerSkipsProcessedListings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	oracle := catalogOracle()
	runner := pipeline.NewRunner(newEnricher(t, cfg, oracle), store, logging.NewNop())

	if _, err := runner.Run(context.Background(), batch("Catan", "broken")); err != nil {
		t.Fatalf("first run: %v", err)
	}
	callsAfterFirst := oracle.CallCount()

	summary, err := runner.Run(context.Background(), batch("Catan", "broken", "Wingspan"))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Skipped != 1 {
		t.Fatalf("expected Catan to be skipped, got %+v", summary)
	}
	if summary.Failed != 1 || summary.Enriched != 1 {
		t.Fatalf("expected failed listing retried and Wingspan enriched, got %+v", summary)
	}
	// broken: one extraction call. Wingspan: extraction plus resolution.
	if got := oracle.CallCount() - callsAfterFirst; got != 3 {
		t.Fatalf("expected 3 oracle calls in the second run, got %d", got)
	}
	if len(summary.Listings) != 2 || summary.Listings[0].Listing.Title != "broken" {
		t.Fatalf("skipped listings should not be reported, got %d", len(summary.Listings))
	}
}

func TestRunnerRetriesFailedResolutions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	inner := catalogOracle()
	outage := true
	oracle := testsupport.NewScriptedOracle(func(system, user string) (string, error) {
		if system == matching.SystemPrompt && outage {
			return "", errors.New("upstream unavailable")
		}
		return inner.Respond(system, user)
	})
	runner := pipeline.NewRunner(newEnricher(t, cfg, oracle), store, logging.NewNop())

	first, err := runner.Run(context.Background(), batch("Wingspan"))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.MatchedNames != 0 || first.Listings[0].Games[0].Status != pipeline.StatusFailed {
		t.Fatalf("expected a failed resolution, got %+v", first.Listings[0].Games)
	}
	saved, ok, err := store.FindByLink(context.Background(), "https://example.test/Wingspan")
	if err != nil || !ok {
		t.Fatalf("expected saved listing, ok=%v err=%v", ok, err)
	}
	if saved.Processed() {
		t.Fatal("a listing with failed resolutions must not count as processed")
	}

	outage = false
	second, err := runner.Run(context.Background(), batch("Wingspan"))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Skipped != 0 || second.Enriched != 1 || second.MatchedNames != 1 {
		t.Fatalf("expected the listing to be re-enriched, got %+v", second)
	}
	saved, _, err = store.FindByLink(context.Background(), "https://example.test/Wingspan")
	if err != nil || !saved.Processed() || saved.Games[0].Entry.ID != 266192 {
		t.Fatalf("expected the retried match to be stored, got %+v (err=%v)", saved, err)
	}
}

func TestProcessedRequiresResolvedNames(t *testing.T) {
	tests := []struct {
		name  string
		games []pipeline.GameMatch
		want  bool
	}{
		{"no games", nil, false},
		{"matched", []pipeline.GameMatch{{Name: "Catan", Status: pipeline.StatusMatched}}, true},
		{"unmatched", []pipeline.GameMatch{{Name: "Oud & Nieuw", Status: pipeline.StatusUnmatched}}, true},
		{"one failed", []pipeline.GameMatch{
			{Name: "Catan", Status: pipeline.StatusMatched},
			{Name: "Wingspan", Status: pipeline.StatusFailed, Error: "timeout"},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := pipeline.EnrichedListing{Outcome: pipeline.OutcomeFound, Games: tt.games}
			if got := item.Processed(); got != tt.want {
				t.Fatalf("Processed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunnerWithoutStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := pipeline.NewRunner(newEnricher(t, cfg, catalogOracle()), nil, logging.NewNop())

	summary, err := runner.Run(context.Background(), batch("Bandida"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Enriched != 1 || summary.MatchedNames != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

type stubDetails struct{}

func (stubDetails) Apply(_ context.Context, l listing.Listing) listing.Listing {
	l.Description = "Bevat ook de uitbreiding"
	l.ImageTexts = []string{"CARCASSONNE"}
	return l
}

func TestRunnerAppliesDetails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	oracle := catalogOracle()
	runner := pipeline.NewRunner(newEnricher(t, cfg, oracle), nil, logging.NewNop(),
		pipeline.WithDetailFetcher(stubDetails{}))

	summary, err := runner.Run(context.Background(), batch("Carcassonne"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Listings[0].Listing.Description != "Bevat ook de uitbreiding" {
		t.Fatal("expected detail description to be applied")
	}
	if !strings.Contains(oracle.Calls()[0].UserPrompt, "CARCASSONNE") {
		t.Fatal("expected detail OCR text in the extraction prompt")
	}
}

func TestRunnerCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := pipeline.NewRunner(newEnricher(t, cfg, catalogOracle()), nil, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := runner.Run(ctx, batch("Catan", "Wingspan"))
	if err == nil {
		t.Fatal("expected an error for a canceled run")
	}
	if summary.Found != 2 || summary.Enriched != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
