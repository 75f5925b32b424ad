package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "listings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func enriched(link, title string, outcome pipeline.Outcome, games ...pipeline.GameMatch) pipeline.EnrichedListing {
	if games == nil {
		games = []pipeline.GameMatch{}
	}
	return pipeline.EnrichedListing{
		Listing:    listing.Listing{Title: title, Link: link, Price: 12.5},
		Games:      games,
		Outcome:    outcome,
		RunID:      "run-1",
		EnrichedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func matchedGame(name string, id int) pipeline.GameMatch {
	entry := catalog.Entry{ID: id, Name: name}
	return pipeline.GameMatch{
		Name:     name,
		Language: "nl",
		Status:   pipeline.StatusMatched,
		Entry:    &entry,
		Link:     entry.Link(),
		Decision: "oracle_match",
	}
}

func TestSaveAndFindByLink(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	item := enriched("https://example.test/a", "Party & Co", pipeline.OutcomeFound,
		matchedGame("Party & Co", 13972),
		pipeline.GameMatch{Name: "Onbekend Spel", Language: "nl", Status: pipeline.StatusUnmatched},
	)

	require.NoError(t, s.Save(ctx, item))

	got, ok, err := s.FindByLink(ctx, "https://example.test/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.Key(), got.Key())
	assert.Equal(t, pipeline.OutcomeFound, got.Outcome)
	assert.Equal(t, "run-1", got.RunID)
	assert.True(t, got.EnrichedAt.Equal(item.EnrichedAt))
	require.Len(t, got.Games, 2)
	require.NotNil(t, got.Games[0].Entry)
	assert.Equal(t, 13972, got.Games[0].Entry.ID)
	assert.Nil(t, got.Games[1].Entry)
	assert.Equal(t, 1, got.MatchedCount())
	assert.True(t, got.Processed())
	assert.False(t, got.CreatedAt.IsZero())
}

func TestFindByLinkMissing(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.FindByLink(context.Background(), "https://example.test/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveKeepsCreatedAt(t *testing.T) {
	s := openTestStore(t)
	s.now = steppingClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, enriched("https://example.test/a", "first", pipeline.OutcomeNone)))
	first, _, err := s.FindByLink(ctx, "https://example.test/a")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, enriched("https://example.test/a", "second", pipeline.OutcomeFound, matchedGame("Catan", 13))))
	second, _, err := s.FindByLink(ctx, "https://example.test/a")
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "second", second.Listing.Title)
	assert.Equal(t, pipeline.OutcomeFound, second.Outcome)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaveRequiresLink(t *testing.T) {
	s := openTestStore(t)
	err := s.Save(context.Background(), enriched("", "no link", pipeline.OutcomeNone))
	require.Error(t, err)
}

func TestListFilters(t *testing.T) {
	s := openTestStore(t)
	s.now = steppingClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, enriched("https://example.test/1", "matched", pipeline.OutcomeFound, matchedGame("Catan", 13))))
	require.NoError(t, s.Save(ctx, enriched("https://example.test/2", "none", pipeline.OutcomeNone)))
	require.NoError(t, s.Save(ctx, enriched("https://example.test/3", "failed", pipeline.OutcomeFailed)))
	require.NoError(t, s.Save(ctx, enriched("https://example.test/4", "matched again", pipeline.OutcomeFound, matchedGame("Wingspan", 266192))))

	titles := func(items []pipeline.EnrichedListing) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Listing.Title)
		}
		return out
	}

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"matched again", "failed", "none", "matched"}, titles(all))

	yes := true
	matched, err := s.List(ctx, Filter{Matched: &yes})
	require.NoError(t, err)
	assert.Equal(t, []string{"matched again", "matched"}, titles(matched))

	no := false
	unmatched, err := s.List(ctx, Filter{Matched: &no})
	require.NoError(t, err)
	assert.Equal(t, []string{"failed", "none"}, titles(unmatched))

	failed, err := s.List(ctx, Filter{Outcome: pipeline.OutcomeFailed})
	require.NoError(t, err)
	assert.Equal(t, []string{"failed"}, titles(failed))

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"matched again"}, titles(limited))
}

func TestParseTimeStringFallback(t *testing.T) {
	assert.True(t, parseTimeString("").IsZero())
	assert.True(t, parseTimeString("garbage").IsZero())
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), parseTimeString("2026-01-02 03:04:05"))
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 100, time.UTC),
		parseTimeString("2026-01-02T03:04:05.000000100Z").UTC())
}
