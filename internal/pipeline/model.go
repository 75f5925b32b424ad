package pipeline

import (
	"time"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/listing"
)

// Status is the resolution state of one extracted name.
type Status string

const (
	StatusMatched   Status = "matched"
	StatusUnmatched Status = "unmatched"
	StatusFailed    Status = "failed"
)

// Outcome summarizes extraction for a listing.
type Outcome string

const (
	OutcomeFound  Outcome = "found"
	OutcomeNone   Outcome = "none"
	OutcomeFailed Outcome = "failed"
)

// GameMatch pairs an extracted name with its resolution. Entry is a copy of
// the catalog row so a stored listing is self-contained.
type GameMatch struct {
	Name     string         `json:"name"`
	Language string         `json:"language"`
	Status   Status         `json:"status"`
	Entry    *catalog.Entry `json:"entry,omitempty"`
	Link     string         `json:"link,omitempty"`
	Score    float64        `json:"score,omitempty"`
	Decision string         `json:"decision,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// EnrichedListing is a listing with its resolved games.
type EnrichedListing struct {
	Listing    listing.Listing `json:"listing"`
	Games      []GameMatch     `json:"games"`
	Outcome    Outcome         `json:"outcome"`
	RunID      string          `json:"run_id,omitempty"`
	EnrichedAt time.Time       `json:"enriched_at"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at,omitempty"`
}

// Key returns the listing's store key.
func (e EnrichedListing) Key() string { return e.Listing.Key() }

// MatchedCount returns how many names resolved to a catalog entry.
func (e EnrichedListing) MatchedCount() int {
	n := 0
	for _, g := range e.Games {
		if g.Status == StatusMatched {
			n++
		}
	}
	return n
}

// Processed reports whether a stored copy makes reprocessing unnecessary.
// Listings whose extraction failed or found nothing are retried, and so are
// listings where any name failed to resolve.
func (e EnrichedListing) Processed() bool {
	if len(e.Games) == 0 {
		return false
	}
	for _, g := range e.Games {
		if g.Status == StatusFailed {
			return false
		}
	}
	return true
}
