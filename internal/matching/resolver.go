package matching

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
	"github.com/wouterstultiens/boardgame-finder/internal/services/llm"
)

// Resolution methods selectable through matching.method.
const (
	MethodFuzzy = "fuzzy"
	MethodLLM   = "llm"
)

// Decision labels recorded on a Match.
const (
	DecisionFuzzyMatch     = "fuzzy_match"
	DecisionBelowCutoff    = "below_cutoff"
	DecisionNoCandidates   = "no_candidates"
	DecisionOracleMatch    = "oracle_match"
	DecisionOracleNone     = "oracle_none"
	DecisionOracleFailed   = "oracle_failed"
	DecisionMalformed      = "oracle_malformed"
	DecisionUnknownID      = "oracle_unknown_id"
	DecisionSuffixFallback = "suffix_fallback"
	DecisionSuffixConflict = "suffix_conflict"
	DecisionSuffixMismatch = "suffix_mismatch"
)

// Query is one extracted name to resolve.
type Query struct {
	Name     string
	Language string
}

// Match is the outcome of resolving one Query. Entry is nil when nothing in
// the catalog fits.
type Match struct {
	Entry    *catalog.Entry
	Score    float64
	Decision string
}

// Matched reports whether an entry was chosen.
func (m Match) Matched() bool { return m.Entry != nil }

// Resolver turns a name into at most one catalog entry. Callers run
// Candidates first and hand its result to Resolve.
type Resolver interface {
	Candidates(name string) []Candidate
	Resolve(ctx context.Context, q Query, candidates []Candidate) (Match, error)
}

// Method returns the strategy name of r, or "custom" for foreign resolvers.
func Method(r Resolver) string {
	if named, ok := r.(interface{ Method() string }); ok {
		return named.Method()
	}
	return "custom"
}

// New builds the resolver selected by cfg.Matching.Method over entries.
func New(cfg *config.Config, entries []catalog.Entry, oracle llm.Completer, logger *slog.Logger) (Resolver, error) {
	idx := NewIndex(entries, WithCandidateCutoff(cfg.Matching.CandidateCutoff))
	switch cfg.Matching.Method {
	case MethodFuzzy:
		return NewDirectResolver(idx, cfg.Matching.FuzzyCutoff), nil
	case MethodLLM, "":
		if oracle == nil {
			return nil, services.Wrap(services.ErrConfiguration, "matching", "new resolver", "llm method needs an oracle", nil)
		}
		return NewOracleResolver(idx, oracle, OracleOptions{
			NumCandidates: cfg.Matching.NumCandidates,
			Timeout:       cfg.OracleTimeout(),
			SuffixCheck:   SuffixMode(cfg.Matching.SuffixCheck),
		}, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "matching", "new resolver",
			fmt.Sprintf("unknown method %q", cfg.Matching.Method), nil)
	}
}

func matchFor(c Candidate, decision string) Match {
	entry := c.Entry
	return Match{Entry: &entry, Score: c.Score, Decision: decision}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
