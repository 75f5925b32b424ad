package matching

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/metrics"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
	"github.com/wouterstultiens/boardgame-finder/internal/services/llm"
	"github.com/wouterstultiens/boardgame-finder/internal/telemetry"
)

// DefaultNumCandidates bounds each search made by OracleResolver.
const DefaultNumCandidates = 20

// SuffixMode controls the edition-suffix check applied to the oracle's pick.
type SuffixMode string

const (
	SuffixOff SuffixMode = "off"
	// SuffixWarn logs a suffix mismatch and keeps the oracle's pick. A
	// translated edition name ("Zeevaarders" for "Seafarers") reads as a
	// mismatch, so this is the default.
	SuffixWarn SuffixMode = "warn"
	// SuffixEnforce replaces a mismatching pick with the plain base game, or
	// no match when the candidates hold none.
	SuffixEnforce SuffixMode = "enforce"
)

func (m SuffixMode) enabled() bool { return m == SuffixWarn || m == SuffixEnforce }

// OracleOptions tunes an OracleResolver.
type OracleOptions struct {
	NumCandidates int
	Timeout       time.Duration
	SuffixCheck   SuffixMode
}

// OracleResolver shortlists fuzzy candidates and lets the oracle choose.
type OracleResolver struct {
	index  *Index
	oracle llm.Completer
	opts   OracleOptions
	logger *slog.Logger
}

// NewOracleResolver returns a resolver that consults oracle.
func NewOracleResolver(idx *Index, oracle llm.Completer, opts OracleOptions, logger *slog.Logger) *OracleResolver {
	if opts.NumCandidates <= 0 {
		opts.NumCandidates = DefaultNumCandidates
	}
	return &OracleResolver{
		index:  idx,
		oracle: oracle,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "matching"),
	}
}

// Method implements the method label lookup.
func (r *OracleResolver) Method() string { return MethodLLM }

// Candidates returns the shortlist for name.
func (r *OracleResolver) Candidates(name string) []Candidate {
	return r.index.FindCandidates(name, r.opts.NumCandidates)
}

// Resolve asks the oracle to pick among candidates. With no candidates the
// oracle is not called. Oracle failures return the error with an absent match.
func (r *OracleResolver) Resolve(ctx context.Context, q Query, candidates []Candidate) (Match, error) {
	logger := logging.WithContext(ctx, r.logger).With(logging.String("name", q.Name))
	if len(candidates) == 0 {
		logger.Debug("no candidates", logging.Decision("match", DecisionNoCandidates, "no catalog entry above cutoff"))
		return Match{Decision: DecisionNoCandidates}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "matching.Resolve",
		telemetry.WithAttributes(
			attribute.String("matching.name", q.Name),
			attribute.Int("matching.candidates", len(candidates)),
		),
	)
	defer span.End()

	callCtx, cancel := withTimeout(ctx, r.opts.Timeout)
	defer cancel()
	start := time.Now()
	reply, err := r.oracle.Complete(callCtx, SystemPrompt, BuildUserMessage(q, candidates))
	metrics.RecordOracleCall("matching", start)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		wrapped := services.Wrap(marker, "matching", "oracle call", q.Name, err)
		telemetry.RecordError(span, wrapped)
		return Match{Decision: DecisionOracleFailed}, wrapped
	}

	chosen, decision := ParseDecision(reply, candidates)
	switch decision {
	case DecisionMalformed, DecisionUnknownID:
		logging.WarnWithContext(logger, "malformed match decision", "match_decision_malformed",
			logging.String("decision", decision),
			logging.String("raw_snippet", llm.SummarizeSnippet(reply)),
			logging.String(logging.FieldErrorHint, "oracle must answer with a listed id or None"),
			logging.String(logging.FieldImpact, "name left unmatched"),
		)
	}
	if chosen == nil {
		telemetry.AddSpanAttributes(span, attribute.String("matching.decision", decision))
		telemetry.SetSpanOK(span)
		logger.Debug("match decision", logging.Decision("match", decision, "oracle chose no candidate"))
		return Match{Decision: decision}, nil
	}

	match := matchFor(*chosen, decision)
	if r.opts.SuffixCheck.enabled() && SuffixConflict(q.Name, chosen.Entry.Name) {
		if r.opts.SuffixCheck == SuffixEnforce {
			match = r.suffixFallback(logger, q, *chosen, candidates)
		} else {
			logger.Info("edition suffix differs from query, keeping oracle choice",
				logging.String("chosen", chosen.Entry.Name),
				logging.Int("chosen_id", chosen.Entry.ID),
				logging.Decision("match", DecisionSuffixMismatch, "suffix may be a translated edition name"),
			)
		}
	}

	telemetry.AddSpanAttributes(span, attribute.String("matching.decision", match.Decision))
	if match.Entry != nil {
		telemetry.AddSpanAttributes(span, attribute.Int("matching.id", match.Entry.ID))
	}
	telemetry.SetSpanOK(span)
	logger.Debug("match decision",
		logging.Decision("match", match.Decision, "oracle choice"),
		logging.Bool("matched", match.Matched()),
	)
	return match, nil
}

func (r *OracleResolver) suffixFallback(logger *slog.Logger, q Query, chosen Candidate, candidates []Candidate) Match {
	attrs := []logging.Attr{
		logging.String("chosen", chosen.Entry.Name),
		logging.Int("chosen_id", chosen.Entry.ID),
	}
	base, ok := baseCandidate(q.Name, candidates)
	if !ok {
		attrs = append(attrs, logging.Decision("match", DecisionSuffixConflict, "chosen edition differs from query"))
		logger.Info("edition suffix conflict, no base game", logging.Args(attrs...)...)
		return Match{Decision: DecisionSuffixConflict}
	}
	attrs = append(attrs, logging.Int("base_id", base.Entry.ID))
	attrs = append(attrs, logging.Decision("match", DecisionSuffixFallback, "chosen edition differs from query"))
	logger.Info("edition suffix conflict, using base game", logging.Args(attrs...)...)
	return matchFor(base, DecisionSuffixFallback)
}

// ParseDecision interprets the oracle reply against the candidate set. It
// returns the chosen candidate, or nil with the reason nothing was chosen.
func ParseDecision(reply string, candidates []Candidate) (*Candidate, string) {
	text := strings.TrimSpace(reply)
	if strings.EqualFold(text, "none") {
		return nil, DecisionOracleNone
	}
	if text == "" || strings.TrimLeft(text, "0123456789") != "" {
		return nil, DecisionMalformed
	}
	id, err := strconv.Atoi(text)
	if err != nil {
		return nil, DecisionMalformed
	}
	for i := range candidates {
		if candidates[i].Entry.ID == id {
			return &candidates[i], DecisionOracleMatch
		}
	}
	return nil, DecisionUnknownID
}
