package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wouterstultiens/boardgame-finder/internal/extraction"
	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/matching"
	"github.com/wouterstultiens/boardgame-finder/internal/metrics"
	"github.com/wouterstultiens/boardgame-finder/internal/ocr"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
	"github.com/wouterstultiens/boardgame-finder/internal/telemetry"
)

// Extractor finds game names in listing text.
type Extractor interface {
	Extract(ctx context.Context, title, description string, imageTexts []string) extraction.Result
}

// Enricher resolves the games in a single listing.
type Enricher struct {
	extractor       Extractor
	resolver        matching.Resolver
	ocr             ocr.Reader
	nameConcurrency int
	logger          *slog.Logger
	now             func() time.Time
}

// EnricherOption customizes an Enricher.
type EnricherOption func(*Enricher)

// WithOCR fills missing image texts before extraction.
func WithOCR(reader ocr.Reader) EnricherOption {
	return func(e *Enricher) {
		e.ocr = reader
	}
}

// WithNameConcurrency bounds concurrent resolutions within one listing.
func WithNameConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.nameConcurrency = n
		}
	}
}

// WithClock overrides the enrichment timestamp source.
func WithClock(now func() time.Time) EnricherOption {
	return func(e *Enricher) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEnricher constructs an Enricher.
func NewEnricher(extractor Extractor, resolver matching.Resolver, logger *slog.Logger, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		extractor:       extractor,
		resolver:        resolver,
		nameConcurrency: 4,
		logger:          logging.NewComponentLogger(logger, "enricher"),
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich extracts and resolves the games in l. It never fails as a whole;
// degraded steps are visible in the Outcome and per-name Status.
func (e *Enricher) Enrich(ctx context.Context, l listing.Listing) EnrichedListing {
	start := time.Now()
	defer metrics.RecordListing(start)

	ctx = services.WithListingKey(ctx, l.Key())
	ctx, span := telemetry.StartSpan(ctx, "pipeline.Enrich",
		telemetry.WithAttributes(
			attribute.String("listing.key", l.Key()),
			attribute.Int("listing.images", len(l.Images)),
		),
	)
	defer span.End()
	logger := logging.WithContext(ctx, e.logger)

	if e.ocr != nil && len(l.Images) > 0 && len(l.ImageTexts) == 0 {
		l.ImageTexts = e.ocr.ReadTexts(services.WithStage(ctx, "ocr"), l.Images)
	}

	out := EnrichedListing{Listing: l, Games: []GameMatch{}, EnrichedAt: e.now()}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		out.RunID = runID
	}

	res := e.extractor.Extract(ctx, l.Title, l.Description, l.ImageTexts)
	switch res.Status {
	case extraction.StatusFailed:
		out.Outcome = OutcomeFailed
	case extraction.StatusNone:
		out.Outcome = OutcomeNone
	default:
		out.Outcome = OutcomeFound
		out.Games = e.resolveAll(services.WithStage(ctx, "matching"), res.Names)
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("listing.outcome", string(out.Outcome)),
		attribute.Int("listing.games", len(out.Games)),
		attribute.Int("listing.matched", out.MatchedCount()),
	)
	telemetry.SetSpanOK(span)
	logger.Info("listing enriched",
		logging.String("title", l.Title),
		logging.String("outcome", string(out.Outcome)),
		logging.Int("games", len(out.Games)),
		logging.Int("matched", out.MatchedCount()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return out
}

// resolveAll resolves names concurrently. Results are written by index so
// the output keeps extraction order.
func (e *Enricher) resolveAll(ctx context.Context, names []extraction.Name) []GameMatch {
	games := make([]GameMatch, len(names))
	sem := make(chan struct{}, e.nameConcurrency)
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				games[i] = failedGame(name, ctx.Err())
				return
			}
			defer func() { <-sem }()
			games[i] = e.resolveOne(ctx, name)
		}()
	}
	wg.Wait()
	return games
}

func (e *Enricher) resolveOne(ctx context.Context, name extraction.Name) GameMatch {
	method := matching.Method(e.resolver)
	candidates := e.resolver.Candidates(name.Name)
	m, err := e.resolver.Resolve(ctx, matching.Query{Name: name.Name, Language: name.Language}, candidates)
	if err != nil {
		metrics.NamesResolved.WithLabelValues(method, string(StatusFailed)).Inc()
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "name resolution failed", "resolution_failed",
			logging.String("name", name.Name),
			logging.Int("candidates", len(candidates)),
			logging.Error(err),
			logging.String("failure_kind", services.FailureKind(err)),
			logging.String(logging.FieldImpact, "name recorded without a catalog match"),
		)
		game := failedGame(name, err)
		game.Decision = m.Decision
		return game
	}

	game := GameMatch{
		Name:     name.Name,
		Language: name.Language,
		Status:   StatusUnmatched,
		Decision: m.Decision,
	}
	if m.Matched() {
		entry := *m.Entry
		game.Status = StatusMatched
		game.Entry = &entry
		game.Link = entry.Link()
		game.Score = m.Score
	}
	metrics.NamesResolved.WithLabelValues(method, string(game.Status)).Inc()
	return game
}

func failedGame(name extraction.Name, err error) GameMatch {
	g := GameMatch{Name: name.Name, Language: name.Language, Status: StatusFailed}
	if err != nil {
		g.Error = err.Error()
	}
	return g
}
