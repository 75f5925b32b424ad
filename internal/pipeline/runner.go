package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/metrics"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
	"github.com/wouterstultiens/boardgame-finder/internal/telemetry"
)

// Store persists enriched listings.
type Store interface {
	FindByLink(ctx context.Context, link string) (EnrichedListing, bool, error)
	Save(ctx context.Context, item EnrichedListing) error
}

// DetailFetcher completes a listing from its detail page.
type DetailFetcher interface {
	Apply(ctx context.Context, l listing.Listing) listing.Listing
}

// Summary reports the result of one batch run.
type Summary struct {
	RunID        string
	Found        int
	Skipped      int
	Enriched     int
	Failed       int
	MatchedNames int
	Listings     []EnrichedListing
	Duration     time.Duration
}

// Runner enriches a batch of listings and saves the results.
type Runner struct {
	enricher    *Enricher
	store       Store
	details     DetailFetcher
	concurrency int
	logger      *slog.Logger
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithDetailFetcher completes listings from their detail pages before enrichment.
func WithDetailFetcher(f DetailFetcher) RunnerOption {
	return func(r *Runner) {
		r.details = f
	}
}

// WithListingConcurrency bounds how many listings are enriched at once.
func WithListingConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRunner constructs a Runner. A nil store disables both skipping and saving.
func NewRunner(enricher *Enricher, store Store, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		enricher:    enricher,
		store:       store,
		concurrency: 2,
		logger:      logging.NewComponentLogger(logger, "runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type itemResult struct {
	item    EnrichedListing
	done    bool
	skipped bool
	failed  bool
}

// Run processes listings and returns a summary. Per-listing failures are
// counted, not returned; the error is non-nil only when ctx ends the run.
func (r *Runner) Run(ctx context.Context, listings []listing.Listing) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx, span := telemetry.StartSpan(ctx, "pipeline.Run",
		telemetry.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.listings", len(listings)),
		),
	)
	defer span.End()
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.Int("listings", len(listings)),
		logging.Int("concurrency", r.concurrency),
	)

	results := make([]itemResult, len(listings))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for i, l := range listings {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.process(ctx, l)
		}()
	}
	wg.Wait()

	summary := Summary{RunID: runID, Found: len(listings)}
	for _, res := range results {
		switch {
		case res.skipped:
			summary.Skipped++
			metrics.ListingsProcessed.WithLabelValues("skipped").Inc()
			continue
		case res.failed:
			summary.Failed++
			metrics.ListingsProcessed.WithLabelValues("failed").Inc()
		case res.done:
			summary.Enriched++
			metrics.ListingsProcessed.WithLabelValues(string(res.item.Outcome)).Inc()
		default:
			continue
		}
		summary.MatchedNames += res.item.MatchedCount()
		summary.Listings = append(summary.Listings, res.item)
	}
	summary.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return summary, services.Wrap(services.ErrTimeout, "pipeline", "run", "run interrupted", err)
	}
	telemetry.SetSpanOK(span)
	logger.Info("run finished",
		logging.Int("found", summary.Found),
		logging.Int("skipped", summary.Skipped),
		logging.Int("enriched", summary.Enriched),
		logging.Int("failed", summary.Failed),
		logging.Int("matched_names", summary.MatchedNames),
		logging.Duration("elapsed", summary.Duration),
	)
	return summary, nil
}

func (r *Runner) process(ctx context.Context, l listing.Listing) itemResult {
	ctx = services.WithListingKey(ctx, l.Key())
	logger := logging.WithContext(ctx, r.logger)

	if r.store != nil {
		existing, ok, err := r.store.FindByLink(ctx, l.Link)
		switch {
		case err != nil && !errors.Is(err, services.ErrNotFound):
			logging.WarnWithContext(logger, "store lookup failed", "store_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "listing is enriched again"),
			)
		case ok && existing.Processed():
			logger.Debug("listing skipped", logging.Decision("listing_skip", "skipped", "already processed"))
			return itemResult{done: true, skipped: true}
		}
	}

	if r.details != nil {
		l = r.details.Apply(ctx, l)
	}
	item := r.enricher.Enrich(ctx, l)

	if r.store != nil {
		if err := r.store.Save(ctx, item); err != nil {
			logging.ErrorWithContext(logger, "save enriched listing", "store_save_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check store path permissions and disk space"),
			)
			return itemResult{item: item, done: true, failed: true}
		}
	}
	if item.Outcome == OutcomeFailed {
		return itemResult{item: item, done: true, failed: true}
	}
	return itemResult{item: item, done: true}
}
