// Package metrics exposes Prometheus instrumentation for enrichment runs.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boardgamefinder_catalog_entries",
		Help: "Number of catalog entries loaded after filtering.",
	})

	ListingsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardgamefinder_listings_processed_total",
		Help: "Listings handled by the batch runner.",
	}, []string{"status"}) // status: enriched, skipped, failed

	ExtractionResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardgamefinder_extractions_total",
		Help: "Extraction results by status.",
	}, []string{"status"}) // status: found, none, failed

	NamesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardgamefinder_names_resolved_total",
		Help: "Extracted names resolved against the catalog, by method and outcome.",
	}, []string{"method", "outcome"}) // outcome: matched, unmatched, failed

	OracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boardgamefinder_oracle_duration_seconds",
		Help:    "Duration of text-generation oracle calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"component"}) // component: extraction, matching

	ListingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boardgamefinder_listing_duration_seconds",
		Help:    "End-to-end enrichment time per listing in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordOracleCall records the time taken by one oracle call.
func RecordOracleCall(component string, start time.Time) {
	OracleDuration.WithLabelValues(component).Observe(time.Since(start).Seconds())
}

// RecordListing records the time taken to enrich one listing.
func RecordListing(start time.Time) {
	ListingDuration.Observe(time.Since(start).Seconds())
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve exposes /metrics on listen until ctx is cancelled.
func Serve(ctx context.Context, listen string, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if logger != nil {
			logger.Info("metrics endpoint listening", slog.String("listen", listen))
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
