package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/metrics"
	"github.com/wouterstultiens/boardgame-finder/internal/ocr"
	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
	"github.com/wouterstultiens/boardgame-finder/internal/telemetry"
)

// version is stamped at build time with -ldflags.
var version = "dev"

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sourcePath string
	var limit int
	var fetchDetails bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enrich a batch of listings and save the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if strings.TrimSpace(sourcePath) == "" {
				sourcePath = cfg.Listings.SourcePath
			}
			if strings.TrimSpace(sourcePath) == "" {
				return errors.New("no listing source: pass --source or set listings.source_path")
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Pipeline.MaxListings
			}
			if !cmd.Flags().Changed("fetch-details") {
				fetchDetails = cfg.Listings.FetchDetails
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another boardgamefinder run holds %s", cfg.LockPath())
			}
			defer func() { _ = lock.Unlock() }()

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			logger := ctx.loggerValue()

			shutdown, err := telemetry.Setup(runCtx, telemetry.Config{
				Enabled:        cfg.Telemetry.Enabled,
				Endpoint:       cfg.Telemetry.Endpoint,
				Protocol:       cfg.Telemetry.Protocol,
				ServiceName:    cfg.Telemetry.ServiceName,
				ServiceVersion: version,
			})
			if err != nil {
				return fmt.Errorf("setup tracing: %w", err)
			}
			defer func() {
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				if err := shutdown(shutdownCtx); err != nil {
					logging.WarnWithContext(logger, "trace shutdown failed", "telemetry_shutdown_failed", logging.Error(err))
				}
			}()

			if cfg.Metrics.Enabled {
				go func() {
					if err := metrics.Serve(runCtx, cfg.Metrics.Listen, logger); err != nil {
						logging.WarnWithContext(logger, "metrics endpoint stopped", "metrics_serve_failed",
							logging.Error(err),
							logging.String(logging.FieldErrorHint, "check metrics.listen is free"),
						)
					}
				}()
			}

			listings, err := listing.NewFileSource(sourcePath, limit).Listings(runCtx)
			if err != nil {
				return err
			}
			resolver, oracle, err := ctx.resolver(runCtx)
			if err != nil {
				return err
			}
			if oracle == nil {
				if oracle, err = ctx.oracle(); err != nil {
					return err
				}
			}
			s, err := ctx.openStore(runCtx)
			if err != nil {
				return err
			}

			enricher := pipeline.NewEnricher(ctx.extractor(oracle), resolver, logger,
				pipeline.WithOCR(ocr.New(cfg, logger)),
				pipeline.WithNameConcurrency(cfg.Pipeline.NameConcurrency),
			)
			opts := []pipeline.RunnerOption{pipeline.WithListingConcurrency(cfg.Pipeline.ListingConcurrency)}
			if fetchDetails {
				timeout := time.Duration(cfg.Listings.RequestTimeoutSeconds) * time.Second
				fetcher := listing.NewDetailFetcher(&http.Client{Timeout: timeout}, cfg.Listings.UserAgent, timeout, logger)
				opts = append(opts, pipeline.WithDetailFetcher(fetcher))
			}
			summary, runErr := pipeline.NewRunner(enricher, s, logger, opts...).Run(runCtx, listings)

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
				return runErr
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
			rows := [][]string{
				{"Found", fmt.Sprint(summary.Found)},
				{"Skipped", fmt.Sprint(summary.Skipped)},
				{"Enriched", fmt.Sprint(summary.Enriched)},
				{"Failed", fmt.Sprint(summary.Failed)},
				{"Matched names", fmt.Sprint(summary.MatchedNames)},
			}
			if err := writeRows(out, []string{"Listings", "Count"}, rows, []columnAlignment{alignLeft, alignRight}); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "JSON listing file (defaults to listings.source_path)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum listings to process (defaults to pipeline.max_listings)")
	cmd.Flags().BoolVar(&fetchDetails, "fetch-details", false, "Download listing pages for images and full descriptions")
	return cmd
}
