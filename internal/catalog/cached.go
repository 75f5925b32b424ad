package catalog

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/metrics"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
)

// Cached loads the wrapped repository once, drops rows that break catalog
// integrity, applies the filter and serves the result read-only from then on.
// A failed load is cached too; the process is expected to stop.
type Cached struct {
	source Repository
	filter FilterOptions
	logger *slog.Logger

	once    sync.Once
	entries []Entry
	err     error
}

// NewCached wraps source.
func NewCached(source Repository, filter FilterOptions, logger *slog.Logger) *Cached {
	return &Cached{
		source: source,
		filter: filter,
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
}

// Entries returns the shared entry slice. Callers must not modify it.
func (c *Cached) Entries(ctx context.Context) ([]Entry, error) {
	c.once.Do(func() {
		raw, err := c.source.Entries(ctx)
		if err != nil {
			c.err = services.Wrap(services.ErrCatalogUnavailable, "catalog", "load", "read catalog source", err)
			return
		}
		clean := Sanitize(raw, c.logger)
		c.entries = Filter(clean, c.filter)
		metrics.CatalogEntries.Set(float64(len(c.entries)))
		c.logger.Info("catalog loaded",
			logging.Int("entries", len(c.entries)),
			logging.Int("filtered_out", len(clean)-len(c.entries)),
		)
	})
	return c.entries, c.err
}

// Close releases the underlying repository when it holds resources.
func (c *Cached) Close() error {
	if closer, ok := c.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Sanitize drops entries with an empty name or an id already seen, keeping the
// first occurrence. Each dropped row is logged at debug; a single warning
// summarises the counts.
func Sanitize(entries []Entry, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = logging.NewNop()
	}
	seen := make(map[int]struct{}, len(entries))
	kept := make([]Entry, 0, len(entries))
	var emptyNames, duplicates int
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			emptyNames++
			logger.Debug("catalog row skipped", logging.Int("id", e.ID), logging.String("reason", "empty name"))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			duplicates++
			logger.Debug("catalog row skipped", logging.Int("id", e.ID), logging.String("name", e.Name), logging.String("reason", "duplicate id"))
			continue
		}
		seen[e.ID] = struct{}{}
		kept = append(kept, e)
	}
	if emptyNames > 0 || duplicates > 0 {
		logging.WarnWithContext(logger, "catalog rows skipped", "catalog_integrity",
			logging.Int("empty_names", emptyNames),
			logging.Int("duplicate_ids", duplicates),
			logging.String(logging.FieldErrorHint, "clean the catalog export"),
			logging.String(logging.FieldImpact, "skipped rows cannot be matched"),
		)
	}
	return kept
}
