package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
)

// FilterFromConfig maps the [catalog] bounds onto FilterOptions.
func FilterFromConfig(cfg *config.Config) FilterOptions {
	return FilterOptions{
		MinRating: cfg.Catalog.MinRating,
		MinWeight: cfg.Catalog.MinWeight,
		MaxWeight: cfg.Catalog.MaxWeight,
	}
}

// New selects the catalog source named in the configuration and wraps it in a
// Cached repository.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Cached, error) {
	filter := FilterFromConfig(cfg)
	var source Repository
	switch cfg.Catalog.Source {
	case "file":
		source = NewFileRepository(cfg.Catalog.Path)
	case "http":
		client := &http.Client{Timeout: time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second}
		source = NewHTTPRepository(cfg.Catalog.URL, client)
	case "sqlite":
		repo, err := OpenSQLite(ctx, cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, services.Wrap(services.ErrCatalogUnavailable, "catalog", "open", "sqlite catalog", err)
		}
		source = repo.WithFilter(filter)
	case "memory":
		source = NewMemoryRepository(nil)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "select source", fmt.Sprintf("unknown source %q", cfg.Catalog.Source), nil)
	}
	return NewCached(source, filter, logger), nil
}
