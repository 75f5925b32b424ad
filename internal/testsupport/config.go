package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It uses the in-memory catalog and a placeholder API key so no network or
// environment is touched.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.LLM.APIKey = "test"
	cfgVal.LLM.BaseURL = "http://127.0.0.1:0/chat/completions"
	cfgVal.LLM.Model = "test-model"
	cfgVal.Catalog.Source = "memory"
	cfgVal.Catalog.Path = ""
	cfgVal.Catalog.SQLitePath = filepath.Join(base, "data", "catalog.db")
	cfgVal.Store.Path = filepath.Join(base, "data", "listings.db")
	cfgVal.Pipeline.OracleTimeoutSeconds = 5
	cfgVal.Metrics.Listen = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMatchingMethod selects the resolver strategy.
func WithMatchingMethod(method string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.Method = method
	}
}

// WithCatalogFile points the catalog at a CSV file inside the test directory.
func WithCatalogFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Source = "file"
		b.cfg.Catalog.Path = filepath.Join(b.baseDir, name)
	}
}

// WithConcurrency overrides both pipeline concurrency bounds.
func WithConcurrency(listings, names int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.ListingConcurrency = listings
		b.cfg.Pipeline.NameConcurrency = names
	}
}

// BaseDir returns the temp directory backing the test config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
