package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// LLM contains the oracle connection settings shared by extraction and matching.
type LLM struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxTokens      int    `toml:"max_tokens"`
}

// Catalog selects where reference games are loaded from and which ones are kept.
type Catalog struct {
	Source     string `toml:"source"`
	Path       string `toml:"path"`
	URL        string `toml:"url"`
	SQLitePath string `toml:"sqlite_path"`
	// TimeoutSeconds bounds the whole catalog download for the http source.
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MinRating      float64 `toml:"min_rating"`
	MinWeight      float64 `toml:"min_weight"`
	MaxWeight      float64 `toml:"max_weight"`
}

// Matching contains name resolution settings.
type Matching struct {
	Method          string  `toml:"method"`
	FuzzyCutoff     float64 `toml:"fuzzy_cutoff"`
	CandidateCutoff float64 `toml:"candidate_cutoff"`
	NumCandidates   int     `toml:"num_candidates"`
	SuffixCheck     string  `toml:"suffix_check"`
}

// Pipeline contains concurrency and timeout limits for enrichment.
type Pipeline struct {
	ListingConcurrency   int `toml:"listing_concurrency"`
	NameConcurrency      int `toml:"name_concurrency"`
	OracleTimeoutSeconds int `toml:"oracle_timeout_seconds"`
	MaxListings          int `toml:"max_listings"`
}

// Listings configures the raw listing source and the optional detail fetch.
type Listings struct {
	SourcePath            string `toml:"source_path"`
	FetchDetails          bool   `toml:"fetch_details"`
	UserAgent             string `toml:"user_agent"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// OCR configures image text recognition.
type OCR struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Store configures persistence of enriched listings.
type Store struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Telemetry configures OTLP trace export.
type Telemetry struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	Protocol    string `toml:"protocol"`
	ServiceName string `toml:"service_name"`
}

// Metrics configures the Prometheus scrape endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Config encapsulates all configuration values for boardgamefinder.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - LLM: oracle provider and credentials
//   - Catalog: reference game source and load-time filters
//   - Matching: resolver strategy and similarity cutoffs
//   - Pipeline: concurrency bounds and oracle timeout
//   - Listings: raw listing source and detail page fetching
//   - OCR: Google Vision text detection
//   - Store: SQLite file for enriched listings
//   - Logging: log format and level
//   - Telemetry: OTLP tracing
//   - Metrics: Prometheus endpoint
type Config struct {
	Paths     Paths     `toml:"paths"`
	LLM       LLM       `toml:"llm"`
	Catalog   Catalog   `toml:"catalog"`
	Matching  Matching  `toml:"matching"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Listings  Listings  `toml:"listings"`
	OCR       OCR       `toml:"ocr"`
	Store     Store     `toml:"store"`
	Logging   Logging   `toml:"logging"`
	Telemetry Telemetry `toml:"telemetry"`
	Metrics   Metrics   `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("boardgamefinder.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories along with the parent
// of the store file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if strings.TrimSpace(c.Store.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the lock file guarding batch runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "run.lock")
}

// OracleTimeout bounds a single extraction or resolution call.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Pipeline.OracleTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
