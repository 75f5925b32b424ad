package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateListings(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateTelemetry()
}

// ValidateOracle ensures an API key is available. Commands that call the LLM
// run this on top of Validate; catalog and store commands do not need it.
func (c *Config) ValidateOracle() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	envName := "OPENROUTER_API_KEY"
	if c.LLM.Provider == "anthropic" {
		envName = "ANTHROPIC_API_KEY"
	}
	return fmt.Errorf("llm.api_key is required. Set %s env var or edit %s (create with 'boardgamefinder config init')", envName, defaultPath)
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "openrouter", "anthropic":
	default:
		return fmt.Errorf("llm.provider must be openrouter or anthropic, got %q", c.LLM.Provider)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case "file":
		if c.Catalog.Path == "" {
			return errors.New("catalog.path must be set when catalog.source is file")
		}
	case "http":
		if c.Catalog.URL == "" {
			return errors.New("catalog.url must be set when catalog.source is http")
		}
		if !strings.HasPrefix(c.Catalog.URL, "http://") && !strings.HasPrefix(c.Catalog.URL, "https://") {
			return errors.New("catalog.url must be an http(s) URL")
		}
		if c.Catalog.TimeoutSeconds <= 0 {
			return errors.New("catalog.timeout_seconds must be positive when catalog.source is http")
		}
	case "sqlite":
		if c.Catalog.SQLitePath == "" {
			return errors.New("catalog.sqlite_path must be set when catalog.source is sqlite")
		}
	case "memory":
	default:
		return fmt.Errorf("catalog.source must be file, http, sqlite, or memory, got %q", c.Catalog.Source)
	}
	if c.Catalog.MinRating < 0 || c.Catalog.MinRating > 10 {
		return errors.New("catalog.min_rating must be between 0 and 10")
	}
	if c.Catalog.MinWeight < 0 || c.Catalog.MinWeight > 5 {
		return errors.New("catalog.min_weight must be between 0 and 5")
	}
	if c.Catalog.MaxWeight < 0 || c.Catalog.MaxWeight > 5 {
		return errors.New("catalog.max_weight must be between 0 and 5")
	}
	if c.Catalog.MaxWeight > 0 && c.Catalog.MaxWeight < c.Catalog.MinWeight {
		return errors.New("catalog.max_weight must not be below catalog.min_weight")
	}
	return nil
}

func (c *Config) validateMatching() error {
	switch c.Matching.Method {
	case "fuzzy", "llm":
	default:
		return fmt.Errorf("matching.method must be fuzzy or llm, got %q", c.Matching.Method)
	}
	if c.Matching.FuzzyCutoff <= 0 || c.Matching.FuzzyCutoff > 1 {
		return errors.New("matching.fuzzy_cutoff must be above 0 and at most 1")
	}
	if c.Matching.CandidateCutoff < 0 || c.Matching.CandidateCutoff > 1 {
		return errors.New("matching.candidate_cutoff must be between 0 and 1")
	}
	if c.Matching.NumCandidates <= 0 {
		return errors.New("matching.num_candidates must be positive")
	}
	switch c.Matching.SuffixCheck {
	case "off", "warn", "enforce":
	default:
		return fmt.Errorf("matching.suffix_check must be off, warn, or enforce, got %q", c.Matching.SuffixCheck)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ListingConcurrency <= 0 {
		return errors.New("pipeline.listing_concurrency must be positive")
	}
	if c.Pipeline.NameConcurrency <= 0 {
		return errors.New("pipeline.name_concurrency must be positive")
	}
	if c.Pipeline.OracleTimeoutSeconds <= 0 {
		return errors.New("pipeline.oracle_timeout_seconds must be positive")
	}
	if c.Pipeline.MaxListings < 0 {
		return errors.New("pipeline.max_listings must not be negative")
	}
	return nil
}

func (c *Config) validateListings() error {
	if c.Listings.RequestTimeoutSeconds <= 0 {
		return errors.New("listings.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOCR() error {
	if !c.OCR.Enabled {
		return nil
	}
	if c.OCR.APIKey == "" {
		return errors.New("ocr.api_key must be set when ocr.enabled is true (or set GOOGLE_VISION_API_KEY)")
	}
	if c.OCR.TimeoutSeconds <= 0 {
		return errors.New("ocr.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateTelemetry() error {
	if !c.Telemetry.Enabled {
		return nil
	}
	switch c.Telemetry.Protocol {
	case "grpc", "http":
	default:
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", c.Telemetry.Protocol)
	}
	return nil
}
