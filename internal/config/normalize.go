package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeMatching()
	if err := c.normalizeListings(); err != nil {
		return err
	}
	c.normalizeOCR()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeTelemetry()
	c.Metrics.Listen = strings.TrimSpace(c.Metrics.Listen)
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = defaultMetricsListen
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		providerEnv := "OPENROUTER_API_KEY"
		if c.LLM.Provider == "anthropic" {
			providerEnv = "ANTHROPIC_API_KEY"
		}
		if value, ok := os.LookupEnv(providerEnv); ok && strings.TrimSpace(value) != "" {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" && c.LLM.Provider == "openrouter" {
		c.LLM.BaseURL = defaultOpenRouterBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		if c.LLM.Provider == "anthropic" {
			c.LLM.Model = defaultAnthropicModel
		} else {
			c.LLM.Model = defaultOpenRouterModel
		}
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Source = strings.ToLower(strings.TrimSpace(c.Catalog.Source))
	if c.Catalog.Source == "" {
		c.Catalog.Source = defaultCatalogSource
	}
	c.Catalog.URL = strings.TrimSpace(c.Catalog.URL)
	var err error
	if c.Catalog.Path, err = expandPath(strings.TrimSpace(c.Catalog.Path)); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	if strings.TrimSpace(c.Catalog.SQLitePath) == "" {
		c.Catalog.SQLitePath = filepath.Join(c.Paths.DataDir, "catalog.db")
	}
	if c.Catalog.SQLitePath, err = expandPath(c.Catalog.SQLitePath); err != nil {
		return fmt.Errorf("catalog.sqlite_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	c.Matching.Method = strings.ToLower(strings.TrimSpace(c.Matching.Method))
	if c.Matching.Method == "" {
		c.Matching.Method = defaultMatchingMethod
	}
	c.Matching.SuffixCheck = strings.ToLower(strings.TrimSpace(c.Matching.SuffixCheck))
	if c.Matching.SuffixCheck == "" {
		c.Matching.SuffixCheck = defaultSuffixCheck
	}
}

func (c *Config) normalizeListings() error {
	var err error
	if c.Listings.SourcePath, err = expandPath(strings.TrimSpace(c.Listings.SourcePath)); err != nil {
		return fmt.Errorf("listings.source_path: %w", err)
	}
	c.Listings.UserAgent = strings.TrimSpace(c.Listings.UserAgent)
	if c.Listings.UserAgent == "" {
		c.Listings.UserAgent = defaultListingsUserAgent
	}
	return nil
}

func (c *Config) normalizeOCR() {
	c.OCR.APIKey = strings.TrimSpace(c.OCR.APIKey)
	if c.OCR.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_VISION_API_KEY"); ok {
			c.OCR.APIKey = strings.TrimSpace(value)
		}
	}
	c.OCR.Endpoint = strings.TrimSpace(c.OCR.Endpoint)
	if c.OCR.Endpoint == "" {
		c.OCR.Endpoint = defaultVisionEndpoint
	}
}

func (c *Config) normalizeStore() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(c.Paths.DataDir, defaultStoreFile)
	}
	var err error
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTelemetry() {
	c.Telemetry.Endpoint = strings.TrimSpace(c.Telemetry.Endpoint)
	if value, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); ok && strings.TrimSpace(value) != "" {
		c.Telemetry.Endpoint = strings.TrimSpace(value)
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = defaultTelemetryEndpoint
	}
	c.Telemetry.Protocol = strings.ToLower(strings.TrimSpace(c.Telemetry.Protocol))
	if c.Telemetry.Protocol == "" {
		c.Telemetry.Protocol = defaultTelemetryProtocol
	}
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
}
