package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/extraction"
	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/matching"
	"github.com/wouterstultiens/boardgame-finder/internal/services/llm"
	"github.com/wouterstultiens/boardgame-finder/internal/store"
)

// newOracle builds the LLM client. Tests replace it with a scripted oracle.
var newOracle = func(cfg *config.Config) (llm.Completer, error) {
	return llm.New(cfg)
}

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	catalog *catalog.Cached
	store   *store.Store
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) catalogEntries(ctx context.Context) ([]catalog.Entry, error) {
	if c.catalog == nil {
		repo, err := catalog.New(ctx, c.config, c.loggerValue())
		if err != nil {
			return nil, err
		}
		c.catalog = repo
	}
	return c.catalog.Entries(ctx)
}

func (c *commandContext) oracle() (llm.Completer, error) {
	return newOracle(c.config)
}

// resolver builds the configured resolver. The oracle is only requested for
// the llm method so fuzzy matching works without an API key.
func (c *commandContext) resolver(ctx context.Context) (matching.Resolver, llm.Completer, error) {
	entries, err := c.catalogEntries(ctx)
	if err != nil {
		return nil, nil, err
	}
	var oracle llm.Completer
	if c.config.Matching.Method != matching.MethodFuzzy {
		oracle, err = c.oracle()
		if err != nil {
			return nil, nil, err
		}
	}
	resolver, err := matching.New(c.config, entries, oracle, c.loggerValue())
	if err != nil {
		return nil, nil, err
	}
	return resolver, oracle, nil
}

func (c *commandContext) extractor(oracle llm.Completer) *extraction.Extractor {
	return extraction.New(oracle, c.config.OracleTimeout(), c.loggerValue())
}

func (c *commandContext) openStore(ctx context.Context) (*store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	s, err := store.Open(ctx, c.config.Store.Path)
	if err != nil {
		return nil, err
	}
	c.store = s
	return s, nil
}

func (c *commandContext) close() error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
		c.store = nil
	}
	if c.catalog != nil {
		errs = append(errs, c.catalog.Close())
		c.catalog = nil
	}
	return errors.Join(errs...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
