package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
)

// Completer is the oracle contract shared by extraction and matching: one
// system prompt, one user message, temperature 0, raw text back.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// HealthChecker is implemented by completers that can verify their credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FromConfig maps the [llm] section onto client settings.
func FromConfig(cfg *config.Config) Config {
	return Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		MaxTokens:      cfg.LLM.MaxTokens,
	}
}

// New returns the completer for the configured provider.
func New(cfg *config.Config) (Completer, error) {
	if err := cfg.ValidateOracle(); err != nil {
		return nil, err
	}
	settings := FromConfig(cfg)
	switch cfg.LLM.Provider {
	case "anthropic":
		return NewAnthropicClient(settings)
	case "openrouter", "":
		return NewClient(settings), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.LLM.Provider)
	}
}

const (
	pingSystemPrompt = "Reply with only the ID of the candidate that matches the game, or None."
	pingUserPrompt   = "Original game name: \"Catan\"\n\nCandidate games:\n- ID: 13, Name: Catan"
)

// pingCompleter runs a one-candidate matching question; a usable key and
// model answer with the candidate's id.
func pingCompleter(ctx context.Context, c Completer, op string) error {
	reply, err := c.Complete(ctx, pingSystemPrompt, pingUserPrompt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !strings.Contains(reply, "13") {
		return fmt.Errorf("%s: unexpected response %q", op, SummarizeSnippet(reply))
	}
	return nil
}
