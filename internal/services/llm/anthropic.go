package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicMessager is the subset of the Anthropic SDK used by AnthropicClient.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicClientCreator builds the SDK message service for an API key.
type AnthropicClientCreator func(cfg Config) AnthropicMessager

func defaultAnthropicCreator(cfg Config) AnthropicMessager {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}
	c := anthropic.NewClient(opts...)
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// AnthropicClient answers completions through the Anthropic Messages API.
type AnthropicClient struct {
	messages  AnthropicMessager
	model     string
	maxTokens int64
}

// NewAnthropicClient constructs a client from the shared LLM settings.
func NewAnthropicClient(cfg Config) (*AnthropicClient, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key required")
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicClient{
		messages:  newAnthropicClient(cfg),
		model:     strings.TrimSpace(cfg.Model),
		maxTokens: maxTokens,
	}, nil
}

// Model reports the configured model identifier.
func (a *AnthropicClient) Model() string { return a.model }

// Complete sends one user turn with the given system prompt at temperature 0
// and concatenates the text blocks of the reply.
func (a *AnthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", errors.New("anthropic complete: system and user prompts required")
	}
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("anthropic complete: empty content (stop_reason=%q)", resp.StopReason)
	}
	return text, nil
}

// HealthCheck verifies the key and model with a one-candidate question.
func (a *AnthropicClient) HealthCheck(ctx context.Context) error {
	return pingCompleter(ctx, a, "anthropic health")
}
