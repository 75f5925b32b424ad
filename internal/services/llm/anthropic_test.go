package llm

import (
	"context"
	"errors"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
)

type mockMessager struct {
	response *anthropic.Message
	err      error
	params   anthropic.MessageNewParams
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.params = params
	return m.response, m.err
}

func newMockMessage(texts ...string) *anthropic.Message {
	msg := &anthropic.Message{}
	for _, text := range texts {
		msg.Content = append(msg.Content, anthropic.ContentBlockUnion{Type: "text", Text: text})
	}
	return msg
}

func withMockClient(mock *mockMessager) func() {
	old := newAnthropicClient
	newAnthropicClient = func(Config) AnthropicMessager { return mock }
	return func() { newAnthropicClient = old }
}

func TestAnthropicClientComplete(t *testing.T) {
	mock := &mockMessager{response: newMockMessage("  2", "99571 ")}
	defer withMockClient(mock)()

	client, err := NewAnthropicClient(Config{APIKey: "key", Model: "claude-test", MaxTokens: 128})
	if err != nil {
		t.Fatalf("NewAnthropicClient: %v", err)
	}
	reply, err := client.Complete(context.Background(), "system rules", "user message")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "299571" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if string(mock.params.Model) != "claude-test" || mock.params.MaxTokens != 128 {
		t.Fatalf("unexpected params: model=%q max_tokens=%d", mock.params.Model, mock.params.MaxTokens)
	}
	if len(mock.params.System) != 1 || mock.params.System[0].Text != "system rules" {
		t.Fatalf("unexpected system prompt: %+v", mock.params.System)
	}
	if len(mock.params.Messages) != 1 {
		t.Fatalf("expected one user message, got %d", len(mock.params.Messages))
	}
}

func TestAnthropicClientErrors(t *testing.T) {
	if _, err := NewAnthropicClient(Config{}); err == nil {
		t.Fatal("expected missing key error")
	}

	defer withMockClient(&mockMessager{err: errors.New("overloaded")})()
	client, err := NewAnthropicClient(Config{APIKey: "key", Model: "m"})
	if err != nil {
		t.Fatalf("NewAnthropicClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestAnthropicClientEmptyContent(t *testing.T) {
	defer withMockClient(&mockMessager{response: &anthropic.Message{}})()
	client, err := NewAnthropicClient(Config{APIKey: "key", Model: "m"})
	if err != nil {
		t.Fatalf("NewAnthropicClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected empty content error")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	defer withMockClient(&mockMessager{response: newMockMessage("13")})()

	cfg := config.Default()
	cfg.LLM.APIKey = "key"
	completer, err := New(&cfg)
	if err != nil {
		t.Fatalf("New openrouter: %v", err)
	}
	if _, ok := completer.(*Client); !ok {
		t.Fatalf("expected *Client, got %T", completer)
	}

	cfg.LLM.Provider = "anthropic"
	completer, err = New(&cfg)
	if err != nil {
		t.Fatalf("New anthropic: %v", err)
	}
	checker, ok := completer.(HealthChecker)
	if !ok {
		t.Fatalf("expected health checker, got %T", completer)
	}
	if err := checker.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	cfg.LLM.APIKey = ""
	if _, err := New(&cfg); err == nil {
		t.Fatal("expected missing api key error")
	}
}
