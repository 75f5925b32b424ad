// Package llm provides the text-generation oracle used by extraction and
// matching.
//
// # Entry Points
//
// New: pick the configured provider and return a Completer.
// Client: OpenRouter (OpenAI-compatible) chat completions over net/http.
// AnthropicClient: Anthropic Messages API through the official SDK.
// Completer.Complete: send system/user prompts at temperature 0, receive text.
// HealthCheck: ask a one-candidate matching question and expect its id.
//
// # Retry Behaviour
//
// Client retries on HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 4 attempts by
// default). A Retry-After header overrides the computed delay. Context
// cancellation aborts retries immediately, so the caller's per-call timeout
// bounds the whole exchange.
package llm
