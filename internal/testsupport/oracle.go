package testsupport

import (
	"context"
	"sync"
)

// OracleCall records one request made to a ScriptedOracle.
type OracleCall struct {
	SystemPrompt string
	UserPrompt   string
}

// ScriptedOracle is a deterministic llm.Completer for tests. Respond decides
// the reply for each request; every request is recorded.
type ScriptedOracle struct {
	Respond func(systemPrompt, userPrompt string) (string, error)

	mu    sync.Mutex
	calls []OracleCall
}

// NewScriptedOracle wraps respond in a recording oracle.
func NewScriptedOracle(respond func(systemPrompt, userPrompt string) (string, error)) *ScriptedOracle {
	return &ScriptedOracle{Respond: respond}
}

// StaticOracle always replies with reply.
func StaticOracle(reply string) *ScriptedOracle {
	return NewScriptedOracle(func(string, string) (string, error) { return reply, nil })
}

// Complete implements llm.Completer.
func (o *ScriptedOracle) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	o.mu.Lock()
	o.calls = append(o.calls, OracleCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	o.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if o.Respond == nil {
		return "", nil
	}
	return o.Respond(systemPrompt, userPrompt)
}

// Calls returns a copy of the recorded requests.
func (o *ScriptedOracle) Calls() []OracleCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]OracleCall, len(o.calls))
	copy(out, o.calls)
	return out
}

// CallCount returns the number of recorded requests.
func (o *ScriptedOracle) CallCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}
