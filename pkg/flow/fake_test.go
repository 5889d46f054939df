package flow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
)

// scriptedProvider отдаёт заранее заданные ответы по порядку
// и запоминает полученные истории.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []func(ctx context.Context) (llm.Message, error)
	calls   [][]llm.Message
	opts    [][]any
}

func (p *scriptedProvider) Generate(ctx context.Context, messages []llm.Message, opts ...any) (llm.Message, error) {
	p.mu.Lock()
	idx := len(p.calls)
	p.calls = append(p.calls, append([]llm.Message(nil), messages...))
	p.opts = append(p.opts, opts)
	p.mu.Unlock()

	if idx >= len(p.replies) {
		return llm.Message{}, context.Canceled
	}
	return p.replies[idx](ctx)
}

func text(content string) func(context.Context) (llm.Message, error) {
	return func(context.Context) (llm.Message, error) {
		return llm.Message{Role: llm.RoleAssistant, Content: content}, nil
	}
}

func toolCall(name, args string) func(context.Context) (llm.Message, error) {
	return func(context.Context) (llm.Message, error) {
		return llm.Message{
			Role:      llm.RoleAssistant,
			ToolCalls: []llm.ToolCall{{ID: "call_" + name, Name: name, Args: args}},
		}, nil
	}
}

func failing(err error) func(context.Context) (llm.Message, error) {
	return func(context.Context) (llm.Message, error) {
		return llm.Message{}, err
	}
}

func modelRegistry(t *testing.T, providers map[string]llm.Provider) *models.Registry {
	t.Helper()
	r := models.NewRegistry()
	for name, p := range providers {
		require.NoError(t, r.Register(name, config.ModelDef{ModelName: name}, p))
	}
	return r
}
