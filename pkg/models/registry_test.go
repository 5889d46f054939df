package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
)

func stubProvider() llm.Provider {
	return llm.ProviderFunc(func(ctx context.Context, messages []llm.Message, opts ...any) (llm.Message, error) {
		return llm.Message{Role: llm.RoleAssistant}, nil
	})
}

func TestRegistryGetWithFallback(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("chat", config.ModelDef{ModelName: "gpt-4o-mini"}, stubProvider()))
	require.NoError(t, r.Register("vision", config.ModelDef{ModelName: "gpt-4o"}, stubProvider()))
	assert.Error(t, r.Register("chat", config.ModelDef{}, stubProvider()))

	tests := []struct {
		name      string
		requested string
		fallback  string
		want      string
		wantErr   bool
	}{
		{name: "requested exists", requested: "vision", fallback: "chat", want: "vision"},
		{name: "fallback used", requested: "", fallback: "chat", want: "chat"},
		{name: "unknown requested", requested: "ghost", fallback: "chat", want: "chat"},
		{name: "nothing found", requested: "ghost", fallback: "ghost2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, def, name, err := r.GetWithFallback(tt.requested, tt.fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
			assert.NotEmpty(t, def.ModelName)
		})
	}

	assert.Equal(t, []string{"chat", "vision"}, r.ListNames())
	assert.Equal(t, []ModelInfo{
		{Alias: "chat", ModelName: "gpt-4o-mini"},
		{Alias: "vision", ModelName: "gpt-4o"},
	}, r.Describe())
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("chat", config.ModelDef{Provider: "openai"}, stubProvider()))
	assert.Error(t, r.Register("", config.ModelDef{}, stubProvider()))
	assert.Error(t, r.Register("nil", config.ModelDef{}, nil))

	_, def, err := r.Get("chat")
	require.NoError(t, err)
	assert.Equal(t, "openai", def.Provider)

	_, _, err = r.Get("ghost")
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, _, _, err = r.GetWithFallback("ghost", "")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestNewRegistryFromConfig(t *testing.T) {
	cfg := &config.AppConfig{Models: config.ModelsConfig{
		DefaultChat: "chat",
		Definitions: map[string]config.ModelDef{
			"chat": {Provider: "openai", ModelName: "gpt-4o-mini", APIKey: "k"},
		},
	}}

	r, err := NewRegistryFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"chat"}, r.ListNames())

	cfg.Models.Definitions["broken"] = config.ModelDef{Provider: "unknown"}
	_, err = NewRegistryFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}
