package factory

import (
	"context"
	"fmt"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm/gemini"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm/openai"
)

// NewLLMProvider создает провайдера на основе конфигурации модели.
// Если в ModelDef задан rate_limit, провайдер оборачивается лимитером.
func NewLLMProvider(ctx context.Context, modelDef config.ModelDef) (llm.Provider, error) {
	var provider llm.Provider

	switch modelDef.Provider {
	case "zai", "openai", "deepseek", "openrouter":
		provider = openai.NewClient(modelDef)

	case "googleai", "gemini":
		client, err := gemini.NewClient(ctx, modelDef)
		if err != nil {
			return nil, err
		}
		provider = client

	default:
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}

	return llm.NewRateLimited(provider, modelDef.RateLimit, modelDef.BurstLimit), nil
}
