// Package models — реестр LLM провайдеров по алиасам из config.yaml.
//
// Flow ссылаются на модель алиасом ("gemini-flash"), реестр отдаёт готовый
// провайдер и его ModelDef. Заполняется один раз при старте, дальше только читается.
package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/factory"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
)

// ErrModelNotFound — алиас не зарегистрирован.
var ErrModelNotFound = errors.New("model not found")

// Registry — потокобезопасное хранилище провайдеров.
type Registry struct {
	mu     sync.RWMutex
	models map[string]entry
}

type entry struct {
	provider llm.Provider
	def      config.ModelDef
}

// ModelInfo — описание зарегистрированной модели (без ключей).
type ModelInfo struct {
	Alias     string
	Provider  string
	ModelName string
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]entry)}
}

// Register добавляет модель. Повторный алиас — ошибка.
func (r *Registry) Register(name string, modelDef config.ModelDef, provider llm.Provider) error {
	if name == "" {
		return fmt.Errorf("model alias cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("model '%s': provider is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[name]; exists {
		return fmt.Errorf("model '%s' already registered", name)
	}
	r.models[name] = entry{provider: provider, def: modelDef}
	return nil
}

// Get возвращает провайдер по алиасу.
func (r *Registry) Get(name string) (llm.Provider, config.ModelDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.models[name]
	if !ok {
		return nil, config.ModelDef{}, fmt.Errorf("%w: '%s'", ErrModelNotFound, name)
	}
	return e.provider, e.def, nil
}

// GetWithFallback возвращает requested, а если его нет — defaultModel.
// Третьим значением отдаёт алиас, который реально использован.
func (r *Registry) GetWithFallback(requested, defaultModel string) (llm.Provider, config.ModelDef, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range []string{requested, defaultModel} {
		if e, ok := r.models[name]; ok && name != "" {
			return e.provider, e.def, name, nil
		}
	}
	return nil, config.ModelDef{}, "", fmt.Errorf("%w: neither '%s' nor default '%s'", ErrModelNotFound, requested, defaultModel)
}

// ListNames возвращает отсортированные алиасы.
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe возвращает описание моделей в порядке алиасов.
func (r *Registry) Describe() []ModelInfo {
	names := r.ListNames()

	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ModelInfo, 0, len(names))
	for _, name := range names {
		e, ok := r.models[name]
		if !ok {
			continue
		}
		infos = append(infos, ModelInfo{Alias: name, Provider: e.def.Provider, ModelName: e.def.ModelName})
	}
	return infos
}

// NewRegistryFromConfig создаёт провайдеры для всех cfg.Models.Definitions.
//
// Провайдеры создаются параллельно; первая ошибка отменяет сборку.
func NewRegistryFromConfig(ctx context.Context, cfg *config.AppConfig) (*Registry, error) {
	registry := NewRegistry()

	g, gctx := errgroup.WithContext(ctx)
	for name, modelDef := range cfg.Models.Definitions {
		g.Go(func() error {
			provider, err := factory.NewLLMProvider(gctx, modelDef)
			if err != nil {
				return fmt.Errorf("failed to create provider for model '%s': %w", name, err)
			}
			return registry.Register(name, modelDef, provider)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return registry, nil
}
