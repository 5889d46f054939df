// Реестр для хранения, поиска и вызова инструментов.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// DefaultToolTimeout — защитный timeout для выполнения инструментов.
const DefaultToolTimeout = 30 * time.Second

// Registry — потокобезопасное хранилище инструментов.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string
	timeout time.Duration
}

// NewRegistry создает новый пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		timeout: DefaultToolTimeout,
	}
}

// SetTimeout переопределяет timeout выполнения инструментов.
func (r *Registry) SetTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.timeout = d
	}
}

// validateToolDefinition проверяет что ToolDefinition соответствует JSON Schema.
//
// Валидирует:
//   - Name не пустой
//   - Parameters является JSON объектом
//   - Parameters.type == "object"
//   - Parameters.required является массивом строк
func validateToolDefinition(def ToolDefinition) error {
	// 1. Проверяем имя
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	// 2. Проверяем что Parameters не nil
	if def.Parameters == nil {
		return fmt.Errorf("tool '%s': parameters cannot be nil", def.Name)
	}

	// 3. Сериализуем Parameters в JSON для проверки структуры
	paramsJSON, err := json.Marshal(def.Parameters)
	if err != nil {
		return fmt.Errorf("tool '%s': failed to marshal parameters: %w", def.Name, err)
	}

	// 4. Парсим как map[string]any
	var params map[string]any
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return fmt.Errorf("tool '%s': parameters must be a JSON object, got: %s", def.Name, string(paramsJSON))
	}

	// 5. Проверяем что type == "object"
	typeStr, ok := params["type"].(string)
	if !ok {
		return fmt.Errorf("tool '%s': parameters must have string 'type' field", def.Name)
	}
	if typeStr != "object" {
		return fmt.Errorf("tool '%s': parameters.type must be 'object', got: '%s'", def.Name, typeStr)
	}

	// 6. Проверяем что 'required' (если есть) является массивом строк
	if requiredVal, exists := params["required"]; exists {
		required, ok := requiredVal.([]any)
		if !ok {
			return fmt.Errorf("tool '%s': parameters.required must be an array", def.Name)
		}
		for i, item := range required {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("tool '%s': parameters.required[%d] must be a string, got: %T", def.Name, i, item)
			}
		}
	}

	return nil
}

// Register добавляет инструмент в реестр с валидацией схемы.
//
// Возвращает ошибку если определение инструмента не валидно или имя занято.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()

	// Валидируем определение перед регистрацией
	if err := validateToolDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool '%s' already registered", def.Name)
	}
	r.tools[def.Name] = tool
	r.order = append(r.order, def.Name)
	return nil
}

// Get ищет инструмент по имени.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool '%s' not found", name)
	}
	return tool, nil
}

// GetDefinitions возвращает определения для отправки в LLM.
// Без аргументов — все инструменты в порядке регистрации, иначе только перечисленные.
func (r *Registry) GetDefinitions(names ...string) []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) == 0 {
		names = r.order
	}
	defs := make([]ToolDefinition, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			defs = append(defs, t.Definition())
		}
	}
	return defs
}

// Invoke выполняет инструмент с защитным timeout.
//
// Любой отказ (нет инструмента, плохие аргументы, ошибка handler,
// невалидный результат, timeout) возвращается как *ToolExecutionError.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) (string, error) {
	start := time.Now()

	// 1. Санитизируем JSON аргументы
	cleanArgs := utils.CleanJsonBlock(argsJSON)

	// 2. Получаем tool из registry
	tool, err := r.Get(name)
	if err != nil {
		return "", &ToolExecutionError{Tool: name, Err: err}
	}

	r.mu.RLock()
	timeout := r.timeout
	r.mu.RUnlock()

	// 3. Создаём контекст с timeout для защиты от зависания
	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// 4. Выполняем tool в отдельной goroutine для возможности отмены
	type execResult struct {
		output string
		err    error
	}
	resultChan := make(chan execResult, 1)

	go func() {
		out, execErr := tool.Execute(toolCtx, cleanArgs)
		resultChan <- execResult{out, execErr}
	}()

	// 5. Ждём результат или timeout
	select {
	case <-toolCtx.Done():
		utils.Warn("Tool execution timeout",
			"tool", name,
			"timeout", timeout,
			"duration_ms", time.Since(start).Milliseconds())
		return "", &ToolExecutionError{Tool: name, Err: fmt.Errorf("cancelled after %v: %w", time.Since(start).Round(time.Millisecond), toolCtx.Err())}

	case res := <-resultChan:
		if res.err != nil {
			return "", &ToolExecutionError{Tool: name, Err: res.err}
		}
		utils.Debug("Tool executed",
			"tool", name,
			"duration_ms", time.Since(start).Milliseconds())
		return res.output, nil
	}
}

// DefaultResult возвращает результат по умолчанию для инструмента.
func (r *Registry) DefaultResult(name string) string {
	tool, err := r.Get(name)
	if err != nil {
		return "null"
	}
	if d, ok := tool.(Defaulter); ok {
		return d.DefaultResult()
	}
	return "null"
}
