package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
)

// Handler — логика инструмента над уже проверенными аргументами.
type Handler func(ctx context.Context, args schema.Record) (any, error)

// Defaulter — инструмент с результатом по умолчанию, который подставляется
// в диалог вместо упавшего вызова.
type Defaulter interface {
	DefaultResult() string
}

// ShapedTool — инструмент, описанный формами аргументов и результата.
//
// Execute проверяет аргументы по Input, вызывает Handler и проверяет
// результат по Output.
type ShapedTool struct {
	Name        string
	Description string
	Input       *schema.Shape
	Output      *schema.Field
	Handler     Handler

	// Default — результат при ToolExecutionError.
	Default any
}

// Definition возвращает определение инструмента для function calling.
func (t *ShapedTool) Definition() ToolDefinition {
	params := JSONSchema{"type": "object", "properties": map[string]any{}}
	if t.Input != nil {
		params = t.Input.JSONSchema()
	}
	return ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}
}

// Execute выполняет инструмент согласно контракту "Raw In, String Out".
func (t *ShapedTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	// 1. Разбираем и проверяем аргументы
	raw := map[string]any{}
	if strings.TrimSpace(argsJSON) != "" {
		if err := json.Unmarshal([]byte(argsJSON), &raw); err != nil {
			return "", fmt.Errorf("invalid arguments json: %w", err)
		}
	}

	args := schema.Record(raw)
	if t.Input != nil {
		validated, err := t.Input.Validate(raw)
		if err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		args = validated
	}

	// 2. Выполняем handler
	result, err := t.Handler(ctx, args)
	if err != nil {
		return "", err
	}

	// 3. Нормализуем результат через JSON и проверяем по Output
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	if t.Output != nil {
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return "", fmt.Errorf("decode result: %w", err)
		}
		if _, err := t.Output.ValidateValue(generic); err != nil {
			return "", fmt.Errorf("invalid result: %w", err)
		}
	}

	return string(data), nil
}

// DefaultResult возвращает JSON результата по умолчанию.
func (t *ShapedTool) DefaultResult() string {
	data, err := json.Marshal(t.Default)
	if err != nil {
		return "null"
	}
	return string(data)
}
