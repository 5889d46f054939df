// Интерфейс Tool и структуры определений.

package tools

import (
	"context"
	"errors"
	"fmt"
)

// JSONSchema представляет JSON Schema для параметров инструмента.
//
// Используется вместо interface{} для типобезопасности.
// Формат соответствует JSON Schema specification для Function Calling API.
type JSONSchema map[string]any

// ToolDefinition описывает инструмент для LLM (Function Calling API format).
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"` // JSON Schema объекта аргументов
}

// Tool — контракт, который должен реализовать любой инструмент.
type Tool interface {
	// Definition возвращает описание инструмента для LLM.
	Definition() ToolDefinition

	// Execute выполняет логику инструмента.
	// argsJSON — это сырой JSON с аргументами, который прислала LLM.
	// Возвращает результат (JSON) или ошибку.
	Execute(ctx context.Context, argsJSON string) (string, error)
}

// ErrToolExecution — sentinel для всех отказов инструмента.
var ErrToolExecution = errors.New("tool execution failed")

// ToolExecutionError — восстановимая ошибка вызова инструмента.
// Вызывающая сторона подставляет результат по умолчанию и продолжает.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool '%s': %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// Is позволяет errors.Is(err, ErrToolExecution).
func (e *ToolExecutionError) Is(target error) bool {
	return target == ErrToolExecution
}
