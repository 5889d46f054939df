// Package flow предоставляет ошибки исполнения flow.
//
// Все ошибки поддерживают errors.Is() и errors.As().
package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/tools"
)

// Sentinel ошибки по видам отказа.
var (
	ErrFlowNotFound      = errors.New("flow not found")
	ErrGenerationBackend = errors.New("generation backend failed")
	ErrOutputValidation  = errors.New("output validation failed")
	ErrPersistence       = errors.New("persistence failed")
	ErrRegistrySealed    = errors.New("flow registry is sealed")
	ErrValidation        = schema.ErrValidation
	ErrToolExecution     = tools.ErrToolExecution

	// ErrToolLoopLimit — причина GenerationBackendError при превышении max_tool_iterations.
	ErrToolLoopLimit = errors.New("tool loop limit")
)

// GenerationBackendError — сетевой или прикладной отказ модели.
type GenerationBackendError struct {
	Flow  string
	Model string
	Err   error
}

func (e *GenerationBackendError) Error() string {
	return fmt.Sprintf("flow '%s': model '%s': %v", e.Flow, e.Model, e.Err)
}

func (e *GenerationBackendError) Unwrap() error { return e.Err }

// Is позволяет errors.Is(err, ErrGenerationBackend).
func (e *GenerationBackendError) Is(target error) bool {
	return target == ErrGenerationBackend
}

// OutputValidationError — модель ответила, но ответ не соответствует OutputShape.
//
// Нарушения полей копируются в Fields, а не оборачиваются: errors.Is(err, ErrValidation)
// зарезервирован за входными данными.
type OutputValidationError struct {
	Flow   string
	Reason string
	Fields []schema.FieldError
}

func (e *OutputValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("flow '%s': invalid output: %s", e.Flow, e.Reason)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return fmt.Sprintf("flow '%s': invalid output: %s: %s", e.Flow, e.Reason, strings.Join(parts, "; "))
}

// Is позволяет errors.Is(err, ErrOutputValidation).
func (e *OutputValidationError) Is(target error) bool {
	return target == ErrOutputValidation
}

// PersistenceError — отказ объектного или документного хранилища.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is позволяет errors.Is(err, ErrPersistence).
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Kind возвращает короткое имя вида ошибки для логов и метрик.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrFlowNotFound):
		return "not_found"
	case errors.Is(err, ErrOutputValidation):
		return "output_validation"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrGenerationBackend):
		return "generation_backend"
	case errors.Is(err, ErrToolExecution):
		return "tool_execution"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
