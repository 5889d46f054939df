package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation — sentinel для всех ошибок проверки по Shape.
var ErrValidation = errors.New("validation failed")

// FieldError описывает одно нарушение.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError перечисляет все поля, не прошедшие проверку.
type ValidationError struct {
	Shape  string       `json:"shape"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("%s: shape '%s': %s", ErrValidation, e.Shape, strings.Join(parts, "; "))
}

// Is позволяет errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldNames возвращает имена полей с ошибками.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}
