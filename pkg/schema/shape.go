// Package schema описывает формы (Shape) входных и выходных данных flow
// и проверяет по ним нетипизированные map[string]any.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind — примитивный тип поля.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Record — проверенная запись. Живёт только в рамках одного вызова.
type Record map[string]any

// String возвращает строковое поле или "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Field — описание одного поля Shape.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Description string

	// NonEmpty — строка должна содержать непробельный символ.
	// Required проверяет только наличие ключа.
	NonEmpty bool

	// Rule — тег go-playground/validator, проверяется после проверки типа
	// (например "numeric,len=12").
	Rule string

	// Min/Max — допустимый диапазон для number/integer.
	Min, Max *float64

	// MinItems — минимальная длина массива.
	MinItems int

	// Elem — тип элементов массива.
	Elem *Field

	// Shape — вложенная форма для KindObject.
	Shape *Shape
}

// Shape — именованный набор полей.
type Shape struct {
	Name   string
	Fields []Field
}

// Range — helper для Min/Max.
func Range(min, max float64) (*float64, *float64) {
	return &min, &max
}

var validate = validator.New()

// Validate проверяет raw и возвращает Record только с известными полями.
// Неизвестные поля игнорируются. Все нарушения собираются в один *ValidationError.
func (s *Shape) Validate(raw map[string]any) (Record, error) {
	var errs []FieldError
	out := s.validateObject("", raw, &errs)
	if len(errs) > 0 {
		return nil, &ValidationError{Shape: s.Name, Fields: errs}
	}
	return Record(out), nil
}

// ValidateJSON декодирует JSON объект и проверяет его.
func (s *Shape) ValidateJSON(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{
			Shape:  s.Name,
			Fields: []FieldError{{Field: "$", Reason: fmt.Sprintf("not a JSON object: %v", err)}},
		}
	}
	return s.Validate(raw)
}

func (s *Shape) validateObject(prefix string, raw map[string]any, errs *[]FieldError) map[string]any {
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		path := joinPath(prefix, f.Name)
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				*errs = append(*errs, FieldError{Field: path, Reason: "is required"})
			}
			continue
		}
		if norm, ok := f.check(path, v, errs); ok {
			out[f.Name] = norm
		}
	}
	return out
}

// check проверяет значение и возвращает его нормализованную форму.
func (f *Field) check(path string, v any, errs *[]FieldError) (any, bool) {
	fail := func(reason string, args ...any) (any, bool) {
		*errs = append(*errs, FieldError{Field: path, Reason: fmt.Sprintf(reason, args...)})
		return nil, false
	}

	var norm any
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return fail("expected string, got %T", v)
		}
		if f.NonEmpty && strings.TrimSpace(s) == "" {
			return fail("must not be empty")
		}
		norm = s

	case KindNumber, KindInteger:
		n, ok := toFloat(v)
		if !ok {
			return fail("expected %s, got %T", f.Kind, v)
		}
		if f.Kind == KindInteger && n != math.Trunc(n) {
			return fail("expected integer, got %v", n)
		}
		if f.Min != nil && n < *f.Min {
			return fail("must be >= %v", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return fail("must be <= %v", *f.Max)
		}
		norm = n

	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return fail("expected boolean, got %T", v)
		}
		norm = b

	case KindArray:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fail("expected array, got %T", v)
		}
		if rv.Len() < f.MinItems {
			return fail("must contain at least %d items, got %d", f.MinItems, rv.Len())
		}
		items := make([]any, 0, rv.Len())
		valid := true
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			if f.Elem == nil {
				items = append(items, item)
				continue
			}
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				*errs = append(*errs, FieldError{Field: itemPath, Reason: "must not be null"})
				valid = false
				continue
			}
			normItem, ok := f.Elem.check(itemPath, item, errs)
			if !ok {
				valid = false
				continue
			}
			items = append(items, normItem)
		}
		if !valid {
			return nil, false
		}
		norm = items

	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			if r, isRecord := v.(Record); isRecord {
				m, ok = map[string]any(r), true
			}
		}
		if !ok {
			return fail("expected object, got %T", v)
		}
		if f.Shape == nil {
			norm = m
			break
		}
		before := len(*errs)
		obj := f.Shape.validateObject(path, m, errs)
		if len(*errs) > before {
			return nil, false
		}
		norm = obj

	default:
		return fail("unsupported kind %q", f.Kind)
	}

	if f.Rule != "" {
		if err := validate.Var(norm, f.Rule); err != nil {
			return fail("failed rule '%s'", ruleTag(err, f.Rule))
		}
	}
	return norm, true
}

func ruleTag(err error, fallback string) string {
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		if p := ves[0].Param(); p != "" {
			return ves[0].Tag() + "=" + p
		}
		return ves[0].Tag()
	}
	return fallback
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// ValidateValue проверяет одиночное значение по описанию поля.
// Имя поля (или "value") используется в путях ошибок.
func (f *Field) ValidateValue(v any) (any, error) {
	path := f.Name
	if path == "" {
		path = "value"
	}
	if v == nil {
		return nil, &ValidationError{Shape: path, Fields: []FieldError{{Field: path, Reason: "must not be null"}}}
	}
	var errs []FieldError
	norm, ok := f.check(path, v, &errs)
	if !ok {
		return nil, &ValidationError{Shape: path, Fields: errs}
	}
	return norm, nil
}
