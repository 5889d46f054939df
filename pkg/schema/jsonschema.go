package schema

// JSONSchema рендерит Shape в JSON Schema объекта.
// Используется для деклараций tools и structured output запросов.
func (s *Shape) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]any, 0, len(s.Fields))

	for _, f := range s.Fields {
		props[f.Name] = f.jsonSchema()
		if f.Required {
			required = append(required, f.Name)
		}
	}

	result := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		result["required"] = required
	}
	return result
}

func (f *Field) jsonSchema() map[string]any {
	if f.Kind == KindObject && f.Shape != nil {
		out := f.Shape.JSONSchema()
		if f.Description != "" {
			out["description"] = f.Description
		}
		return out
	}

	out := map[string]any{"type": string(f.Kind)}
	if f.Description != "" {
		out["description"] = f.Description
	}
	if f.NonEmpty {
		out["minLength"] = 1
	}
	if f.Min != nil {
		out["minimum"] = *f.Min
	}
	if f.Max != nil {
		out["maximum"] = *f.Max
	}
	if f.Kind == KindArray {
		if f.MinItems > 0 {
			out["minItems"] = f.MinItems
		}
		if f.Elem != nil {
			out["items"] = f.Elem.jsonSchema()
		}
	}
	return out
}
