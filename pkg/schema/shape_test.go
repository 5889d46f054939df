package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherInput() *Shape {
	return &Shape{
		Name: "weather_input",
		Fields: []Field{
			{Name: "village", Kind: KindString, Required: true},
			{Name: "cropType", Kind: KindString, Required: true},
			{Name: "language", Kind: KindString, Required: true},
		},
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]any
		wantFields []string
	}{
		{
			name: "all present",
			raw:  map[string]any{"village": "Nagercoil", "cropType": "Rice", "language": "Tamil"},
		},
		{
			name:       "missing one",
			raw:        map[string]any{"village": "Nagercoil", "language": "Tamil"},
			wantFields: []string{"cropType"},
		},
		{
			name: "empty strings are present",
			raw:  map[string]any{"village": "", "cropType": "  ", "language": "Tamil"},
		},
		{
			name:       "null counts as missing",
			raw:        map[string]any{"village": nil, "cropType": "Rice", "language": "Tamil"},
			wantFields: []string{"village"},
		},
		{
			name:       "wrong type",
			raw:        map[string]any{"village": 42, "cropType": "Rice", "language": "Tamil"},
			wantFields: []string{"village"},
		},
		{
			name:       "nothing",
			raw:        nil,
			wantFields: []string{"village", "cropType", "language"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := weatherInput().Validate(tt.raw)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				assert.Len(t, rec, 3)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantFields, ve.FieldNames())
		})
	}
}

func TestValidateIgnoresUnknownFields(t *testing.T) {
	rec, err := weatherInput().Validate(map[string]any{
		"village":  "Nagercoil",
		"cropType": "Rice",
		"language": "Tamil",
		"extra":    "ignored",
		"another":  123,
	})
	require.NoError(t, err)

	want := Record{"village": "Nagercoil", "cropType": "Rice", "language": "Tamil"}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateNonEmpty(t *testing.T) {
	shape := &Shape{
		Name: "weather_output",
		Fields: []Field{
			{Name: "weatherAlert", Kind: KindString, Required: true, NonEmpty: true},
			{Name: "irrigationSchedule", Kind: KindString, Required: true, NonEmpty: true},
			{Name: "note", Kind: KindString},
		},
	}

	rec, err := shape.Validate(map[string]any{"weatherAlert": "Heavy rain", "irrigationSchedule": "Skip 2 days", "note": ""})
	require.NoError(t, err)
	assert.Equal(t, "", rec["note"])

	_, err = shape.Validate(map[string]any{"weatherAlert": "", "irrigationSchedule": " \n"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"weatherAlert", "irrigationSchedule"}, ve.FieldNames())
	assert.Equal(t, "must not be empty", ve.Fields[0].Reason)

	props := shape.JSONSchema()["properties"].(map[string]any)
	assert.Equal(t, 1, props["weatherAlert"].(map[string]any)["minLength"])
	assert.NotContains(t, props["note"], "minLength")
}

func TestValidateRule(t *testing.T) {
	shape := &Shape{
		Name: "application",
		Fields: []Field{
			{Name: "aadhaarNumber", Kind: KindString, Required: true, Rule: "numeric,len=12"},
		},
	}

	_, err := shape.Validate(map[string]any{"aadhaarNumber": "123456789012"})
	assert.NoError(t, err)

	_, err = shape.Validate(map[string]any{"aadhaarNumber": "1234"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "aadhaarNumber", ve.Fields[0].Field)
	assert.Contains(t, ve.Fields[0].Reason, "len=12")
}

func TestValidateNestedOutput(t *testing.T) {
	lo, hi := Range(0, 1)
	shape := &Shape{
		Name: "out",
		Fields: []Field{
			{Name: "confidence", Kind: KindNumber, Required: true, Min: lo, Max: hi},
			{
				Name: "items", Kind: KindArray, Required: true, MinItems: 2,
				Elem: &Field{Kind: KindObject, Shape: &Shape{Fields: []Field{
					{Name: "week", Kind: KindString, Required: true},
					{Name: "price", Kind: KindNumber, Required: true},
				}}},
			},
		},
	}

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"confidence": 1.5,
		"items": [{"week": "Current", "price": 2100}, {"week": "Week +1"}]
	}`), &raw))

	_, err := shape.Validate(raw)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"confidence", "items[1].price"}, ve.FieldNames())

	raw["confidence"] = 0.9
	raw["items"] = []any{map[string]any{"week": "Current", "price": 2100}}
	_, err = shape.Validate(raw)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"items"}, ve.FieldNames())
}

func TestValidateJSONRejectsNonObject(t *testing.T) {
	_, err := weatherInput().ValidateJSON([]byte(`["not", "object"]`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJSONSchema(t *testing.T) {
	lo, hi := Range(0, 1)
	shape := &Shape{
		Name: "disease",
		Fields: []Field{
			{Name: "diseaseName", Kind: KindString, Required: true, Description: "name"},
			{Name: "confidence", Kind: KindNumber, Required: true, Min: lo, Max: hi},
			{Name: "tags", Kind: KindArray, MinItems: 1, Elem: &Field{Kind: KindString}},
		},
	}

	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"diseaseName": map[string]any{"type": "string", "description": "name"},
			"confidence":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"tags": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string"},
			},
		},
		"required": []any{"diseaseName", "confidence"},
	}
	if diff := cmp.Diff(want, shape.JSONSchema()); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}
