package agri

import (
	"fmt"
	"unicode"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
)

// isLatin сообщает, что все буквы строки — латиница.
// Цифры, пробелы и пунктуация допускаются.
func isLatin(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.In(r, unicode.Latin) {
			return false
		}
	}
	return true
}

// validateCropSuggestion требует английские (латинские) названия культур:
// по ним ответ связывается со справочником.
func validateCropSuggestion(out schema.Record) error {
	crops, _ := out["suggestedCrops"].([]any)
	var errs []schema.FieldError
	for i, c := range crops {
		crop, _ := c.(map[string]any)
		name, _ := crop["cropName"].(string)
		if !isLatin(name) {
			errs = append(errs, schema.FieldError{
				Field:  fmt.Sprintf("suggestedCrops[%d].cropName", i),
				Reason: "must be in English",
			})
		}
	}
	if len(errs) > 0 {
		return &schema.ValidationError{Shape: CropSuggestionOutput.Name, Fields: errs}
	}
	return nil
}

// validateMarketPrediction требует английские метки недель.
func validateMarketPrediction(out schema.Record) error {
	points, _ := out["priceData"].([]any)
	var errs []schema.FieldError
	for i, p := range points {
		point, _ := p.(map[string]any)
		week, _ := point["week"].(string)
		if !isLatin(week) {
			errs = append(errs, schema.FieldError{
				Field:  fmt.Sprintf("priceData[%d].week", i),
				Reason: "must be in English",
			})
		}
	}
	if len(errs) > 0 {
		return &schema.ValidationError{Shape: MarketOutput.Name, Fields: errs}
	}
	return nil
}

// normalizeAssistant возвращает suggestedCrops = "" если модель его не заполнила.
func normalizeAssistant(out schema.Record) error {
	if _, ok := out["suggestedCrops"]; !ok {
		out["suggestedCrops"] = ""
	}
	return nil
}
