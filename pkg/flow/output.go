package flow

import (
	"encoding/json"
	"errors"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// parseOutput превращает текст ответа модели в Record по OutputShape.
// Частичных результатов не бывает: либо весь объект, либо ошибка.
func parseOutput(def *Definition, content string) (schema.Record, error) {
	// 1. Пустой ответ
	payload := utils.CleanJsonBlock(content)
	if payload == "" {
		return nil, &OutputValidationError{Flow: def.Name, Reason: "empty payload"}
	}

	// 2. Модель могла окружить JSON пояснениями до или после объекта
	if !json.Valid([]byte(payload)) {
		payload = utils.ExtractJSONObject(payload)
		if payload == "" {
			return nil, &OutputValidationError{Flow: def.Name, Reason: "no JSON object in payload"}
		}
	}

	// 3. Проверка по форме
	out, err := def.Output.ValidateJSON([]byte(payload))
	if err != nil {
		return nil, toOutputError(def.Name, "shape mismatch", err)
	}

	// 4. Дополнительные правила flow
	if def.PostValidate != nil {
		if err := def.PostValidate(out); err != nil {
			return nil, toOutputError(def.Name, "post-validation failed", err)
		}
	}

	return out, nil
}

func toOutputError(flow, reason string, err error) error {
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return &OutputValidationError{Flow: flow, Reason: reason, Fields: ve.Fields}
	}
	return &OutputValidationError{Flow: flow, Reason: reason + ": " + err.Error()}
}
