// Package utils предоставляет вспомогательные функции для обработки ответов LLM.
package utils

import (
	"strings"
)

// CleanJsonBlock удаляет markdown-обёртку вокруг JSON.
//
// LLM часто возвращает JSON обёрнутым в markdown кодовые блоки:
//
//	```json
//	{"key": "value"}
//	```
//
// Тег языка после ``` сравнивается без учёта регистра.
func CleanJsonBlock(s string) string {
	s = strings.TrimSpace(s)

	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
			rest = rest[4:]
		}
		s = rest
	}
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// ExtractJSONObject находит первый сбалансированный JSON-объект в тексте.
//
// Скобки внутри строковых литералов не учитываются. Возвращает пустую
// строку, если объект не найден или не закрыт.
func ExtractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// SplitChunks разбивает текст на части по разделителю, отбрасывая пустые.
//
// Примеры:
//
//	SplitChunks("Rice, Wheat,, Maize", ",") → ["Rice", "Wheat", "Maize"]
func SplitChunks(s string, separator string) []string {
	if separator == "" {
		return []string{strings.TrimSpace(s)}
	}

	chunks := strings.Split(s, separator)
	result := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
