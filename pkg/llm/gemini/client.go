// Package gemini реализует адаптер llm.Provider поверх Google Gen AI SDK.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/tools"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// Client реализует llm.Provider для моделей Gemini.
type Client struct {
	client   *genai.Client
	defaults llm.GenerateOptions
}

// NewClient создает Gemini клиент на основе конфигурации модели.
func NewClient(ctx context.Context, modelDef config.ModelDef) (*Client, error) {
	if modelDef.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  modelDef.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if modelDef.BaseURL != "" {
		cc.HTTPOptions.BaseURL = modelDef.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		client: client,
		defaults: llm.GenerateOptions{
			Model:       modelDef.ModelName,
			Temperature: modelDef.Temperature,
			MaxTokens:   modelDef.MaxTokens,
		},
	}, nil
}

// Generate выполняет запрос GenerateContent и возвращает ответ модели.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, opts ...any) (llm.Message, error) {
	startTime := time.Now()

	// 1. Разбираем opts
	var toolDefs []tools.ToolDefinition
	for _, opt := range opts {
		switch v := opt.(type) {
		case []tools.ToolDefinition:
			toolDefs = append(toolDefs, v...)
		case llm.GenerateOption:
		default:
			return llm.Message{}, fmt.Errorf("invalid option type: expected []tools.ToolDefinition or llm.GenerateOption, got %T", opt)
		}
	}
	params := llm.ApplyOptions(c.defaults, opts...)

	// 2. Конвертируем историю
	system, contents, err := buildContents(messages)
	if err != nil {
		return llm.Message{}, err
	}

	cfg := buildConfig(params, system, toolDefs)

	// 3. Вызываем API
	resp, err := c.client.Models.GenerateContent(ctx, params.Model, contents, cfg)
	if err != nil {
		utils.Error("GenAI request failed",
			"error", err,
			"model", params.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("gemini api error: %w", err)
	}

	// 4. Маппим ответ
	result, err := parseResponse(resp)
	if err != nil {
		return llm.Message{}, err
	}

	utils.Info("LLM response received",
		"model", params.Model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

func buildConfig(params llm.GenerateOptions, system string, toolDefs []tools.ToolDefinition) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if params.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(params.Temperature))
	}
	if params.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(params.MaxTokens)
	}
	if len(toolDefs) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(toolDefs))
		for i, def := range toolDefs {
			decls[i] = &genai.FunctionDeclaration{
				Name:                 def.Name,
				Description:          def.Description,
				ParametersJsonSchema: map[string]any(def.Parameters),
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	} else if params.Format == llm.FormatJSON {
		// Gemini не сочетает function calling с JSON MIME типом
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

// buildContents переводит историю в формат GenAI.
// Системные сообщения склеиваются в SystemInstruction.
func buildContents(messages []llm.Message) (string, []*genai.Content, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)

		case llm.RoleUser:
			parts := make([]*genai.Part, 0, 1+len(m.Images))
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, img := range m.Images {
				mime, data, err := utils.ParseDataURI(img)
				if err != nil {
					return "", nil, fmt.Errorf("gemini supports only inline data URI images: %w", err)
				}
				parts = append(parts, genai.NewPartFromBytes(data, mime))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

		case llm.RoleAssistant:
			parts := make([]*genai.Part, 0, 1+len(m.ToolCalls))
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if strings.TrimSpace(tc.Args) != "" {
					if err := json.Unmarshal([]byte(tc.Args), &args); err != nil {
						return "", nil, fmt.Errorf("tool call %s: invalid args: %w", tc.Name, err)
					}
				}
				parts = append(parts, genai.NewPartFromFunctionCall(tc.Name, args))
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))

		case llm.RoleTool:
			response := toolResponse(m.Content)
			contents = append(contents, genai.NewContentFromParts(
				[]*genai.Part{genai.NewPartFromFunctionResponse(m.Name, response)},
				genai.RoleUser,
			))

		default:
			return "", nil, fmt.Errorf("unsupported message role: %s", m.Role)
		}
	}

	return strings.Join(system, "\n\n"), contents, nil
}

// toolResponse оборачивает JSON результат инструмента в объект,
// как того требует FunctionResponse.
func toolResponse(content string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		return obj
	}
	var value any
	if err := json.Unmarshal([]byte(content), &value); err == nil {
		return map[string]any{"output": value}
	}
	return map[string]any{"output": content}
}

func parseResponse(resp *genai.GenerateContentResponse) (llm.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return llm.Message{}, fmt.Errorf("no candidates in response")
	}

	result := llm.Message{
		Role:    llm.RoleAssistant,
		Content: resp.Text(),
	}

	for i, fc := range resp.FunctionCalls() {
		args, err := json.Marshal(fc.Args)
		if err != nil {
			return llm.Message{}, fmt.Errorf("marshal function call args: %w", err)
		}
		id := fc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
			ID:   id,
			Name: fc.Name,
			Args: string(args),
		})
	}

	return result, nil
}
