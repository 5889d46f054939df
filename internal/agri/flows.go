// Package agri — шесть агрономических flow и их инструменты.
package agri

import (
	"embed"
	"fmt"
	"sort"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/flow"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/prompt"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/tools"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

//go:embed prompts/*.yaml
var promptsFS embed.FS

// Имена flow.
const (
	FlowCropSuggestion    = "crop_suggestion"
	FlowDiseaseDetection  = "disease_detection"
	FlowWeatherIrrigation = "weather_irrigation"
	FlowNewsFeed          = "news_feed"
	FlowMarketPrediction  = "market_prediction"
	FlowKisanAssistant    = "kisan_assistant"
)

// Deps — зависимости инструментов.
type Deps struct {
	// Models и ChatModel нужны suggestCropsByLocation для вложенного запроса.
	Models    *models.Registry
	ChatModel string

	// PickForecast — выбор заглушки погоды; nil = случайно.
	PickForecast func(n int) int
}

// Definitions возвращает определения всех flow с промптами из embed.
func Definitions() ([]*flow.Definition, error) {
	specs := []struct {
		name          string
		input, output *schema.Shape
		toolset       []string
		vision        bool
		validate      flow.PostValidator
	}{
		{name: FlowCropSuggestion, input: CropSuggestionInput, output: CropSuggestionOutput, validate: validateCropSuggestion},
		{name: FlowDiseaseDetection, input: DiseaseDetectionInput, output: DiseaseDetectionOutput, vision: true},
		{name: FlowWeatherIrrigation, input: WeatherInput, output: WeatherOutput, toolset: []string{ToolWeatherForecast}},
		{name: FlowNewsFeed, input: NewsInput, output: NewsOutput},
		{name: FlowMarketPrediction, input: MarketInput, output: MarketOutput, validate: validateMarketPrediction},
		{name: FlowKisanAssistant, input: AssistantInput, output: AssistantOutput, toolset: []string{ToolSuggestCrops}, validate: normalizeAssistant},
	}

	defs := make([]*flow.Definition, 0, len(specs))
	for _, s := range specs {
		pf, err := prompt.LoadFS(promptsFS, "prompts/"+s.name+".yaml")
		if err != nil {
			return nil, err
		}
		defs = append(defs, &flow.Definition{
			Name:         s.name,
			Input:        s.input,
			Output:       s.output,
			Prompt:       pf,
			Tools:        s.toolset,
			Model:        pf.Config.Model,
			Vision:       s.vision,
			PostValidate: s.validate,
		})
	}
	return defs, nil
}

// RegisterFlows регистрирует инструменты и все flow, применяет
// flows.overrides и запечатывает реестр.
func RegisterFlows(flows *flow.Registry, toolRegistry *tools.Registry, deps Deps, cfg config.FlowsConfig) error {
	for _, t := range []tools.Tool{
		NewWeatherTool(deps.PickForecast),
		NewSuggestCropsTool(deps.Models, deps.ChatModel),
	} {
		if err := toolRegistry.Register(t); err != nil {
			return fmt.Errorf("register tool: %w", err)
		}
	}

	defs, err := Definitions()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(defs))
	for _, def := range defs {
		known[def.Name] = true
		if override, ok := cfg.Overrides[def.Name]; ok {
			applyOverride(def, override)
		}
		if err := flows.Register(def); err != nil {
			return err
		}
	}

	var unknown []string
	for name := range cfg.Overrides {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		utils.Warn("Overrides for unknown flows ignored", "flows", unknown)
	}

	flows.Seal()
	utils.Info("Flows registered", "flows", flows.Names())
	return nil
}

// applyOverride меняет модель и параметры генерации на копии промпта.
func applyOverride(def *flow.Definition, o config.FlowConfig) {
	pf := *def.Prompt
	if o.Model != "" {
		def.Model = o.Model
	}
	if o.Temperature > 0 {
		pf.Config.Temperature = o.Temperature
	}
	if o.MaxTokens > 0 {
		pf.Config.MaxTokens = o.MaxTokens
	}
	def.Prompt = &pf
}
