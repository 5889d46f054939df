package agri

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/tools"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

const (
	ToolWeatherForecast = "getWeatherForecast"
	ToolSuggestCrops    = "suggestCropsByLocation"
)

// Forecast — результат getWeatherForecast.
type Forecast struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Forecast    string  `json:"forecast"`
}

// Заглушка погодного API: одно из четырёх фиксированных состояний.
var forecasts = []Forecast{
	{Temperature: 28, Condition: "Sunny", Forecast: "Clear skies for the next 3 days. Low chance of rain."},
	{Temperature: 22, Condition: "Cloudy with a chance of rain", Forecast: "Expect scattered showers tomorrow afternoon."},
	{Temperature: 32, Condition: "Hot and humid", Forecast: "Heatwave conditions expected over the weekend."},
	{Temperature: 26, Condition: "Partly cloudy", Forecast: "Pleasant weather with a light breeze."},
}

// NewWeatherTool создаёт getWeatherForecast. pick(n) выбирает индекс в [0, n);
// nil — rand.IntN.
func NewWeatherTool(pick func(n int) int) *tools.ShapedTool {
	if pick == nil {
		pick = rand.IntN
	}
	return &tools.ShapedTool{
		Name:        ToolWeatherForecast,
		Description: "Get the current weather data and forecast for a specific village.",
		Input: &schema.Shape{
			Name:   "WeatherForecastInput",
			Fields: []schema.Field{str("village", "The village name.")},
		},
		Output: &schema.Field{Kind: schema.KindObject, Shape: &schema.Shape{
			Name: "WeatherForecast",
			Fields: []schema.Field{
				{Name: "temperature", Kind: schema.KindNumber, Required: true, Description: "The current temperature in Celsius."},
				str("condition", "The current weather condition."),
				str("forecast", "A short weather forecast for the next few days."),
			},
		}},
		Handler: func(ctx context.Context, args schema.Record) (any, error) {
			utils.Debug("Weather placeholder called", "village", args.String("village"))
			return forecasts[pick(len(forecasts))], nil
		},
		Default: map[string]any{},
	}
}

// NewSuggestCropsTool создаёт suggestCropsByLocation: вложенный запрос к модели,
// ответ — короткий список культур через запятую на английском.
func NewSuggestCropsTool(registry *models.Registry, model string) *tools.ShapedTool {
	return &tools.ShapedTool{
		Name:        ToolSuggestCrops,
		Description: "Suggests crops to plant based on the location, season, and climate. The result is always in English.",
		Input: &schema.Shape{
			Name:   "SuggestCropsInput",
			Fields: []schema.Field{str("location", "The location to suggest crops for (city, state, or coordinates).")},
		},
		Output: &schema.Field{Kind: schema.KindString},
		Handler: func(ctx context.Context, args schema.Record) (any, error) {
			provider, _, err := registry.Get(model)
			if err != nil {
				return nil, err
			}
			utils.Debug("Nested crop suggestion", "location", args.String("location"), "model", model)

			reply, err := provider.Generate(ctx, []llm.Message{{
				Role:    llm.RoleUser,
				Content: suggestCropsPrompt(args.String("location")),
			}}, llm.WithMaxTokens(100))
			if err != nil {
				return nil, fmt.Errorf("nested generation: %w", err)
			}
			// Список приводится к виду "Rice, Wheat, Maize".
			return strings.Join(utils.SplitChunks(reply.Content, ","), ", "), nil
		},
		Default: "",
	}
}

func suggestCropsPrompt(location string) string {
	return fmt.Sprintf("Suggest a short, comma-separated list of 3-4 crops suitable for growing in %s. Respond in English only.", location)
}
