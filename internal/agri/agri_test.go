package agri

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/flow"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/tools"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// script — провайдер с заранее заданными ответами.
type script struct {
	mu      sync.Mutex
	replies []llm.Message
	calls   [][]llm.Message
}

func (s *script) Generate(_ context.Context, messages []llm.Message, _ ...any) (llm.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.calls)
	s.calls = append(s.calls, append([]llm.Message(nil), messages...))
	if idx >= len(s.replies) {
		return llm.Message{}, errors.New("script exhausted")
	}
	return s.replies[idx], nil
}

func reply(content string) llm.Message {
	return llm.Message{Role: llm.RoleAssistant, Content: content}
}

func callTool(name, args string) llm.Message {
	return llm.Message{
		Role:      llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{ID: "call_0", Name: name, Args: args}},
	}
}

func newExecutor(t *testing.T, provider llm.Provider, overrides map[string]config.FlowConfig) *flow.Executor {
	t.Helper()

	reg := models.NewRegistry()
	require.NoError(t, reg.Register("chat", config.ModelDef{ModelName: "chat"}, provider))
	require.NoError(t, reg.Register("vision", config.ModelDef{ModelName: "vision"}, provider))

	flows := flow.NewRegistry()
	toolRegistry := tools.NewRegistry()
	deps := Deps{
		Models:       reg,
		ChatModel:    "chat",
		PickForecast: func(int) int { return 0 },
	}
	require.NoError(t, RegisterFlows(flows, toolRegistry, deps, config.FlowsConfig{Overrides: overrides}))

	return flow.NewExecutor(flows, reg, toolRegistry, flow.ExecutorConfig{
		DefaultModel: "chat",
		VisionModel:  "vision",
	})
}

func TestRegisterFlowsSealsRegistry(t *testing.T) {
	exec := newExecutor(t, &script{}, nil)

	assert.True(t, exec.Flows().Sealed())
	assert.ElementsMatch(t, []string{
		FlowCropSuggestion, FlowDiseaseDetection, FlowWeatherIrrigation,
		FlowNewsFeed, FlowMarketPrediction, FlowKisanAssistant,
	}, exec.Flows().Names())

	err := exec.Flows().Register(&flow.Definition{Name: "late"})
	assert.True(t, errors.Is(err, flow.ErrRegistrySealed))
}

func TestRegisterFlowsAppliesOverrides(t *testing.T) {
	exec := newExecutor(t, &script{}, map[string]config.FlowConfig{
		FlowNewsFeed: {Model: "vision", Temperature: 0.1, MaxTokens: 42},
		"unknown":    {Temperature: 0.9},
	})

	def, err := exec.Flows().Get(FlowNewsFeed)
	require.NoError(t, err)
	assert.Equal(t, "vision", def.Model)
	assert.Equal(t, 0.1, def.Prompt.Config.Temperature)
	assert.Equal(t, 42, def.Prompt.Config.MaxTokens)

	// Исходный промпт других flow не меняется
	other, err := exec.Flows().Get(FlowCropSuggestion)
	require.NoError(t, err)
	assert.Equal(t, 0.5, other.Prompt.Config.Temperature)
}

func TestWeatherIrrigationUsesForecastTool(t *testing.T) {
	provider := &script{replies: []llm.Message{
		callTool(ToolWeatherForecast, `{"village":"Nagercoil"}`),
		reply(`{"weatherAlert":"வெயில் அதிகம்","irrigationSchedule":"தினமும் காலை நீர் பாய்ச்சவும்"}`),
	}}
	exec := newExecutor(t, provider, nil)

	res, err := exec.Execute(context.Background(), FlowWeatherIrrigation, map[string]any{
		"village":  "Nagercoil",
		"cropType": "Rice",
		"language": "Tamil",
	})
	require.NoError(t, err)

	assert.Equal(t, "வெயில் அதிகம்", res.Output["weatherAlert"])
	assert.Equal(t, 1, res.ToolRounds)

	require.Len(t, provider.calls, 2)
	first := provider.calls[0]
	assert.Contains(t, first[len(first)-1].Content, "Nagercoil")
	assert.Contains(t, first[len(first)-1].Content, "Tamil")

	second := provider.calls[1]
	toolMsg := second[len(second)-1]
	assert.Equal(t, llm.RoleTool, toolMsg.Role)
	assert.JSONEq(t, `{"temperature":28,"condition":"Sunny","forecast":"Clear skies for the next 3 days. Low chance of rain."}`, toolMsg.Content)
}

func TestWeatherToolForecasts(t *testing.T) {
	tests := []struct {
		pick int
		want string
	}{
		{0, `{"temperature":28,"condition":"Sunny","forecast":"Clear skies for the next 3 days. Low chance of rain."}`},
		{1, `{"temperature":22,"condition":"Cloudy with a chance of rain","forecast":"Expect scattered showers tomorrow afternoon."}`},
		{2, `{"temperature":32,"condition":"Hot and humid","forecast":"Heatwave conditions expected over the weekend."}`},
		{3, `{"temperature":26,"condition":"Partly cloudy","forecast":"Pleasant weather with a light breeze."}`},
	}

	for _, tt := range tests {
		t.Run(forecasts[tt.pick].Condition, func(t *testing.T) {
			registry := tools.NewRegistry()
			require.NoError(t, registry.Register(NewWeatherTool(func(n int) int {
				assert.Equal(t, len(forecasts), n)
				return tt.pick
			})))

			out, err := registry.Invoke(context.Background(), ToolWeatherForecast, `{"village":"Nagercoil"}`)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, out)
		})
	}

	t.Run("random pick stays in range", func(t *testing.T) {
		registry := tools.NewRegistry()
		require.NoError(t, registry.Register(NewWeatherTool(nil)))

		valid := make([]string, 0, len(tests))
		for _, tt := range tests {
			valid = append(valid, tt.want)
		}
		for i := 0; i < 50; i++ {
			out, err := registry.Invoke(context.Background(), ToolWeatherForecast, `{"village":"Pune"}`)
			require.NoError(t, err)
			assert.True(t, slices.ContainsFunc(valid, func(w string) bool { return jsonEqual(t, w, out) }), out)
		}
	})
}

// jsonEqual сравнивает два JSON документа без учёта форматирования.
func jsonEqual(t *testing.T, a, b string) bool {
	t.Helper()
	var va, vb any
	require.NoError(t, json.Unmarshal([]byte(a), &va))
	require.NoError(t, json.Unmarshal([]byte(b), &vb))
	return cmp.Equal(va, vb)
}

func TestWeatherIrrigationTextRules(t *testing.T) {
	t.Run("empty input strings are accepted", func(t *testing.T) {
		provider := &script{replies: []llm.Message{
			reply(`{"weatherAlert":"No alerts","irrigationSchedule":"Water every two days"}`),
		}}
		exec := newExecutor(t, provider, nil)

		res, err := exec.Execute(context.Background(), FlowWeatherIrrigation, map[string]any{
			"village":  "",
			"cropType": "Rice",
			"language": "English",
		})
		require.NoError(t, err)
		assert.Equal(t, "No alerts", res.Output["weatherAlert"])
	})

	t.Run("empty output text is rejected", func(t *testing.T) {
		provider := &script{replies: []llm.Message{
			reply(`{"weatherAlert":"","irrigationSchedule":"  "}`),
		}}
		exec := newExecutor(t, provider, nil)

		_, err := exec.Execute(context.Background(), FlowWeatherIrrigation, map[string]any{
			"village":  "Nagercoil",
			"cropType": "Rice",
			"language": "Tamil",
		})
		var oe *flow.OutputValidationError
		require.ErrorAs(t, err, &oe)
		require.Len(t, oe.Fields, 2)
		assert.Equal(t, "weatherAlert", oe.Fields[0].Field)
		assert.Equal(t, "irrigationSchedule", oe.Fields[1].Field)
	})
}

func TestCropSuggestionOutputRules(t *testing.T) {
	input := map[string]any{
		"country":            "India",
		"region":             "Tamil Nadu",
		"season":             "Kharif",
		"weatherDescription": "Humid, heavy monsoon rain",
		"language":           "Tamil",
	}
	crop := func(name string) string {
		return `{"cropName":"` + name + `","plantingTime":"ஜூன்","soilType":"களிமண்","yieldInfo":"அதிகம்"}`
	}

	tests := []struct {
		name       string
		payload    string
		wantErr    bool
		wantFields []string
	}{
		{
			name:    "english names",
			payload: `{"suggestedCrops":[` + crop("Rice") + `,` + crop("Banana") + `,` + crop("Coconut") + `]}`,
		},
		{
			name:       "localized crop name",
			payload:    `{"suggestedCrops":[` + crop("அரிசி") + `,` + crop("Banana") + `,` + crop("Coconut") + `]}`,
			wantErr:    true,
			wantFields: []string{"suggestedCrops[0].cropName"},
		},
		{
			name:       "too few crops",
			payload:    `{"suggestedCrops":[` + crop("Rice") + `]}`,
			wantErr:    true,
			wantFields: []string{"suggestedCrops"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := newExecutor(t, &script{replies: []llm.Message{reply(tt.payload)}}, nil)

			res, err := exec.Execute(context.Background(), FlowCropSuggestion, input)
			if !tt.wantErr {
				require.NoError(t, err)
				crops := res.Output["suggestedCrops"].([]any)
				require.Len(t, crops, 3)
				for _, c := range crops {
					assert.True(t, isLatin(c.(map[string]any)["cropName"].(string)))
				}
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, flow.ErrOutputValidation))
			var oe *flow.OutputValidationError
			require.True(t, errors.As(err, &oe))
			var fields []string
			for _, f := range oe.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func leafDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return utils.EncodeDataURI("image/png", buf.Bytes())
}

func TestDiseaseDetection(t *testing.T) {
	t.Run("image attached and confidence in range", func(t *testing.T) {
		provider := &script{replies: []llm.Message{
			reply("```json\n{\"diseaseName\":\"Leaf blast\",\"confidence\":0.87,\"treatment\":\"Tricyclazole spray\",\"fertilizerRecommendations\":\"Reduce nitrogen\"}\n```"),
		}}
		exec := newExecutor(t, provider, nil)

		res, err := exec.Execute(context.Background(), FlowDiseaseDetection, map[string]any{
			"photoDataUri": leafDataURI(t),
			"language":     "English",
		})
		require.NoError(t, err)
		assert.Equal(t, 0.87, res.Output["confidence"])
		assert.Equal(t, "vision", res.Model)

		msgs := provider.calls[0]
		last := msgs[len(msgs)-1]
		require.Len(t, last.Images, 1)
		assert.True(t, strings.HasPrefix(last.Images[0], "data:image/png;base64,"))
		assert.NotContains(t, last.Content, "base64")
	})

	t.Run("confidence out of range", func(t *testing.T) {
		provider := &script{replies: []llm.Message{
			reply(`{"diseaseName":"Leaf blast","confidence":1.5,"treatment":"t","fertilizerRecommendations":"f"}`),
		}}
		exec := newExecutor(t, provider, nil)

		_, err := exec.Execute(context.Background(), FlowDiseaseDetection, map[string]any{
			"photoDataUri": leafDataURI(t),
			"language":     "English",
		})
		assert.True(t, errors.Is(err, flow.ErrOutputValidation))
	})

	t.Run("bad data uri never reaches the model", func(t *testing.T) {
		provider := &script{}
		exec := newExecutor(t, provider, nil)

		_, err := exec.Execute(context.Background(), FlowDiseaseDetection, map[string]any{
			"photoDataUri": "not-a-data-uri",
			"language":     "English",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrValidation))
		assert.Empty(t, provider.calls)
	})
}

func TestKisanAssistantNestedSuggestion(t *testing.T) {
	provider := &script{replies: []llm.Message{
		callTool(ToolSuggestCrops, `{"location":"Nagercoil"}`),
		reply(" Rice,Banana,,  Coconut\n"),
		reply(`{"answer":"நெல் மற்றும் வாழை பயிரிடலாம்","suggestedCrops":"நெல், வாழை, தென்னை"}`),
	}}
	exec := newExecutor(t, provider, nil)

	res, err := exec.Execute(context.Background(), FlowKisanAssistant, map[string]any{
		"language": "Tamil",
		"question": "What should I grow?",
		"location": "Nagercoil",
	})
	require.NoError(t, err)
	assert.Equal(t, "நெல், வாழை, தென்னை", res.Output["suggestedCrops"])

	require.Len(t, provider.calls, 3)
	nested := provider.calls[1]
	require.Len(t, nested, 1)
	assert.Equal(t, suggestCropsPrompt("Nagercoil"), nested[0].Content)

	final := provider.calls[2]
	assert.JSONEq(t, `"Rice, Banana, Coconut"`, final[len(final)-1].Content)
}

func TestKisanAssistantEmptySuggestions(t *testing.T) {
	provider := &script{replies: []llm.Message{
		reply(`{"answer":"Water twice a week."}`),
	}}
	exec := newExecutor(t, provider, nil)

	res, err := exec.Execute(context.Background(), FlowKisanAssistant, map[string]any{
		"language": "English",
		"question": "How often should I water tomatoes?",
		"location": "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, "", res.Output["suggestedCrops"])
}

func TestMarketPredictionWeekLabels(t *testing.T) {
	good := `{"prediction":"कीमतें बढ़ेंगी","priceData":[{"week":"Week -1","price":2100},{"week":"Current","price":2150}]}`
	bad := `{"prediction":"कीमतें बढ़ेंगी","priceData":[{"week":"सप्ताह 1","price":2100}]}`

	input := map[string]any{"cropName": "Wheat", "marketName": "Azadpur", "language": "Hindi"}

	exec := newExecutor(t, &script{replies: []llm.Message{reply(good)}}, nil)
	res, err := exec.Execute(context.Background(), FlowMarketPrediction, input)
	require.NoError(t, err)
	assert.Len(t, res.Output["priceData"], 2)

	exec = newExecutor(t, &script{replies: []llm.Message{reply(bad)}}, nil)
	_, err = exec.Execute(context.Background(), FlowMarketPrediction, input)
	assert.True(t, errors.Is(err, flow.ErrOutputValidation))
}

func TestNewsFeedRequiresLanguage(t *testing.T) {
	provider := &script{}
	exec := newExecutor(t, provider, nil)

	_, err := exec.Execute(context.Background(), FlowNewsFeed, map[string]any{"region": "Punjab"})
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"language"}, ve.FieldNames())
	assert.Empty(t, provider.calls)
}

func TestIsLatin(t *testing.T) {
	tests := map[string]bool{
		"Rice":                 true,
		"Finger Millet (Ragi)": true,
		"Week +1":              true,
		"அரிசி":                false,
		"चावल":                 false,
		"":                     true,
	}
	for in, want := range tests {
		assert.Equal(t, want, isLatin(in), in)
	}
}
