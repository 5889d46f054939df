package agri

import "github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"

// str — обязательное строковое поле входа; пустая строка допустима.
func str(name, desc string) schema.Field {
	return schema.Field{Name: name, Kind: schema.KindString, Required: true, Description: desc}
}

// text — обязательное непустое строковое поле ответа модели.
func text(name, desc string) schema.Field {
	f := str(name, desc)
	f.NonEmpty = true
	return f
}

var languageField = str("language", "The language for the response.")

// CropSuggestionInput — вход crop_suggestion.
var CropSuggestionInput = &schema.Shape{
	Name: "CropSuggestionInput",
	Fields: []schema.Field{
		str("country", "The country of the user."),
		str("region", "The region/state of the user."),
		str("season", "The current season."),
		str("weatherDescription", "A description of the current weather conditions."),
		languageField,
	},
}

// CropSuggestionOutput — выход crop_suggestion.
var CropSuggestionOutput = &schema.Shape{
	Name: "CropSuggestionOutput",
	Fields: []schema.Field{{
		Name:        "suggestedCrops",
		Kind:        schema.KindArray,
		Required:    true,
		MinItems:    3,
		Description: "A list of suggested crops for the given location and conditions.",
		Elem: &schema.Field{Kind: schema.KindObject, Shape: &schema.Shape{
			Name: "SuggestedCrop",
			Fields: []schema.Field{
				text("cropName", "The name of the suggested crop. This must be in English."),
				text("plantingTime", "The optimal planting time for the crop."),
				text("soilType", "The preferred soil type for the crop."),
				text("yieldInfo", "Information about the expected yield of the crop."),
			},
		}},
	}},
}

// DiseaseDetectionInput — вход disease_detection.
var DiseaseDetectionInput = &schema.Shape{
	Name: "DetectCropDiseaseInput",
	Fields: []schema.Field{
		{
			Name:        "photoDataUri",
			Kind:        schema.KindString,
			Required:    true,
			Rule:        "datauri",
			Description: "A photo of a leaf as a data URI: 'data:<mimetype>;base64,<encoded_data>'.",
		},
		languageField,
	},
}

var confidenceMin, confidenceMax = schema.Range(0, 1)

// DiseaseDetectionOutput — выход disease_detection.
var DiseaseDetectionOutput = &schema.Shape{
	Name: "DetectCropDiseaseOutput",
	Fields: []schema.Field{
		// Для здорового листа модель может вернуть пустое имя.
		str("diseaseName", "The name of the detected disease, if any."),
		{
			Name:        "confidence",
			Kind:        schema.KindNumber,
			Required:    true,
			Min:         confidenceMin,
			Max:         confidenceMax,
			Description: "The confidence level of the disease detection (0-1).",
		},
		text("treatment", "Suggested treatments for the detected disease."),
		text("fertilizerRecommendations", "Recommendations for fertilizer application to address the disease."),
	},
}

// WeatherInput — вход weather_irrigation.
var WeatherInput = &schema.Shape{
	Name: "WeatherAndIrrigationAlertsInput",
	Fields: []schema.Field{
		str("village", "The village name."),
		str("cropType", "The type of crop planted."),
		languageField,
	},
}

// WeatherOutput — выход weather_irrigation.
var WeatherOutput = &schema.Shape{
	Name: "WeatherAndIrrigationAlertsOutput",
	Fields: []schema.Field{
		text("weatherAlert", "Weather alerts for the village."),
		text("irrigationSchedule", "Recommended irrigation schedule based on weather and crop type."),
	},
}

// NewsInput — вход news_feed.
var NewsInput = &schema.Shape{
	Name: "AgriculturalNewsInput",
	Fields: []schema.Field{
		str("region", "The region for which to retrieve agricultural news."),
		str("language", "The language for the news headlines."),
	},
}

// NewsOutput — выход news_feed.
var NewsOutput = &schema.Shape{
	Name: "AgriculturalNewsOutput",
	Fields: []schema.Field{{
		Name:        "newsItems",
		Kind:        schema.KindArray,
		Required:    true,
		Description: "A list of agricultural news items for the specified region.",
		Elem:        &schema.Field{Kind: schema.KindString, Required: true, NonEmpty: true},
	}},
}

// MarketInput — вход market_prediction.
var MarketInput = &schema.Shape{
	Name: "MarketPricePredictorInput",
	Fields: []schema.Field{
		str("cropName", "The name of the crop."),
		str("marketName", "The name of the market."),
		languageField,
	},
}

var priceMin = func() *float64 { v := 0.0; return &v }()

// MarketOutput — выход market_prediction.
var MarketOutput = &schema.Shape{
	Name: "MarketPricePredictorOutput",
	Fields: []schema.Field{
		text("prediction", "A textual summary of the price prediction and recommendation."),
		{
			Name:        "priceData",
			Kind:        schema.KindArray,
			Required:    true,
			Description: "A list of price data points for the last and next few weeks.",
			Elem: &schema.Field{Kind: schema.KindObject, Shape: &schema.Shape{
				Name: "PricePoint",
				Fields: []schema.Field{
					text("week", "The week label (e.g., 'Week 1', 'Current')."),
					{
						Name:        "price",
						Kind:        schema.KindNumber,
						Required:    true,
						Min:         priceMin,
						Description: "The predicted or historical price for that week.",
					},
				},
			}},
		},
	},
}

// AssistantInput — вход kisan_assistant.
var AssistantInput = &schema.Shape{
	Name: "KisanVoiceAssistantInput",
	Fields: []schema.Field{
		str("language", "The language of the farmer."),
		str("question", "The question asked by the farmer."),
		str("location", "The location of the farmer (city, state, or coordinates)."),
	},
}

// AssistantOutput — выход kisan_assistant. suggestedCrops может быть пустой строкой.
var AssistantOutput = &schema.Shape{
	Name: "KisanVoiceAssistantOutput",
	Fields: []schema.Field{
		text("answer", "The answer to the farmer question, translated into their language."),
		{
			Name:        "suggestedCrops",
			Kind:        schema.KindString,
			Description: "Suggested crops based on location, translated into their language.",
		},
	},
}
