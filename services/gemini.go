package services

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI model to use for the client.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

// The Stringer interface for LLMModelName.
func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func Int32Pointer(i int32) *int32 {
	return &i
}

type LLMResponse struct {
	Response           string `json:"response"`
	InputTokenCount    int32  `json:"input_token_count"`
	Thoughts           string `json:"thoughts"`
	ThoughtsTokenCount int32  `json:"thoughts_token_count"`
	OutputTokenCount   int32  `json:"output_token_count"`
	TotalTokenCount    int32  `json:"total_token_count"`
	IsTest             bool   `json:"is_test"`
}

// StylistOutfitResponse is the JSON shape the model is asked to return.
type StylistOutfitResponse struct {
	Name        string  `json:"name"`
	ItemIDs     []int64 `json:"item_ids"`
	Occasion    string  `json:"occasion"`
	Description string  `json:"description"`
	StyleAdvice string  `json:"style_advice"`
}

type OutfitStylist interface {
	GenerateOutfit(wardrobeJSON string, weather string, mood string, occasion string, modelName LLMModelName) (*LLMResponse, error)
}

type GoogleOutfitStylist struct{}

type ResponseWithThoughts struct {
	Thoughts string `json:"thoughts"`
	Text     string `json:"text"`
}

func GetFirstCandidateTextWithThoughts(result *genai.GenerateContentResponse) (*ResponseWithThoughts, error) {
	var thinkingContent string
	for _, c := range result.Candidates {
		fmt.Println("Finish reason: ", c.FinishReason, " Finish message: ", c.FinishMessage)

		if len(c.SafetyRatings) > 0 {
			fmt.Println("[Safety] Safety ratings present:", len(c.SafetyRatings))
			for _, rating := range c.SafetyRatings {
				fmt.Println("[Safety] rating:", rating.Category, "Score:", rating.Probability, "Severity score:", rating.SeverityScore, " Blocked:", rating.Blocked)
				if rating.Blocked {
					return nil, fmt.Errorf("content violation: couldn't style the wardrobe, because it contains %s,", rating.Category)
				}
			}
		}
		for _, part := range c.Content.Parts {
			if part.Thought && part.Text != "" {
				if result.UsageMetadata != nil && result.UsageMetadata.ThoughtsTokenCount > 25000 {
					fmt.Println("Warning: Thought content is too long:", result.UsageMetadata.ThoughtsTokenCount, part.Text)
				}
				thinkingContent = part.Text
				continue
			}
		}
	}
	return &ResponseWithThoughts{
		Thoughts: thinkingContent,
		Text:     result.Text(),
	}, nil
}

func (GoogleOutfitStylist) GenerateOutfit(wardrobeJSON string, weather string, mood string, occasion string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	prompt := `Wardrobe items as JSON array (each item has "id", "name", "category", "color", "season", "tags"):
` + wardrobeJSON + `
Current weather: ` + weather + `
Requested mood: ` + mood + `
Requested occasion: ` + occasion

	parts := []*genai.Part{{Text: prompt}}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  50000,
		Temperature:      floatPointer(1),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert personal fashion stylist. Compose exactly one outfit using ONLY items from the provided wardrobe JSON. Follow the below instructions. Do not deviate from these requirements. Return the response in JSON format with the specified fields.

1. Pick at most one item per category from: tops, bottoms, outerwear, shoes, accessories. A dress may replace tops and bottoms together. Never invent items or reuse an id twice.
2. Respect the given weather: no light fabrics in cold weather, no heavy outerwear in hot weather, prefer water resistant items when it rains or snows.
3. Respect the requested mood and occasion when choosing colors and silhouettes. If the wardrobe is too small for a full outfit, pick the best available subset.
4. Return the following JSON fields:
   - **name**: A short catchy outfit name, at most five words.
   - **item_ids**: Array of the chosen wardrobe item ids as integers.
   - **occasion**: The occasion this outfit works for.
   - **description**: Two or three sentences describing the outfit.
   - **style_advice**: One concrete styling tip for wearing this outfit.`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"name": {
					Type: "string",
				},
				"item_ids": {
					Type:  "array",
					Items: &genai.Schema{Type: "integer"},
				},
				"occasion": {
					Type: "string",
				},
				"description": {
					Type: "string",
				},
				"style_advice": {
					Type: "string",
				},
			},
			Required: []string{"name", "item_ids", "description", "style_advice"},
		},
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	var inputTokenCount int32
	var thoughtsTokenCount int32
	var outputTokenCount int32
	var totalTokenCount int32
	if result.UsageMetadata != nil {
		inputTokenCount = result.UsageMetadata.PromptTokenCount
		thoughtsTokenCount = result.UsageMetadata.ThoughtsTokenCount
		outputTokenCount = result.UsageMetadata.CandidatesTokenCount
		totalTokenCount = result.UsageMetadata.TotalTokenCount
		fmt.Println("Input token count:", inputTokenCount)
		fmt.Println("Output token count:", outputTokenCount)
		fmt.Println("Thoughts token count:", thoughtsTokenCount)
		fmt.Println("Total token count:", totalTokenCount)
	} else {
		fmt.Println("UsageMetadata is nil!")
	}

	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		if result.PromptFeedback != nil {
			fmt.Println(result.PromptFeedback.BlockReason)
			fmt.Println(result.PromptFeedback.BlockReasonMessage)
			fmt.Println(result.PromptFeedback.SafetyRatings)
			return nil, fmt.Errorf("content violation: %s ", result.PromptFeedback.BlockReasonMessage)
		}
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}

	return &LLMResponse{
		Response:           llmResponseText.Text,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}
