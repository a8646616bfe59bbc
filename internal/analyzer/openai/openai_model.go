package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"leafdoc/internal/analyzer"
	"leafdoc/internal/config"
	"leafdoc/internal/port"
)

const (
	defaultModel = "gpt-4o-mini"
	providerName = "openai"
	maxTokens    = 2048
)

// Model implements port.VisionModel using the OpenAI chat completions API.
type Model struct {
	client *goopenai.Client
	model  string
}

// Register adds the openai provider to the analyzer registry.
func Register() {
	analyzer.RegisterProvider(providerName, func(cfg *config.AnalyzerConfig) (port.VisionModel, error) {
		return NewModel(cfg), nil
	})
}

// NewModel creates an OpenAI-backed vision model. cfg.Endpoint overrides the API base URL.
func NewModel(cfg *config.AnalyzerConfig) *Model {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Model{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (m *Model) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	if input.Image == nil {
		return "", fmt.Errorf("openai: no image supplied")
	}

	req := goopenai.ChatCompletionRequest{
		Model:               m.model,
		MaxCompletionTokens: maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{
						Type: goopenai.ChatMessagePartTypeText,
						Text: input.Prompt,
					},
					{
						Type: goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{
							URL:    input.Image.DataURL(),
							Detail: goopenai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		ResponseFormat: responseFormat(input.Schema),
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", analyzer.NewRateLimitError(providerName, err, 0)
		}
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonLength {
		return "", fmt.Errorf("output truncated (finish_reason: length)")
	}
	return choice.Message.Content, nil
}

func responseFormat(schema map[string]interface{}) *goopenai.ChatCompletionResponseFormat {
	if schema == nil {
		return &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return &goopenai.ChatCompletionResponseFormat{
		Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
			Name:   "plant_diagnosis",
			Schema: strictSchema(schema),
			Strict: true,
		},
	}
}

// strictSchema adds the additionalProperties=false marker strict mode requires.
type strictSchema map[string]interface{}

func (s strictSchema) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out["additionalProperties"] = false
	return json.Marshal(out)
}
