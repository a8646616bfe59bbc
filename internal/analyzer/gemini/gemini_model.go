package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"leafdoc/internal/analyzer"
	"leafdoc/internal/config"
	"leafdoc/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.5-flash"
	providerName = "gemini"
)

// Model implements port.VisionModel using Google's Gemini generateContent API.
type Model struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// Register adds the gemini provider to the analyzer registry.
func Register() {
	analyzer.RegisterProvider(providerName, func(cfg *config.AnalyzerConfig) (port.VisionModel, error) {
		return NewModel(cfg), nil
	})
}

// NewModel creates a Gemini-backed vision model.
func NewModel(cfg *config.AnalyzerConfig) *Model {
	return NewModelWithEndpoint(cfg, cfg.Endpoint)
}

// NewModelWithEndpoint creates a model pointing at a custom API endpoint (for testing).
func NewModelWithEndpoint(cfg *config.AnalyzerConfig, endpoint string) *Model {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Model{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Timeout()},
	}
}

// Name returns the model identifier sent to the API.
func (m *Model) Name() string {
	return m.model
}

func (m *Model) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	if input.Image == nil {
		return "", fmt.Errorf("gemini: no image supplied")
	}

	generationConfig := map[string]interface{}{
		"responseMimeType": "application/json",
		"maxOutputTokens":  8192,
	}
	if input.Schema != nil {
		generationConfig["responseSchema"] = toGeminiSchema(input.Schema)
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"text": input.Prompt,
					},
					{
						"inline_data": map[string]interface{}{
							"mime_type": input.Image.MIMEType,
							"data":      input.Image.Base64,
						},
					},
				},
			},
		},
		"generationConfig": generationConfig,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", analyzer.NewStatusError(providerName, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return extractText(respBody)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func extractText(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("request blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}

	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts (finish reason %s)", candidate.FinishReason)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// toGeminiSchema rewrites JSON schema type names into the upper-case enum
// values the Gemini API expects.
func toGeminiSchema(schema map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(schema))
	for k, v := range schema {
		switch k {
		case "type":
			if s, ok := v.(string); ok {
				out[k] = strings.ToUpper(s)
				continue
			}
			out[k] = v
		case "properties":
			props, ok := v.(map[string]interface{})
			if !ok {
				out[k] = v
				continue
			}
			converted := make(map[string]interface{}, len(props))
			for name, p := range props {
				if pm, ok := p.(map[string]interface{}); ok {
					converted[name] = toGeminiSchema(pm)
				} else {
					converted[name] = p
				}
			}
			out[k] = converted
		case "items":
			if im, ok := v.(map[string]interface{}); ok {
				out[k] = toGeminiSchema(im)
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	return out
}
