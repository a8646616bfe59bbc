package claude

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
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
	providerName = "claude"
)

// Model implements port.VisionModel using the Anthropic Messages API.
// The Messages API has no response schema option, so the schema is sent in the prompt.
type Model struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// Register adds the claude provider to the analyzer registry.
func Register() {
	analyzer.RegisterProvider(providerName, func(cfg *config.AnalyzerConfig) (port.VisionModel, error) {
		return NewModel(cfg), nil
	})
}

// NewModel creates a Claude-backed vision model.
func NewModel(cfg *config.AnalyzerConfig) *Model {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return NewModelWithEndpoint(cfg, endpoint)
}

// NewModelWithEndpoint creates a model pointing at a custom API endpoint (for testing).
func NewModelWithEndpoint(cfg *config.AnalyzerConfig, endpoint string) *Model {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Model{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Timeout()},
	}
}

func (m *Model) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	if input.Image == nil {
		return "", fmt.Errorf("claude: no image supplied")
	}

	reqBody := map[string]interface{}{
		"model":      m.model,
		"max_tokens": 4096,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "image",
						"source": map[string]interface{}{
							"type":       "base64",
							"media_type": input.Image.MIMEType,
							"data":       input.Image.Base64,
						},
					},
					{
						"type": "text",
						"text": analyzer.AppendSchema(input.Prompt, input.Schema),
					},
				},
			},
		},
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
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
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

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func extractText(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if resp.StopReason == "max_tokens" {
		return "", fmt.Errorf("output truncated (stop_reason: max_tokens)")
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return b.String(), nil
}
