package analyzer

import (
	"context"
	"log"
	"strings"

	"leafdoc/internal/config"
	"leafdoc/internal/domain"
	"leafdoc/internal/encoder"
	"leafdoc/internal/port"
)

// Client implements port.Analyzer on top of a VisionModel.
// Each call makes exactly one model request; there is no retry or caching.
type Client struct {
	model    port.VisionModel
	encoder  *encoder.Encoder
	apiKey   string
	provider string
}

// NewClient creates an analysis client. The credential comes from cfg and is
// checked on every call before any network activity.
func NewClient(model port.VisionModel, enc *encoder.Encoder, cfg *config.AnalyzerConfig) *Client {
	return &Client{
		model:    model,
		encoder:  enc,
		apiKey:   cfg.APIKey,
		provider: cfg.Provider,
	}
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

func (c *Client) Analyze(ctx context.Context, input port.ImageInput) (*domain.AnalysisResult, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingAPIKey
	}

	img := input.Encoded
	if img == nil {
		var err error
		img, err = c.encoder.EncodeBytes(input.Data, input.ContentType)
		if err != nil {
			log.Printf("analyzer.Client.Analyze: rejecting %q: %v", input.FileName, err)
			return nil, err
		}
	}

	text, err := c.model.Generate(ctx, port.GenerateInput{
		Prompt: BuildDiagnosisPrompt(),
		Image:  img,
		Schema: ResponseSchema(),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Printf("analyzer.Client.Analyze: %s call failed for %q: %v", c.provider, input.FileName, err)
		return nil, domain.ErrAnalysisFailed
	}

	result, err := DecodeResult(text)
	if err != nil {
		log.Printf("analyzer.Client.Analyze: %s returned unusable output for %q: %v (raw: %s)",
			c.provider, input.FileName, err, truncate(text, 500))
		return nil, domain.ErrAnalysisFailed
	}

	log.Printf("analyzer.Client.Analyze: %q diagnosed (healthy=%t, disease=%q)",
		input.FileName, result.IsHealthy, result.DiseaseName)
	return result, nil
}
