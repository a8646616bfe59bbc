package port

import (
	"context"

	"leafdoc/internal/domain"
	"leafdoc/internal/encoder"
)

// GenerateInput carries one multimodal request to a vision model.
type GenerateInput struct {
	Prompt string
	Image  *encoder.EncodedImage
	// Schema is the JSON schema the response text must conform to.
	Schema map[string]interface{}
}

// VisionModel abstracts a hosted multimodal model that returns raw response text.
type VisionModel interface {
	Generate(ctx context.Context, input GenerateInput) (string, error)
}

// ImageInput is an uploaded image ready for analysis.
// Encoded is set when the caller has already validated and encoded Data.
type ImageInput struct {
	FileName    string
	ContentType string
	Data        []byte
	Encoded     *encoder.EncodedImage
}

// Analyzer produces a diagnosis for a plant leaf image.
type Analyzer interface {
	Analyze(ctx context.Context, input ImageInput) (*domain.AnalysisResult, error)
	// Configured reports whether the analyzer has a credential to call the model with.
	Configured() bool
}
