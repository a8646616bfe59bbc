package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"leafdoc/internal/domain"
)

// ErrMalformedResult means the model text is not a diagnosis object.
var ErrMalformedResult = errors.New("malformed analysis result")

// DecodeResult parses model output into an AnalysisResult, checking every
// required field is present with the expected JSON type.
func DecodeResult(text string) (*domain.AnalysisResult, error) {
	raw := stripCodeFence(strings.TrimSpace(text))
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResult)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	for _, name := range RequiredFields {
		v, ok := fields[name]
		if !ok || isNull(v) {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedResult, name)
		}
	}

	var result domain.AnalysisResult
	if err := decodeField(fields, FieldIsHealthy, &result.IsHealthy); err != nil {
		return nil, err
	}
	if err := decodeField(fields, FieldDiseaseName, &result.DiseaseName); err != nil {
		return nil, err
	}
	if err := decodeField(fields, FieldDescription, &result.Description); err != nil {
		return nil, err
	}
	if err := decodeField(fields, FieldTreatmentSuggestions, &result.TreatmentSuggestions); err != nil {
		return nil, err
	}
	return &result, nil
}

func decodeField(fields map[string]json.RawMessage, name string, dst interface{}) error {
	if err := json.Unmarshal(fields[name], dst); err != nil {
		return fmt.Errorf("%w: field %q: %v", ErrMalformedResult, name, err)
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// stripCodeFence removes a surrounding ```json fence if the model added one anyway.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
