package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is the structured diagnosis returned by the model.
type AnalysisResult struct {
	IsHealthy            bool     `json:"isHealthy"`
	DiseaseName          string   `json:"diseaseName"`
	Description          string   `json:"description"`
	TreatmentSuggestions []string `json:"treatmentSuggestions"`
}

// Clone returns a deep copy so snapshots never share the suggestions slice.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.TreatmentSuggestions != nil {
		out.TreatmentSuggestions = append([]string(nil), r.TreatmentSuggestions...)
	}
	return &out
}

// PreviewRef points at the stored copy of the uploaded image.
type PreviewRef struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
}

// Session holds the workflow state for one user.
type Session struct {
	ID        uuid.UUID       `json:"id"`
	State     SessionState    `json:"state"`
	Loading   bool            `json:"loading"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Preview   *PreviewRef     `json:"preview,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Clone returns a copy safe to hand out of the session store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Result = s.Result.Clone()
	if s.Preview != nil {
		p := *s.Preview
		out.Preview = &p
	}
	return &out
}

// IsIdle reports whether the session carries no preview, result, error or pending request.
func (s *Session) IsIdle() bool {
	return s.State == SessionStateIdle && !s.Loading && s.Result == nil && s.Error == "" && s.Preview == nil
}
