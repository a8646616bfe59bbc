package domain

// SessionState is the user-visible stage of the upload -> analyze -> render workflow.
type SessionState string

const (
	SessionStateIdle      SessionState = "idle"
	SessionStateAnalyzing SessionState = "analyzing"
	SessionStateResult    SessionState = "result"
	SessionStateFailed    SessionState = "failed"
)

// HealthyDiseaseName is the disease name the model reports for a healthy plant.
const HealthyDiseaseName = "Healthy"

// AllowedImageTypes lists the MIME types the vision models accept inline.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}
