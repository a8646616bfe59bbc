// Package web holds the server-rendered page: a view model derived from the
// session state and the templates that draw it.
package web

import (
	"leafdoc/internal/domain"
)

// AcceptedTypes is the accept attribute of the file input.
const AcceptedTypes = "image/png, image/jpeg, image/jpg, image/webp, image/heic, image/heif"

// SpinnerRefreshSeconds is how often the spinner page reloads itself.
const SpinnerRefreshSeconds = 2

// View is what the page template renders. Exactly one of Uploader, Spinner,
// Result and ErrorPanel is set.
type View struct {
	Title          string
	RefreshSeconds int

	Uploader   *UploaderView
	Spinner    *SpinnerView
	Result     *ResultView
	ErrorPanel *ErrorPanelView
}

// UploaderView is the file picker and drop zone.
type UploaderView struct {
	Action string
	Accept string
}

// SpinnerView is shown while an analysis is in flight.
type SpinnerView struct {
	Message string
	Hint    string
}

// ResultView is the diagnosis next to the uploaded image.
type ResultView struct {
	PreviewURL         string
	DiseaseName        string
	IsHealthy          bool
	BadgeClass         string
	Description        string
	SuggestionsHeading string
	Suggestions        []string
	ResetAction        string
	ResetLabel         string
}

// ErrorPanelView shows a failed analysis.
type ErrorPanelView struct {
	Title       string
	Message     string
	ResetAction string
	ResetLabel  string
}

// ViewFor maps a session to the view that renders it. previewURL is where the
// uploaded image can be fetched; it is used only when a preview exists.
func ViewFor(sess *domain.Session, previewURL string) View {
	v := View{Title: "Crop Disease Detection"}

	if sess == nil {
		v.Uploader = uploader()
		return v
	}

	switch sess.State {
	case domain.SessionStateAnalyzing:
		v.RefreshSeconds = SpinnerRefreshSeconds
		v.Spinner = &SpinnerView{
			Message: "Analyzing Image...",
			Hint:    "This may take a moment.",
		}
	case domain.SessionStateFailed:
		v.ErrorPanel = &ErrorPanelView{
			Title:       "Analysis Error",
			Message:     sess.Error,
			ResetAction: "/reset",
			ResetLabel:  "Try Again",
		}
	case domain.SessionStateResult:
		if sess.Result == nil {
			v.Uploader = uploader()
			return v
		}
		v.Result = resultView(sess, previewURL)
	default:
		v.Uploader = uploader()
	}
	return v
}

func uploader() *UploaderView {
	return &UploaderView{Action: "/upload", Accept: AcceptedTypes}
}

func resultView(sess *domain.Session, previewURL string) *ResultView {
	r := sess.Result
	rv := &ResultView{
		DiseaseName:        r.DiseaseName,
		IsHealthy:          r.IsHealthy,
		BadgeClass:         "badge-diseased",
		Description:        r.Description,
		SuggestionsHeading: "Treatment Suggestions",
		Suggestions:        append([]string(nil), r.TreatmentSuggestions...),
		ResetAction:        "/reset",
		ResetLabel:         "Analyze Another Image",
	}
	if r.IsHealthy {
		rv.BadgeClass = "badge-healthy"
		rv.SuggestionsHeading = "Care Recommendations"
	}
	if sess.Preview != nil {
		rv.PreviewURL = previewURL
	}
	return rv
}
