package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leafdoc/internal/domain"
	"leafdoc/internal/handler"
	"leafdoc/internal/service"
	"leafdoc/internal/web"
	"leafdoc/mocks"
)

func pageRouter(t *testing.T, svc *mocks.MockSessionService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)

	h := handler.NewPageHandler(svc, 30*time.Minute, false)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", h.Index)
	r.POST("/upload", h.Upload)
	r.POST("/reset", h.Reset)
	r.GET("/preview", h.Preview)
	return r
}

func sessionCookie(id uuid.UUID) *http.Cookie {
	return &http.Cookie{Name: handler.SessionCookie, Value: id.String()}
}

func TestPageHandler_Index_CreatesSession(t *testing.T) {
	svc := new(mocks.MockSessionService)
	id := uuid.New()
	svc.On("Create", mock.Anything).Return(&domain.Session{ID: id, State: domain.SessionStateIdle}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Drag &amp; drop your image here")
	assert.Contains(t, w.Header().Get("Set-Cookie"), handler.SessionCookie+"="+id.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")
}

func TestPageHandler_Index_ExpiredCookieCreatesSession(t *testing.T) {
	svc := new(mocks.MockSessionService)
	stale := uuid.New()
	fresh := uuid.New()
	svc.On("Get", mock.Anything, stale).Return(nil, domain.ErrSessionNotFound)
	svc.On("Create", mock.Anything).Return(&domain.Session{ID: fresh, State: domain.SessionStateIdle}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(sessionCookie(stale))
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), fresh.String())
}

func TestPageHandler_Index_RendersEachState(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		session *domain.Session
		want    string
	}{
		{"analyzing", &domain.Session{ID: id, State: domain.SessionStateAnalyzing, Loading: true}, "Analyzing Image..."},
		{"failed", &domain.Session{ID: id, State: domain.SessionStateFailed, Error: "Analysis failed: quota. Please try another image."}, "Try Again"},
		{"result", &domain.Session{
			ID:    id,
			State: domain.SessionStateResult,
			Result: &domain.AnalysisResult{
				DiseaseName:          "Leaf Rust",
				Description:          "Orange pustules.",
				TreatmentSuggestions: []string{"Remove debris", "Apply fungicide"},
			},
			Preview: &domain.PreviewRef{Key: "k", ContentType: "image/png"},
		}, "Analyze Another Image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockSessionService)
			svc.On("Get", mock.Anything, id).Return(tt.session, nil)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
			req.AddCookie(sessionCookie(id))
			pageRouter(t, svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Empty(t, w.Header().Get("Set-Cookie"))
		})
	}
}

func TestPageHandler_Upload_StartsWithFirstFile(t *testing.T) {
	svc := new(mocks.MockSessionService)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&domain.Session{ID: id, State: domain.SessionStateIdle}, nil)
	svc.On("Start", mock.Anything, id, mock.MatchedBy(func(in service.SubmitInput) bool {
		return in.FileName == "dropped.png"
	})).Return(&domain.Session{ID: id, State: domain.SessionStateAnalyzing, Loading: true}, nil).Once()

	body, contentType := multipartBody(t,
		formFile{field: "files", name: "dropped.png", data: pngBytes},
		formFile{field: "files", name: "extra.png", data: pngBytes},
	)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(sessionCookie(id))
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	svc.AssertNumberOfCalls(t, "Start", 1)
	svc.AssertExpectations(t)
}

func TestPageHandler_Upload_NoFileIsNoop(t *testing.T) {
	svc := new(mocks.MockSessionService)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&domain.Session{ID: id, State: domain.SessionStateIdle}, nil)

	body, contentType := multipartBody(t)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(sessionCookie(id))
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestPageHandler_Upload_RejectedFormRecordsFailure(t *testing.T) {
	svc := new(mocks.MockSessionService)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&domain.Session{ID: id, State: domain.SessionStateIdle}, nil)
	svc.On("Fail", mock.Anything, id, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, domain.ErrUnreadableFile)
	})).Return(&domain.Session{ID: id, State: domain.SessionStateFailed, Error: "x"}, nil).Once()

	truncated := "--leafdoc\r\nContent-Disposition: form-data; name=\"file\"; filename=\"leaf.png\"\r\n\r\nabc"
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", strings.NewReader(truncated))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=leafdoc")
	req.AddCookie(sessionCookie(id))
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertExpectations(t)
}

func TestPageHandler_Upload_WhileAnalyzingRedirects(t *testing.T) {
	svc := new(mocks.MockSessionService)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&domain.Session{ID: id, State: domain.SessionStateAnalyzing}, nil)
	svc.On("Start", mock.Anything, id, mock.Anything).Return(nil, domain.ErrAnalysisInProgress)

	body, contentType := multipartBody(t, formFile{field: "file", name: "leaf.png", data: pngBytes})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(sessionCookie(id))
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestPageHandler_Reset(t *testing.T) {
	svc := new(mocks.MockSessionService)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&domain.Session{ID: id, State: domain.SessionStateFailed, Error: "x"}, nil)
	svc.On("Reset", mock.Anything, id).Return(&domain.Session{ID: id, State: domain.SessionStateIdle}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/reset", http.NoBody)
	req.AddCookie(sessionCookie(id))
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	svc.AssertExpectations(t)
}

func TestPageHandler_Preview(t *testing.T) {
	svc := new(mocks.MockSessionService)
	id := uuid.New()
	svc.On("Preview", mock.Anything, id).Return(pngBytes, "image/png", nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/preview?v=1", http.NoBody)
	req.AddCookie(sessionCookie(id))
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())
}

func TestPageHandler_Preview_NoCookie(t *testing.T) {
	svc := new(mocks.MockSessionService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/preview", http.NoBody)
	pageRouter(t, svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
