package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leafdoc/internal/domain"
	"leafdoc/internal/encoder"
	"leafdoc/internal/handler"
	"leafdoc/internal/router"
	"leafdoc/internal/service"
	"leafdoc/internal/storage/memory"
	"leafdoc/internal/web"
	"leafdoc/mocks"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

type configured bool

func (c configured) Configured() bool { return bool(c) }

func configuredAnalyzer() *mocks.MockAnalyzer {
	a := new(mocks.MockAnalyzer)
	a.On("Configured").Return(true).Maybe()
	return a
}

func newTestRouter(t *testing.T, a *mocks.MockAnalyzer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)

	store := memory.NewStore()
	enc := encoder.New(1024)
	sessions := service.NewSessionService(a, store, enc, time.Minute)

	return router.Setup(router.Handlers{
		Page:    handler.NewPageHandler(sessions, time.Minute, false),
		Session: handler.NewSessionHandler(sessions),
		Analyze: handler.NewAnalyzeHandler(a, enc),
		Health:  handler.NewHealthHandler(configured(true), store),
	}, router.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadBytes: 1024,
		Templates:      tmpl,
	})
}

type sessionEnvelope struct {
	Success bool              `json:"success"`
	Data    domain.Session    `json:"data"`
	Error   *handler.APIError `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, req *http.Request) (int, sessionEnvelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env sessionEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func imageForm(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "leaf.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestRouter_SessionLifecycle(t *testing.T) {
	a := configuredAnalyzer()
	a.On("Analyze", mock.Anything, mock.Anything).Return(&domain.AnalysisResult{
		IsHealthy:            false,
		DiseaseName:          "Septoria Leaf Spot",
		Description:          "Small circular spots with dark borders.",
		TreatmentSuggestions: []string{"Remove lower leaves", "Mulch around the base"},
	}, nil)
	r := newTestRouter(t, a)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sessions", http.NoBody)
	status, created := doJSON(t, r, req)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.SessionStateIdle, created.Data.State)
	base := "/api/v1/sessions/" + created.Data.ID.String()

	body, contentType := imageForm(t, pngBytes)
	req, _ = http.NewRequest(http.MethodPost, base+"/analyze", body)
	req.Header.Set("Content-Type", contentType)
	status, analyzed := doJSON(t, r, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.SessionStateResult, analyzed.Data.State)
	assert.Equal(t, "Septoria Leaf Spot", analyzed.Data.Result.DiseaseName)

	w := httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, base+"/preview", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())

	req, _ = http.NewRequest(http.MethodPost, base+"/reset", http.NoBody)
	status, reset := doJSON(t, r, req)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, reset.Data.IsIdle())

	req, _ = http.NewRequest(http.MethodDelete, base, http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodGet, base, http.NoBody)
	status, _ = doJSON(t, r, req)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_UploadTooLarge(t *testing.T) {
	r := newTestRouter(t, configuredAnalyzer())

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 4<<20)...)
	body, contentType := imageForm(t, big)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_HealthAndSwagger(t *testing.T) {
	r := newTestRouter(t, configuredAnalyzer())

	for _, path := range []string{"/healthz", "/readyz", "/swagger/doc.json"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_IndexSetsCookie(t *testing.T) {
	r := newTestRouter(t, configuredAnalyzer())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), handler.SessionCookie)
	assert.Contains(t, w.Body.String(), "Crop Disease Detection")
}

func TestRouter_PageUploadTooLargeStaysFailed(t *testing.T) {
	a := configuredAnalyzer()
	r := newTestRouter(t, a)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	r.ServeHTTP(w, req)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 4<<20)...)
	body, contentType := imageForm(t, big)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookies[0])
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(cookies[0])
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Try Again")
	assert.Contains(t, w.Body.String(), domain.ErrFileTooLarge.Error())
	a.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}
