package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leafdoc/internal/service"
)

// SessionHandler exposes the analysis workflow as a JSON API.
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /api/v1/sessions
// @Summary Create a session
// @Description Create a new analysis session in the idle state
// @Tags sessions
// @Produce json
// @Success 201 {object} Response{data=domain.Session} "Session created"
// @Failure 500 {object} ErrorResponseBody "Internal error"
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	sess, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, sess)
}

// Get handles GET /api/v1/sessions/:id
// @Summary Get a session
// @Description Get the current state of a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Success 200 {object} Response{data=domain.Session} "Session snapshot"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sess)
}

// Analyze handles POST /api/v1/sessions/:id/analyze
// @Summary Analyze a leaf image
// @Description Upload a leaf photo and wait for the diagnosis. Only the first uploaded file is used.
// @Description A failed analysis is reported in the session's error field, not as an HTTP error.
// @Tags sessions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Param file formData file true "Leaf image (JPG, PNG, WEBP, HEIC)"
// @Success 200 {object} Response{data=domain.Session} "Session after analysis"
// @Failure 400 {object} ErrorResponseBody "Missing file or invalid ID"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Failure 409 {object} ErrorResponseBody "Analysis already in progress"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /sessions/{id}/analyze [post]
func (h *SessionHandler) Analyze(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	fh, err := firstUploadedFile(c)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	file, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "image file could not be read")
		return
	}
	defer func() { _ = file.Close() }()

	sess, err := h.sessions.Submit(c.Request.Context(), id, service.SubmitInput{
		FileName:    fh.Filename,
		ContentType: contentTypeOf(fh),
		Body:        file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sess)
}

// Reset handles POST /api/v1/sessions/:id/reset
// @Summary Reset a session
// @Description Clear the preview, result and error, canceling any in-flight analysis
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Success 200 {object} Response{data=domain.Session} "Idle session"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id}/reset [post]
func (h *SessionHandler) Reset(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	sess, err := h.sessions.Reset(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, sess)
}

// Preview handles GET /api/v1/sessions/:id/preview
// @Summary Get the uploaded image
// @Description Stream the image uploaded for the session's current analysis
// @Tags sessions
// @Produce image/jpeg,image/png,image/webp,image/heic
// @Param id path string true "Session ID (UUID)"
// @Success 200 {file} binary "Image bytes"
// @Failure 404 {object} ErrorResponseBody "Session or preview not found"
// @Router /sessions/{id}/preview [get]
func (h *SessionHandler) Preview(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	writePreview(c, h.sessions, id)
}

// Delete handles DELETE /api/v1/sessions/:id
// @Summary Delete a session
// @Description Drop the session and its stored preview
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Session deleted"
// @Failure 404 {object} ErrorResponseBody "Session not found"
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "session deleted"})
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

func writePreview(c *gin.Context, sessions service.SessionService, id uuid.UUID) {
	data, contentType, err := sessions.Preview(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

func respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, errNoFile) {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	HandleError(c, err)
}
