package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leafdoc/internal/domain"
	"leafdoc/internal/service"
	"leafdoc/internal/web"
)

// SessionCookie names the cookie that ties a browser to its session.
const SessionCookie = "leafdoc_session"

// PageHandler serves the browser UI. Each browser gets its own session,
// identified by a cookie.
type PageHandler struct {
	sessions     service.SessionService
	cookieMaxAge time.Duration
	cookieSecure bool
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(sessions service.SessionService, cookieMaxAge time.Duration, cookieSecure bool) *PageHandler {
	return &PageHandler{sessions: sessions, cookieMaxAge: cookieMaxAge, cookieSecure: cookieSecure}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	sess, err := h.currentSession(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.render(c, http.StatusOK, sess)
}

// Upload handles POST /upload. Selecting no file is a no-op.
func (h *PageHandler) Upload(c *gin.Context) {
	sess, err := h.currentSession(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	fh, err := firstUploadedFile(c)
	if err != nil {
		if errors.Is(err, errNoFile) {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		h.reject(c, sess.ID, err)
		return
	}
	file, err := fh.Open()
	if err != nil {
		log.Printf("pageHandler.Upload: opening %q: %v", fh.Filename, err)
		h.reject(c, sess.ID, domain.ErrUnreadableFile)
		return
	}
	defer func() { _ = file.Close() }()

	_, err = h.sessions.Start(c.Request.Context(), sess.ID, service.SubmitInput{
		FileName:    fh.Filename,
		ContentType: contentTypeOf(fh),
		Body:        file,
	})
	if err != nil && !errors.Is(err, domain.ErrAnalysisInProgress) {
		HandleError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Reset handles POST /reset
func (h *PageHandler) Reset(c *gin.Context) {
	sess, err := h.currentSession(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	if _, err := h.sessions.Reset(c.Request.Context(), sess.ID); err != nil {
		HandleError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Preview handles GET /preview
func (h *PageHandler) Preview(c *gin.Context) {
	id, ok := h.cookieSessionID(c)
	if !ok {
		HandleError(c, domain.ErrPreviewNotFound)
		return
	}
	writePreview(c, h.sessions, id)
}

// reject records an upload that never reached the analyzer as the session's
// failure, then sends the browser back to the page.
func (h *PageHandler) reject(c *gin.Context, id uuid.UUID, cause error) {
	log.Printf("pageHandler.Upload: rejecting upload for session %s: %v", id, cause)
	if errors.Is(cause, domain.ErrUnreadableFile) {
		cause = domain.ErrUnreadableFile
	}
	if _, err := h.sessions.Fail(c.Request.Context(), id, cause); err != nil && !errors.Is(err, domain.ErrAnalysisInProgress) {
		HandleError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) render(c *gin.Context, status int, sess *domain.Session) {
	c.HTML(status, web.PageTemplate, web.ViewFor(sess, previewURL(sess)))
}

// currentSession returns the cookie's session, creating a new one when the
// cookie is missing or the session has expired.
func (h *PageHandler) currentSession(c *gin.Context) (*domain.Session, error) {
	if id, ok := h.cookieSessionID(c); ok {
		sess, err := h.sessions.Get(c.Request.Context(), id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
	}

	sess, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		return nil, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.ID.String(), int(h.cookieMaxAge.Seconds()), "/", "", h.cookieSecure, true)
	return sess, nil
}

func (h *PageHandler) cookieSessionID(c *gin.Context) (uuid.UUID, bool) {
	raw, err := c.Cookie(SessionCookie)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// previewURL versions the preview link so browsers refetch after a new upload.
func previewURL(sess *domain.Session) string {
	if sess == nil || sess.Preview == nil {
		return ""
	}
	return fmt.Sprintf("/preview?v=%d", sess.UpdatedAt.UnixNano())
}
