package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leafdoc/internal/domain"
	"leafdoc/internal/encoder"
	"leafdoc/internal/port"
)

const (
	unknownErrorMessage  = "An unknown error occurred during analysis."
	canceledErrorMessage = "Analysis was canceled. Please try again."
	timeoutErrorMessage  = "Analysis timed out. Please try another image."
)

// SubmitInput is the DTO for one uploaded image.
type SubmitInput struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// SessionService drives the upload -> analyze -> display workflow for each session.
type SessionService interface {
	Create(ctx context.Context) (*domain.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Submit(ctx context.Context, id uuid.UUID, input SubmitInput) (*domain.Session, error)
	Start(ctx context.Context, id uuid.UUID, input SubmitInput) (*domain.Session, error)
	Fail(ctx context.Context, id uuid.UUID, cause error) (*domain.Session, error)
	Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Preview(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Sweep(ctx context.Context, now time.Time) int
}

// sessionEntry is the mutable record behind a session. seq identifies the
// current request; a completion whose token differs from seq is stale.
type sessionEntry struct {
	session domain.Session
	seq     uint64
	cancel  context.CancelFunc
}

type sessionService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry

	analyzer port.Analyzer
	storage  port.ObjectStorage
	encoder  *encoder.Encoder
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(
	analyzer port.Analyzer,
	storage port.ObjectStorage,
	enc *encoder.Encoder,
	ttl time.Duration,
) SessionService {
	return &sessionService{
		sessions: make(map[uuid.UUID]*sessionEntry),
		analyzer: analyzer,
		storage:  storage,
		encoder:  enc,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) Create(_ context.Context) (*domain.Session, error) {
	now := s.now()
	entry := &sessionEntry{
		session: domain.Session{
			ID:        uuid.New(),
			State:     domain.SessionStateIdle,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	s.mu.Lock()
	s.sessions[entry.session.ID] = entry
	s.mu.Unlock()

	return entry.session.Clone(), nil
}

func (s *sessionService) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entry.session.Clone(), nil
}

func (s *sessionService) Submit(ctx context.Context, id uuid.UUID, input SubmitInput) (*domain.Session, error) {
	req, err := s.begin(ctx, id, input.FileName)
	if err != nil {
		return nil, err
	}
	defer req.cancel()

	if !s.analyzer.Configured() {
		return s.finish(ctx, req, nil, nil, domain.ErrMissingAPIKey)
	}
	img, err := s.encoder.Encode(input.Body, input.ContentType)
	if err != nil {
		return s.finish(ctx, req, nil, nil, err)
	}
	return s.run(ctx, req, img)
}

func (s *sessionService) Start(ctx context.Context, id uuid.UUID, input SubmitInput) (*domain.Session, error) {
	bg := context.WithoutCancel(ctx)
	req, err := s.begin(bg, id, input.FileName)
	if err != nil {
		return nil, err
	}

	if !s.analyzer.Configured() {
		req.cancel()
		return s.finish(bg, req, nil, nil, domain.ErrMissingAPIKey)
	}
	img, err := s.encoder.Encode(input.Body, input.ContentType)
	if err != nil {
		req.cancel()
		return s.finish(bg, req, nil, nil, err)
	}

	snapshot, err := s.Get(ctx, id)
	if err != nil {
		req.cancel()
		return nil, err
	}
	go func() {
		defer req.cancel()
		_, _ = s.run(bg, req, img)
	}()
	return snapshot, nil
}

// Fail records an upload that was rejected before it reached the service,
// so the session shows the error until the next upload or reset.
func (s *sessionService) Fail(ctx context.Context, id uuid.UUID, cause error) (*domain.Session, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if entry.session.State == domain.SessionStateAnalyzing {
		s.mu.Unlock()
		return nil, domain.ErrAnalysisInProgress
	}

	oldPreview := entry.session.Preview
	entry.seq++
	entry.cancel = nil
	entry.session.State = domain.SessionStateFailed
	entry.session.Loading = false
	entry.session.Result = nil
	entry.session.Preview = nil
	entry.session.Error = DisplayMessage(cause)
	entry.session.UpdatedAt = s.now()
	snapshot := entry.session.Clone()
	s.mu.Unlock()

	s.deletePreview(ctx, oldPreview)
	log.Printf("sessionService.Fail: session %s rejected upload: %v", id, cause)
	return snapshot, nil
}

// analysisRequest identifies one submit. token is compared with the entry's seq
// on completion; ctx is canceled by Reset and Delete.
type analysisRequest struct {
	id       uuid.UUID
	token    uint64
	fileName string
	ctx      context.Context
	cancel   context.CancelFunc
}

// begin moves the session into Analyzing and issues a new request token.
func (s *sessionService) begin(ctx context.Context, id uuid.UUID, fileName string) (*analysisRequest, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if entry.session.State == domain.SessionStateAnalyzing {
		s.mu.Unlock()
		return nil, domain.ErrAnalysisInProgress
	}

	oldPreview := entry.session.Preview
	entry.seq++
	analysisCtx, cancel := context.WithCancel(ctx)
	req := &analysisRequest{id: id, token: entry.seq, fileName: fileName, ctx: analysisCtx, cancel: cancel}
	entry.cancel = cancel
	entry.session.State = domain.SessionStateAnalyzing
	entry.session.Loading = true
	entry.session.Result = nil
	entry.session.Error = ""
	entry.session.Preview = nil
	entry.session.UpdatedAt = s.now()
	s.mu.Unlock()

	s.deletePreview(ctx, oldPreview)
	log.Printf("sessionService.begin: session %s request %d analyzing %q", id, req.token, fileName)
	return req, nil
}

// run stores the preview, calls the analyzer and records the outcome.
func (s *sessionService) run(ctx context.Context, req *analysisRequest, img *encoder.EncodedImage) (*domain.Session, error) {
	preview, err := s.storePreview(req.ctx, req.id, req.fileName, img)
	if err != nil {
		log.Printf("sessionService.run: failed to store preview for session %s: %v", req.id, err)
	} else if !s.setPreview(req.id, req.token, preview) {
		s.deletePreview(ctx, preview)
		preview = nil
	}

	result, err := s.analyze(req.ctx, port.ImageInput{
		FileName:    req.fileName,
		ContentType: img.MIMEType,
		Data:        img.Data,
		Encoded:     img,
	})
	return s.finish(ctx, req, preview, result, err)
}

// analyze calls the analyzer, converting a panic into an unknown failure.
func (s *sessionService) analyze(ctx context.Context, input port.ImageInput) (result *domain.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("sessionService.analyze: recovered from panic: %v", r)
			result, err = nil, &panicError{value: r}
		}
	}()
	return s.analyzer.Analyze(ctx, input)
}

// finish applies the outcome of req to the session, unless a reset
// or a newer request has superseded it.
func (s *sessionService) finish(
	ctx context.Context,
	req *analysisRequest,
	preview *domain.PreviewRef,
	result *domain.AnalysisResult,
	analysisErr error,
) (*domain.Session, error) {
	id, token := req.id, req.token

	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		s.deletePreview(ctx, preview)
		return nil, domain.ErrSessionNotFound
	}
	if current := entry.seq; current != token {
		snapshot := entry.session.Clone()
		s.mu.Unlock()
		log.Printf("sessionService.finish: discarding stale response for session %s (request %d, current %d)", id, token, current)
		s.deletePreview(ctx, preview)
		return snapshot, nil
	}

	entry.cancel = nil
	entry.session.Loading = false
	entry.session.UpdatedAt = s.now()
	if analysisErr != nil || result == nil {
		entry.session.State = domain.SessionStateFailed
		entry.session.Result = nil
		entry.session.Error = DisplayMessage(analysisErr)
		log.Printf("sessionService.finish: session %s request %d failed: %v", id, token, analysisErr)
	} else {
		entry.session.State = domain.SessionStateResult
		entry.session.Result = result.Clone()
		entry.session.Error = ""
	}
	snapshot := entry.session.Clone()
	s.mu.Unlock()

	return snapshot, nil
}

func (s *sessionService) Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}

	preview := entry.session.Preview
	if entry.cancel != nil {
		entry.cancel()
		entry.cancel = nil
	}
	entry.seq++
	entry.session.State = domain.SessionStateIdle
	entry.session.Loading = false
	entry.session.Result = nil
	entry.session.Error = ""
	entry.session.Preview = nil
	entry.session.UpdatedAt = s.now()
	snapshot := entry.session.Clone()
	s.mu.Unlock()

	s.deletePreview(ctx, preview)
	return snapshot, nil
}

func (s *sessionService) Preview(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	if !ok {
		s.mu.RUnlock()
		return nil, "", domain.ErrSessionNotFound
	}
	var preview *domain.PreviewRef
	if entry.session.Preview != nil {
		p := *entry.session.Preview
		preview = &p
	}
	s.mu.RUnlock()

	if preview == nil {
		return nil, "", domain.ErrPreviewNotFound
	}
	data, err := s.storage.Download(ctx, preview.Key)
	if err != nil {
		if errors.Is(err, domain.ErrPreviewNotFound) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("downloading preview: %w", err)
	}
	return data, preview.ContentType, nil
}

func (s *sessionService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	preview := entry.session.Preview
	delete(s.sessions, id)
	s.mu.Unlock()

	s.deletePreview(ctx, preview)
	return nil
}

func (s *sessionService) Sweep(ctx context.Context, now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	var expired []*domain.PreviewRef
	removed := 0

	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.session.State == domain.SessionStateAnalyzing {
			continue
		}
		if now.Sub(entry.session.UpdatedAt) < s.ttl {
			continue
		}
		if entry.session.Preview != nil {
			expired = append(expired, entry.session.Preview)
		}
		delete(s.sessions, id)
		removed++
	}
	s.mu.Unlock()

	for _, p := range expired {
		s.deletePreview(ctx, p)
	}
	if removed > 0 {
		log.Printf("sessionService.Sweep: removed %d expired sessions", removed)
	}
	return removed
}

func (s *sessionService) setPreview(id uuid.UUID, token uint64, preview *domain.PreviewRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok || entry.seq != token {
		return false
	}
	p := *preview
	entry.session.Preview = &p
	return true
}

func (s *sessionService) storePreview(ctx context.Context, id uuid.UUID, fileName string, img *encoder.EncodedImage) (*domain.PreviewRef, error) {
	key := fmt.Sprintf("previews/%s/%s%s", id, uuid.New(), extensionFor(img.MIMEType))
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         key,
		Body:        bytes.NewReader(img.Data),
		ContentType: img.MIMEType,
		Size:        int64(len(img.Data)),
	})
	if err != nil {
		return nil, err
	}
	return &domain.PreviewRef{
		Key:         key,
		ContentType: img.MIMEType,
		FileName:    fileName,
		Size:        int64(len(img.Data)),
	}, nil
}

// deletePreview removes a stored preview; failures are logged only.
func (s *sessionService) deletePreview(ctx context.Context, preview *domain.PreviewRef) {
	if preview == nil {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), preview.Key); err != nil {
		log.Printf("sessionService.deletePreview: failed to delete %s: %v", preview.Key, err)
	}
}

// panicError marks a failure with no usable message.
type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// DisplayMessage turns an analysis error into the text shown to the user.
func DisplayMessage(err error) string {
	var pe *panicError
	switch {
	case err == nil, errors.As(err, &pe):
		return unknownErrorMessage
	case errors.Is(err, context.Canceled):
		return canceledErrorMessage
	case errors.Is(err, context.DeadlineExceeded):
		return timeoutErrorMessage
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return unknownErrorMessage
	}
	return fmt.Sprintf("Analysis failed: %s. Please try another image.", strings.TrimSuffix(msg, "."))
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	default:
		return ""
	}
}
