package domain

import "errors"

var (
	ErrMissingAPIKey       = errors.New("analyzer API key is not configured")
	ErrAnalysisFailed      = errors.New("failed to get a valid analysis from the AI model")
	ErrUnreadableFile      = errors.New("image file could not be read")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrSessionNotFound     = errors.New("session not found")
	ErrPreviewNotFound     = errors.New("no preview for this session")
	ErrAnalysisInProgress  = errors.New("an analysis is already in progress")
)
