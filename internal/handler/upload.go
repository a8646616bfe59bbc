package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"leafdoc/internal/domain"
)

// uploadFields are the multipart fields an image may arrive in: "file" from the
// file picker and "files" from drag-and-drop.
var uploadFields = []string{"file", "files"}

// errNoFile is returned when a multipart form carries no file at all.
var errNoFile = errors.New("no file uploaded")

// firstUploadedFile returns the first file of the request's multipart form.
// Any further files are ignored.
func firstUploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, domain.ErrFileTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, errNoFile
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	for _, field := range uploadFields {
		if files := form.File[field]; len(files) > 0 {
			return files[0], nil
		}
	}
	return nil, errNoFile
}

// contentTypeOf returns the part's declared content type, if any.
func contentTypeOf(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}
