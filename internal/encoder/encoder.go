// Package encoder turns an uploaded image into the base64 payload and MIME
// type that vision model APIs expect inline.
package encoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"leafdoc/internal/domain"
)

// EncodedImage is an image ready to embed in a request body.
type EncodedImage struct {
	Data     []byte
	Base64   string
	MIMEType string
}

// DataURL returns the image as a data: URL.
func (e *EncodedImage) DataURL() string {
	return "data:" + e.MIMEType + ";base64," + e.Base64
}

// Encoder reads images up to a size limit.
type Encoder struct {
	maxBytes int64
}

// New creates an Encoder. A non-positive maxBytes disables the size limit.
func New(maxBytes int64) *Encoder {
	return &Encoder{maxBytes: maxBytes}
}

// Encode reads r fully and encodes it. declaredType is the client-supplied
// content type; it is only used when sniffing is inconclusive.
func (e *Encoder) Encode(r io.Reader, declaredType string) (*EncodedImage, error) {
	if r == nil {
		return nil, domain.ErrUnreadableFile
	}
	src := r
	if e.maxBytes > 0 {
		src = io.LimitReader(r, e.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	return e.EncodeBytes(data, declaredType)
}

// EncodeBytes encodes an in-memory image.
func (e *Encoder) EncodeBytes(data []byte, declaredType string) (*EncodedImage, error) {
	if len(data) == 0 {
		return nil, domain.ErrUnreadableFile
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	mimeType, err := DetectImageType(data, declaredType)
	if err != nil {
		return nil, err
	}

	return &EncodedImage{
		Data:     data,
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}, nil
}

// DetectImageType sniffs the MIME type from content. The declared type is
// trusted only when the content cannot be identified.
func DetectImageType(data []byte, declaredType string) (string, error) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if domain.AllowedImageTypes[m.String()] {
			return m.String(), nil
		}
	}

	if detected.Is("application/octet-stream") {
		declared := normalizeType(declaredType)
		if domain.AllowedImageTypes[declared] {
			return declared, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, detected.String())
}

// StripDataURLPrefix drops everything up to and including the first comma of
// a data URL, leaving the base64 payload.
func StripDataURLPrefix(dataURL string) string {
	if i := strings.IndexByte(dataURL, ','); i >= 0 {
		return dataURL[i+1:]
	}
	return dataURL
}

// DecodeDataURL parses a base64 data URL back into an EncodedImage.
func (e *Encoder) DecodeDataURL(dataURL string) (*EncodedImage, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, fmt.Errorf("%w: not a data URL", domain.ErrUnreadableFile)
	}
	header := dataURL[len("data:"):]
	if i := strings.IndexByte(header, ','); i >= 0 {
		header = header[:i]
	}
	declared := strings.TrimSuffix(header, ";base64")

	raw, err := base64.StdEncoding.DecodeString(StripDataURLPrefix(dataURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	return e.Encode(bytes.NewReader(raw), declared)
}

func normalizeType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}
