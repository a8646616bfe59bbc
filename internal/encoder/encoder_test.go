package encoder_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafdoc/internal/domain"
	"leafdoc/internal/encoder"
)

var (
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncode_PNG(t *testing.T) {
	enc := encoder.New(1024)

	img, err := enc.Encode(bytes.NewReader(pngHeader), "image/png")

	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pngHeader), img.Base64)
	assert.Equal(t, pngHeader, img.Data)
}

func TestEncode_JPEG_IgnoresDeclaredType(t *testing.T) {
	enc := encoder.New(1024)

	img, err := enc.Encode(bytes.NewReader(jpegHeader), "image/png")

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestEncode_ReadFailure(t *testing.T) {
	enc := encoder.New(1024)

	img, err := enc.Encode(failingReader{}, "image/png")

	assert.Nil(t, img)
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestEncode_NilReader(t *testing.T) {
	_, err := encoder.New(0).Encode(nil, "image/png")
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestEncode_Empty(t *testing.T) {
	_, err := encoder.New(1024).Encode(bytes.NewReader(nil), "image/png")
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestEncode_TooLarge(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), make([]byte, 64)...)

	_, err := encoder.New(32).Encode(bytes.NewReader(data), "image/png")

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestEncode_ExactlyAtLimit(t *testing.T) {
	_, err := encoder.New(int64(len(pngHeader))).Encode(bytes.NewReader(pngHeader), "")
	assert.NoError(t, err)
}

func TestEncode_UnsupportedType(t *testing.T) {
	_, err := encoder.New(1024).Encode(strings.NewReader("just some text, not an image"), "image/png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestEncode_PDFRejected(t *testing.T) {
	_, err := encoder.New(1024).Encode(strings.NewReader("%PDF-1.4 test content"), "application/pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestDetectImageType_FallsBackToDeclaredForUnknownBytes(t *testing.T) {
	unknown := []byte{0x00, 0x01, 0x02, 0x03, 0xFE}

	mimeType, err := encoder.DetectImageType(unknown, "image/jpg; charset=binary")

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestDetectImageType_UnknownBytesUnknownDeclared(t *testing.T) {
	_, err := encoder.DetectImageType([]byte{0x00, 0x01, 0x02, 0x03, 0xFE}, "application/zip")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestStripDataURLPrefix(t *testing.T) {
	assert.Equal(t, "AAAA", encoder.StripDataURLPrefix("data:image/png;base64,AAAA"))
	assert.Equal(t, "AAAA", encoder.StripDataURLPrefix("AAAA"))
	assert.Equal(t, "a,b", encoder.StripDataURLPrefix("x,a,b"))
}

func TestEncodedImage_DataURL_RoundTrip(t *testing.T) {
	enc := encoder.New(1024)
	img, err := enc.EncodeBytes(pngHeader, "")
	require.NoError(t, err)

	decoded, err := enc.DecodeDataURL(img.DataURL())

	require.NoError(t, err)
	assert.Equal(t, "image/png", decoded.MIMEType)
	assert.Equal(t, pngHeader, decoded.Data)
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	enc := encoder.New(1024)

	_, err := enc.DecodeDataURL("not-a-data-url")
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)

	_, err = enc.DecodeDataURL("data:image/png;base64,%%%")
	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}
