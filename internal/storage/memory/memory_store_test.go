package memory_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafdoc/internal/domain"
	"leafdoc/internal/port"
	"leafdoc/internal/storage/memory"
)

func TestStore_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	out, err := s.Upload(ctx, port.UploadInput{Key: "previews/a.png", Body: bytes.NewReader([]byte("img")), ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "memory://previews/a.png", out.Location)
	assert.Equal(t, 1, s.Len())

	data, err := s.Download(ctx, "previews/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)

	require.NoError(t, s.Delete(ctx, "previews/a.png"))
	_, err = s.Download(ctx, "previews/a.png")
	assert.ErrorIs(t, err, domain.ErrPreviewNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	assert.NoError(t, memory.NewStore().Delete(context.Background(), "missing"))
}

func TestStore_DownloadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	_, err := s.Upload(ctx, port.UploadInput{Key: "k", Body: bytes.NewReader([]byte("abc"))})
	require.NoError(t, err)

	data, _ := s.Download(ctx, "k")
	data[0] = 'z'

	again, _ := s.Download(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestStore_UploadNilBody(t *testing.T) {
	_, err := memory.NewStore().Upload(context.Background(), port.UploadInput{Key: "k"})
	assert.Error(t, err)
}
