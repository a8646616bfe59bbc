package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"leafdoc/internal/domain"
	"leafdoc/internal/port"
)

type object struct {
	data        []byte
	contentType string
}

// Store keeps preview images in process memory.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// NewStore creates an empty in-memory ObjectStorage.
func NewStore() *Store {
	return &Store{objects: make(map[string]object)}
}

func (s *Store) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if input.Body == nil {
		return nil, fmt.Errorf("memory upload %s: nil body", input.Key)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, input.Body); err != nil {
		return nil, fmt.Errorf("memory upload %s: %w", input.Key, err)
	}

	s.mu.Lock()
	s.objects[input.Key] = object{data: buf.Bytes(), contentType: input.ContentType}
	s.mu.Unlock()

	return &port.UploadOutput{Location: "memory://" + input.Key}, nil
}

func (s *Store) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPreviewNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
