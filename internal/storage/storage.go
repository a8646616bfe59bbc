// Package storage selects the preview ObjectStorage backend from config.
package storage

import (
	"context"
	"fmt"

	"leafdoc/internal/config"
	"leafdoc/internal/port"
	"leafdoc/internal/storage/memory"
	"leafdoc/internal/storage/miniostore"
	s3storage "leafdoc/internal/storage/s3"
)

// New builds the ObjectStorage named by cfg.Provider.
func New(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	switch cfg.Provider {
	case "", "memory":
		return memory.NewStore(), nil
	case "s3":
		return s3storage.NewS3Client(ctx, cfg)
	case "minio":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("minio storage requires an endpoint")
		}
		return miniostore.NewStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}
