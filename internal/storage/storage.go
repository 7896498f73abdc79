// Package storage provides S3-compatible object storage for user photos.
// Clients upload and download directly with pre-signed URLs; the API never
// proxies image bytes.
package storage

import (
	"context"
	"fmt"
	"time"

	"pulse-backend/internal/config"
)

// ObjectStore is an S3-compatible bucket
type ObjectStore interface {
	// PresignPut returns a URL the client can PUT the object to
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// PresignGet returns a time-limited download URL
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Exists reports whether the object has been uploaded
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes an object by key
	Delete(ctx context.Context, key string) error
}

// New builds the object store selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "", config.StorageS3:
		return NewS3Store(ctx, cfg)
	case config.StorageMinIO:
		return NewMinIOStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
