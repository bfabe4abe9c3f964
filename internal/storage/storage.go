// Package storage keeps uploaded course images.
package storage

import (
	"context"
	"fmt"
	"go-elearn-app/internal/config"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ImageStore saves and serves uploaded course images by key.
type ImageStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// New returns the store selected by cfg.Backend.
func New(cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "minio":
		m := cfg.Minio
		return NewMinioStore(m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewImageKey returns a fresh key under course_images/ that keeps the
// lower-cased extension of the uploaded file name.
func NewImageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return "course_images/" + uuid.NewString() + ext
}
