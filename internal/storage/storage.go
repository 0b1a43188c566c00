// Package storage provides the blob store used for profile images and
// user-uploaded files. Backends are selected by configuration, the same way
// the database layer selects a SQL dialect.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"familycircle/internal/config"
)

// ErrNotFound is returned when a blob does not exist. Deletion workflows
// treat it as a no-op.
var ErrNotFound = errors.New("blob not found")

// BlobStore stores binary objects under slash-separated keys.
type BlobStore interface {
	// Upload stores the blob and returns its public URL.
	Upload(ctx context.Context, key string, r io.Reader) (string, error)

	// URL returns the public URL for a key without touching the backend.
	URL(key string) string

	// Delete removes a blob. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all blobs under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ProfileImageKey is the blob key for a user's profile image.
func ProfileImageKey(userID int64) string {
	return fmt.Sprintf("profileImages/%d", userID)
}

// UserFilesPrefix is the blob key prefix for a user's uploaded files.
func UserFilesPrefix(userID int64) string {
	return fmt.Sprintf("userFiles/%d/", userID)
}

// New creates the blob store named by cfg.StorageBackend.
func New(cfg *config.Config) (BlobStore, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "s3":
		return NewS3Store(context.Background(), cfg.S3Region, cfg.S3Bucket)
	case "local", "":
		return NewLocalStore(cfg.StoragePath, cfg.AppBaseURL+"/files")
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
