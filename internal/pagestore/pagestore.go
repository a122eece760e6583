// Package pagestore keeps scanned page images outside the database.
package pagestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"back_scan/internal/config"
)

// ErrNotFound is returned when no object exists under a key
var ErrNotFound = errors.New("pagestore: object not found")

// Store is a flat object store addressed by key
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Open builds the Store selected by cfg.Backend
func Open(ctx context.Context, cfg config.PageStoreConfig) (Store, error) {
	switch cfg.Backend {
	case "disk":
		return NewDiskStore(cfg.Dir)
	case "minio":
		return NewMinioStore(cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported page store backend: %s", cfg.Backend)
	}
}

// ObjectKey is the key a page image is stored under
func ObjectKey(userID, documentID uint, pageUUID string) string {
	return fmt.Sprintf("users/%d/documents/%d/%s", userID, documentID, pageUUID)
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	return nil
}
