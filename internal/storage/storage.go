// Package storage contains the S3-compatible object store used to archive
// month-close reports. Implementations stream data and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an archived object does not exist.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions describe an upload. Size is -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored archive.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	Metadata    map[string]string
}

// Storage keeps month-close archives.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Stat returns ErrNotFound when key is absent.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a URL that downloads key without credentials until expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
