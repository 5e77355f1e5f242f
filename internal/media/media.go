// Package media stores uploaded images: supplement photos and intake photo
// confirmations. Objects go to S3-compatible storage when configured, local
// disk otherwise.
package media

import (
	"context"
	"io"
	"path"

	"github.com/google/uuid"
)

// Storage is an object store keyed by opaque string keys.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a unique object key under the given prefix, keeping the
// original file extension.
func NewKey(prefix, filename string) string {
	return prefix + "/" + uuid.NewString() + path.Ext(filename)
}
