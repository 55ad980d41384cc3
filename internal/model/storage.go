package model

import (
	"context"
	"io"
)

// ObjectStorage is a minimal key/value blob store.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
