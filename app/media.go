package app

import (
	"context"
	"io"
)

// ObjectStore holds binary assets and hands out stable public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	PublicURL(path string) string
}
