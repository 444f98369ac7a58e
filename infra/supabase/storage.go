package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Cardjinho/Instagram-v0/app"
)

// DefaultBucket is the storage bucket post images are written to.
const DefaultBucket = "images"

// Storage implements app.ObjectStore on the storage API.
type Storage struct {
	client *Client
	bucket string
}

var _ app.ObjectStore = (*Storage)(nil)

// NewStorage creates an ObjectStore for bucket. An empty bucket uses DefaultBucket.
func NewStorage(client *Client, bucket string) *Storage {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Storage{client: client, bucket: bucket}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *Storage) Upload(ctx context.Context, path string, r io.Reader, _ int64, contentType string) error {
	_, err := s.client.do(ctx, request{
		method:      http.MethodPost,
		path:        "/storage/v1/object/" + s.bucket + "/" + escapeKey(path),
		body:        r,
		contentType: contentType,
		header:      map[string]string{"x-upsert": "false", "Cache-Control": "max-age=3600"},
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}
	return nil
}

// PublicURL returns the unauthenticated download URL for path.
func (s *Storage) PublicURL(path string) string {
	return s.client.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + escapeKey(path)
}
