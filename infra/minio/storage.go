// Package minio stores post images in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Cardjinho/Instagram-v0/app"
)

// Config addresses the bucket. PublicURL, when set, is the base under which
// objects are served; otherwise the endpoint itself is used.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Storage is an app.ObjectStore on minio-go.
type Storage struct {
	cfg    Config
	client *minio.Client
}

var _ app.ObjectStore = (*Storage)(nil)

// New creates a client. It does not contact the server.
func New(cfg Config) (*Storage, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	if endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint is required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "images"
	}
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object storage client: %w", err)
	}
	cfg.Endpoint = endpoint
	return &Storage{cfg: cfg, client: cl}, nil
}

// EnsureBucket creates the bucket and makes it publicly readable.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	if err := s.client.SetBucketPolicy(ctx, s.cfg.Bucket, readOnlyPolicy(s.cfg.Bucket)); err != nil {
		return fmt.Errorf("setting bucket policy: %w", err)
	}
	return nil
}

func readOnlyPolicy(bucket string) string {
	return `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},` +
		`"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::` + bucket + `/*"]}]}`
}

func (s *Storage) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}
	return nil
}

// PublicURL returns the stable URL for path.
func (s *Storage) PublicURL(path string) string {
	return publicURL(s.cfg, path)
}

func publicURL(cfg Config, path string) string {
	escaped := (&url.URL{Path: strings.TrimLeft(path, "/")}).EscapedPath()
	if base := strings.TrimRight(cfg.PublicURL, "/"); base != "" {
		return base + "/" + escaped
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket + "/" + escaped
}
