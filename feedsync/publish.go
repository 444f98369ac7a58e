package feedsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

// NewPost is the input of CreatePost.
type NewPost struct {
	FileName string // original file name, used for the extension
	Image    io.Reader
	Size     int64
	Caption  string
}

// CreatePost uploads the image, resolves its public URL and inserts the
// post row. A missing image is rejected before anything is uploaded.
func (s *Synchronizer) CreatePost(ctx context.Context, in NewPost) (domain.Post, error) {
	if in.Image == nil || in.Size <= 0 || strings.TrimSpace(in.FileName) == "" {
		s.metrics.validation()
		return domain.Post{}, &domain.ValidationError{Field: "image", Err: domain.ErrMissingImage}
	}
	if s.objects == nil {
		return domain.Post{}, errors.New("create post: no object store configured")
	}

	ctx, span := s.tracer.Start(ctx, "feedsync.CreatePost")
	defer span.End()
	start := s.now()

	key := ObjectPath(in.FileName, start.UnixMilli())
	if err := s.objects.Upload(ctx, key, in.Image, in.Size, ContentType(in.FileName)); err != nil {
		s.metrics.observe(opCreatePost, resultError, start, s.now())
		return domain.Post{}, &domain.MutationError{Op: "upload image", ID: key, Err: err}
	}

	row := app.NewPostRow{UserID: s.viewer.ID, ImageURL: s.objects.PublicURL(key)}
	if c := strings.TrimSpace(in.Caption); c != "" {
		row.Caption = &c
	}
	post, err := s.store.InsertPost(ctx, row)
	if err != nil {
		s.metrics.observe(opCreatePost, resultError, start, s.now())
		s.log.Warn("post insert failed after upload", zap.String("object", key), zap.Error(err))
		return domain.Post{}, &domain.MutationError{Op: "create post", ID: key, Err: err}
	}
	s.metrics.observe(opCreatePost, resultOK, start, s.now())
	s.publish(domain.EventPostCreated, post.ID)
	return post, nil
}

// ObjectPath builds the storage key for an uploaded post image.
func ObjectPath(fileName string, unixMillis int64) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if ext == "" {
		return fmt.Sprintf("posts/%d", unixMillis)
	}
	return fmt.Sprintf("posts/%d.%s", unixMillis, ext)
}

// ContentType guesses the MIME type from the file extension.
func ContentType(fileName string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); t != "" {
		return t
	}
	return "application/octet-stream"
}
