package feedsync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// MaxImageBytes caps uploaded post images.
const MaxImageBytes = 15 << 20

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// CheckImagePath expands a leading ~ and verifies raw names a readable
// image file of a supported type. It returns the cleaned path.
func CheckImagePath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", &domain.ValidationError{Field: "image", Err: domain.ErrMissingImage}
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", p, err)
		}
		p = filepath.Join(home, rest)
	}
	p = filepath.Clean(p)
	if !imageExts[strings.ToLower(filepath.Ext(p))] {
		return "", &domain.ValidationError{Field: "image", Err: fmt.Errorf("unsupported file type %q", filepath.Ext(p))}
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &domain.ValidationError{Field: "image", Err: fmt.Errorf("%s does not exist", p)}
		}
		return "", err
	}
	switch {
	case info.IsDir():
		return "", &domain.ValidationError{Field: "image", Err: fmt.Errorf("%s is a directory", p)}
	case info.Size() == 0:
		return "", &domain.ValidationError{Field: "image", Err: domain.ErrMissingImage}
	case info.Size() > MaxImageBytes:
		return "", &domain.ValidationError{Field: "image", Err: fmt.Errorf("%s is larger than %d MB", filepath.Base(p), MaxImageBytes>>20)}
	}
	return p, nil
}

// OpenImage checks path and opens it as the image of a NewPost. The caller
// closes the returned file once CreatePost returns.
func OpenImage(path, caption string) (NewPost, *os.File, error) {
	p, err := CheckImagePath(path)
	if err != nil {
		return NewPost{}, nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return NewPost{}, nil, fmt.Errorf("opening image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return NewPost{}, nil, fmt.Errorf("reading image: %w", err)
	}
	return NewPost{FileName: filepath.Base(p), Image: f, Size: info.Size(), Caption: caption}, f, nil
}
