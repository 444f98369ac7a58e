package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenProvider supplies the bearer token for the current session.
type TokenProvider interface {
	AccessToken() (string, error)
}

// FileTokenProvider keeps the session token in a single 0600 file.
type FileTokenProvider struct {
	path string
}

func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Path is where the token lives.
func (f *FileTokenProvider) Path() string { return f.path }

func (f *FileTokenProvider) AccessToken() (string, error) {
	token, err := readToken(f.path)
	if err != nil {
		return "", fmt.Errorf("session token %s: %w", f.path, err)
	}
	if token == "" {
		return "", fmt.Errorf("session token %s is empty", f.path)
	}
	return token, nil
}

// Save replaces the stored token, creating parent directories as needed.
func (f *FileTokenProvider) Save(token string) error {
	return writeToken(f.path, token)
}

// Clear signs the session out locally. A missing file is not an error.
func (f *FileTokenProvider) Clear() error {
	err := os.Remove(f.path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("removing session token: %w", err)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(token)), 0o600)
}
