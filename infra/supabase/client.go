package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/infra/auth"
)

// Client is a thin HTTP wrapper for a Supabase project. It handles base URL
// construction and injects the project API key and the user's bearer token.
type Client struct {
	baseURL       string
	apiKey        string
	tokenProvider auth.TokenProvider
	http          *http.Client
}

// NewClient creates a Supabase API client. Requests are traced with otelhttp.
func NewClient(baseURL, apiKey string, tp auth.TokenProvider) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		tokenProvider: tp,
		http: &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Unwrap maps the status onto the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound, http.StatusNotAcceptable:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	}
	return nil
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	header      map[string]string
	anonymous   bool
}

// Get performs an authenticated GET request.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path})
}

// Post performs an authenticated POST with a JSON body and asks PostgREST to
// return the written rows.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) ([]byte, error) {
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
		header:      map[string]string{"Prefer": "return=representation"},
	})
}

// Delete performs an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodDelete, path: path})
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	url := c.baseURL + r.path

	req, err := http.NewRequestWithContext(ctx, r.method, url, r.body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	bearer := c.apiKey
	if !r.anonymous {
		token, err := c.tokenProvider.AccessToken()
		if err != nil {
			return nil, fmt.Errorf("auth: %w: %w", domain.ErrUnauthorized, err)
		}
		bearer = token
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if r.body != nil {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Method: r.method,
			Path:   r.path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	return data, nil
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
