package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func withMockDefaultTransport(t *testing.T, rt roundTripFunc) {
	t.Helper()
	prev := http.DefaultTransport
	http.DefaultTransport = rt
	t.Cleanup(func() { http.DefaultTransport = prev })
}

func response(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func TestValidateToken_StatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantValid bool
		wantErr   bool
	}{
		{name: "ok", status: http.StatusOK, body: "{}", wantValid: true, wantErr: false},
		{name: "unauthorized", status: http.StatusUnauthorized, body: "{}", wantValid: false, wantErr: false},
		{name: "forbidden", status: http.StatusForbidden, body: "{}", wantValid: false, wantErr: false},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantValid: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var authHeader, apiKey string
			withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if r.URL.Path != "/auth/v1/user" {
					t.Fatalf("unexpected path: %s", r.URL.Path)
				}
				authHeader = r.Header.Get("Authorization")
				apiKey = r.Header.Get("apikey")
				return response(r, tc.status, tc.body), nil
			}))

			valid, err := validateToken(context.Background(), "http://example.test", "anon", "tok123")
			if authHeader != "Bearer tok123" || apiKey != "anon" {
				t.Fatalf("missing headers: %q %q", authHeader, apiKey)
			}
			if valid != tc.wantValid {
				t.Fatalf("valid mismatch got=%v want=%v", valid, tc.wantValid)
			}
			if (err != nil) != tc.wantErr {
				t.Fatalf("err mismatch got=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestEnsureLogin_KeepsValidToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := writeToken(path, "good"); err != nil {
		t.Fatalf("writeToken failed: %v", err)
	}
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/auth/v1/user" {
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
		return response(r, http.StatusOK, "{}"), nil
	}))

	prompt := func(context.Context) (Credentials, error) {
		t.Fatalf("prompt should not run for a valid token")
		return Credentials{}, nil
	}
	if err := EnsureLogin(context.Background(), "http://example.test", "anon", path, prompt); err != nil {
		t.Fatalf("ensure login failed: %v", err)
	}
}

func TestEnsureLogin_PasswordGrantPersistsToken(t *testing.T) {
	var gotCreds Credentials
	var gotGrant string
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/v1/token" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotGrant = r.URL.Query().Get("grant_type")
		_ = json.NewDecoder(r.Body).Decode(&gotCreds)
		return response(r, http.StatusOK, `{"access_token":" fresh ","refresh_token":"r"}`), nil
	}))

	path := filepath.Join(t.TempDir(), "auth", "token")
	prompt := func(context.Context) (Credentials, error) {
		return Credentials{Email: " ann@example.com ", Password: "pw"}, nil
	}
	if err := EnsureLogin(context.Background(), "http://example.test", "anon", path, prompt); err != nil {
		t.Fatalf("ensure login failed: %v", err)
	}
	if gotGrant != "password" {
		t.Fatalf("unexpected grant type: %q", gotGrant)
	}
	if gotCreds.Email != "ann@example.com" || gotCreds.Password != "pw" {
		t.Fatalf("unexpected credentials: %+v", gotCreds)
	}
	got, err := readToken(path)
	if err != nil || got != "fresh" {
		t.Fatalf("unexpected persisted token %q: %v", got, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 token file, got %v", info.Mode().Perm())
	}
}

func TestEnsureLogin_SignInFailure(t *testing.T) {
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return response(r, http.StatusBadRequest, `{"error":"invalid_grant"}`), nil
	}))
	path := filepath.Join(t.TempDir(), "token")
	prompt := func(context.Context) (Credentials, error) {
		return Credentials{Email: "a@b.c", Password: "wrong"}, nil
	}
	err := EnsureLogin(context.Background(), "http://example.test", "anon", path, prompt)
	if err == nil || !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("expected sign-in failure, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("token should not be written on failure")
	}
}

func TestEnsureLogin_PromptError(t *testing.T) {
	cancelled := errors.New("cancelled")
	err := EnsureLogin(context.Background(), "http://example.test", "anon", filepath.Join(t.TempDir(), "token"),
		func(context.Context) (Credentials, error) { return Credentials{}, cancelled })
	if !errors.Is(err, cancelled) {
		t.Fatalf("expected prompt error, got %v", err)
	}
}

func TestPasswordGrant_RequiresCredentials(t *testing.T) {
	if _, err := passwordGrant(context.Background(), "http://example.test", "anon", Credentials{Email: " "}); err == nil {
		t.Fatalf("expected missing-credentials error")
	}
}
