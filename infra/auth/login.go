package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Credentials is an email/password pair for the password grant.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Prompt asks the user for credentials.
type Prompt func(ctx context.Context) (Credentials, error)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// EnsureLogin guarantees a valid session token exists at tokenPath.
// It validates an existing token and falls back to an email/password sign-in.
func EnsureLogin(ctx context.Context, baseURL, apiKey, tokenPath string, prompt Prompt) error {
	token, err := readToken(tokenPath)
	if err == nil && token != "" {
		valid, err := validateToken(ctx, baseURL, apiKey, token)
		if err != nil {
			return err
		}
		if valid {
			return nil
		}
	}
	if prompt == nil {
		return errors.New("not signed in and no credentials prompt available")
	}

	creds, err := prompt(ctx)
	if err != nil {
		return err
	}
	token, err = passwordGrant(ctx, baseURL, apiKey, creds)
	if err != nil {
		return err
	}
	return writeToken(tokenPath, token)
}

func validateToken(ctx context.Context, baseURL, apiKey, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/auth/v1/user", nil)
	if err != nil {
		return false, fmt.Errorf("creating token validation request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return false, fmt.Errorf("validating session token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("token validation failed: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return true, nil
}

func passwordGrant(ctx context.Context, baseURL, apiKey string, creds Credentials) (string, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return "", errors.New("email and password are required")
	}
	body, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("encoding credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating sign-in request: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 15 * time.Second}).Do(req)
	if err != nil {
		return "", fmt.Errorf("signing in: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading sign-in response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sign-in failed: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var tr tokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return "", fmt.Errorf("parsing sign-in response: %w", err)
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return "", errors.New("sign-in response missing access token")
	}
	return strings.TrimSpace(tr.AccessToken), nil
}
