package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

// Claims is the subset of a session JWT the client reads.
type Claims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
		UserName string `json:"user_name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// ParseClaims decodes token. With a non-empty secret the HS256 signature and
// expiry are verified; otherwise only the payload is read, since the server
// verifies the token on every request.
func ParseClaims(token, secret string, now time.Time) (Claims, error) {
	var c Claims
	token = strings.TrimSpace(token)
	if token == "" {
		return c, fmt.Errorf("empty token: %w", domain.ErrUnauthorized)
	}
	if secret != "" {
		_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return now }))
		if err != nil {
			return Claims{}, fmt.Errorf("invalid token: %w: %w", domain.ErrUnauthorized, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
			return Claims{}, fmt.Errorf("malformed token: %w: %w", domain.ErrUnauthorized, err)
		}
		if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
			return Claims{}, fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
		}
	}
	if c.Subject == "" {
		return Claims{}, fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return c, nil
}

// Actor converts the claims to the session actor.
func (c Claims) Actor() domain.Actor {
	return domain.Actor{
		ID:       c.Subject,
		Handle:   c.UserMetadata.UserName,
		Email:    c.Email,
		FullName: c.UserMetadata.FullName,
	}
}

// ClaimsIdentity is an IdentityProvider that derives the actor from the
// locally stored session token. Used with the self-hosted backend.
type ClaimsIdentity struct {
	tokens *FileTokenProvider
	secret string
	now    func() time.Time
}

var _ app.IdentityProvider = (*ClaimsIdentity)(nil)

// NewClaimsIdentity creates a ClaimsIdentity. secret may be empty.
func NewClaimsIdentity(tokens *FileTokenProvider, secret string) *ClaimsIdentity {
	return &ClaimsIdentity{tokens: tokens, secret: secret, now: time.Now}
}

func (c *ClaimsIdentity) CurrentActor(_ context.Context) (domain.Actor, error) {
	tok, err := c.tokens.AccessToken()
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	claims, err := ParseClaims(tok, c.secret, c.now())
	if err != nil {
		return domain.Actor{}, err
	}
	return claims.Actor(), nil
}

func (c *ClaimsIdentity) SignOut(_ context.Context) error {
	return c.tokens.Clear()
}

// IssueToken signs an HS256 session token for actor. It backs the
// self-hosted seed and login flows.
func IssueToken(actor domain.Actor, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("issuing token: empty secret")
	}
	c := Claims{Email: actor.Email}
	c.UserMetadata.FullName = actor.FullName
	c.UserMetadata.UserName = actor.Handle
	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   actor.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
