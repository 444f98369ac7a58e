package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

// Identity implements app.IdentityProvider with the auth API.
type Identity struct {
	client *Client
	clear  func() error
}

var _ app.IdentityProvider = (*Identity)(nil)

// NewIdentity creates an IdentityProvider. clearToken, if set, is called on
// sign-out to drop the locally stored session.
func NewIdentity(client *Client, clearToken func() error) *Identity {
	return &Identity{client: client, clear: clearToken}
}

type authUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		FullName string `json:"full_name"`
		UserName string `json:"user_name"`
	} `json:"user_metadata"`
}

func (i *Identity) CurrentActor(ctx context.Context) (domain.Actor, error) {
	data, err := i.client.Get(ctx, "/auth/v1/user")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Actor{}, fmt.Errorf("fetching user: %w", domain.ErrUnauthorized)
		}
		return domain.Actor{}, fmt.Errorf("fetching user: %w", err)
	}
	u, err := decode[authUser](data, "user")
	if err != nil {
		return domain.Actor{}, err
	}
	if u.ID == "" {
		return domain.Actor{}, fmt.Errorf("fetching user: %w", domain.ErrUnauthorized)
	}
	return domain.Actor{
		ID:       u.ID,
		Handle:   sanitizeForTerminal(u.Metadata.UserName),
		Email:    u.Email,
		FullName: sanitizeForTerminal(u.Metadata.FullName),
	}, nil
}

// SignOut revokes the session remotely and clears the local token. An
// already-expired session is not an error.
func (i *Identity) SignOut(ctx context.Context) error {
	_, err := i.client.do(ctx, request{method: http.MethodPost, path: "/auth/v1/logout"})
	if err != nil && !errors.Is(err, domain.ErrUnauthorized) {
		return fmt.Errorf("signing out: %w", err)
	}
	if i.clear != nil {
		if err := i.clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
	}
	return nil
}
