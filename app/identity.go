package app

import (
	"context"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// IdentityProvider supplies the signed-in actor.
type IdentityProvider interface {
	// CurrentActor returns domain.ErrUnauthorized when nobody is signed in.
	CurrentActor(ctx context.Context) (domain.Actor, error)

	SignOut(ctx context.Context) error
}
