package app

import (
	"context"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// EventPublisher receives successful mutations. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}
