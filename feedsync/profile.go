package feedsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

// EnsureProfile returns the actor's profile, creating it on first sign-in.
func EnsureProfile(ctx context.Context, store app.DataStore, actor domain.Actor) (domain.Profile, error) {
	p, err := store.SelectProfileByID(ctx, actor.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{}, &domain.SyncError{Op: "load profile", Err: err}
	}
	p, err = store.InsertProfile(ctx, domain.Profile{
		ID:       actor.ID,
		Username: DefaultUsername(actor),
		FullName: actor.FullName,
	})
	if err != nil {
		return domain.Profile{}, &domain.MutationError{Op: "create profile", ID: actor.ID, Err: err}
	}
	return p, nil
}

// DefaultUsername derives a username for a new profile: the actor's handle,
// else the local part of their email, else "user".
func DefaultUsername(actor domain.Actor) string {
	if h := strings.TrimSpace(actor.Handle); h != "" {
		return h
	}
	if local, _, ok := strings.Cut(actor.Email, "@"); ok && strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return "user"
}

// ProfilePage is everything the profile screen shows.
type ProfilePage struct {
	Profile   domain.Profile
	Posts     []domain.Post
	Following bool
	IsOwn     bool
}

// LoadProfile fetches a profile by username together with its posts and
// whether the viewer follows it.
func (s *Synchronizer) LoadProfile(ctx context.Context, username string) (ProfilePage, error) {
	ctx, span := s.tracer.Start(ctx, "feedsync.LoadProfile")
	defer span.End()

	profile, err := s.store.SelectProfile(ctx, strings.TrimSpace(username))
	if err != nil {
		return ProfilePage{}, &domain.SyncError{Op: "load profile", Err: err}
	}
	page := ProfilePage{Profile: profile, IsOwn: profile.ID == s.viewer.ID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := s.store.SelectPostsByUser(gctx, profile.ID)
		if err != nil {
			return err
		}
		sortPosts(posts)
		page.Posts = posts
		return nil
	})
	if !page.IsOwn {
		g.Go(func() error {
			following, err := s.store.SelectFollow(gctx, s.viewer.ID, profile.ID)
			if err != nil {
				return err
			}
			page.Following = following
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProfilePage{}, &domain.SyncError{Op: "load profile", Err: err}
	}
	return page, nil
}

// ToggleFollow follows or unfollows targetID and returns the new state.
// Only one toggle per target may be in flight.
func (s *Synchronizer) ToggleFollow(ctx context.Context, targetID string, currentlyFollowing bool) (bool, error) {
	if targetID == s.viewer.ID {
		s.metrics.validation()
		return currentlyFollowing, &domain.ValidationError{Field: "target", Err: domain.ErrSelfFollow}
	}
	s.mu.Lock()
	if s.follows[targetID] {
		s.mu.Unlock()
		return currentlyFollowing, fmt.Errorf("follow %s: %w", targetID, domain.ErrToggleInFlight)
	}
	s.follows[targetID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.follows, targetID)
		s.mu.Unlock()
	}()

	var err error
	typ := domain.EventFollowCreated
	if currentlyFollowing {
		typ = domain.EventFollowDeleted
		err = s.store.DeleteFollow(ctx, s.viewer.ID, targetID)
		if errors.Is(err, domain.ErrNotFound) {
			// Already unfollowed.
			err = nil
		}
	} else {
		err = s.store.InsertFollow(ctx, s.viewer.ID, targetID)
		if errors.Is(err, domain.ErrConflict) {
			err = nil
		}
	}
	if err != nil {
		return currentlyFollowing, &domain.MutationError{Op: "follow", ID: targetID, Reverted: true, Err: err}
	}
	s.publish(typ, targetID)
	return !currentlyFollowing, nil
}
