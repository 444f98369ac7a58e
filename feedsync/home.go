package feedsync

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// Home is the first screen: the feed and the stories bar.
type Home struct {
	Feed    FeedView
	Stories []StoryGroup
}

// LoadHome loads the feed and the stories concurrently. The feed is only
// committed when both succeed, so a failure leaves the previous view in place.
// A load overtaken by a newer one returns a *domain.SyncError wrapping
// context.Canceled and commits nothing.
func (s *Synchronizer) LoadHome(ctx context.Context) (Home, error) {
	ticket := s.BeginLoad(ctx)
	g, gctx := errgroup.WithContext(ticket.Ctx)

	var home Home
	g.Go(func() error {
		v, err := s.FetchFeed(gctx)
		home.Feed = v
		return err
	})
	g.Go(func() error {
		st, err := s.LoadStories(gctx)
		home.Stories = st
		return err
	})
	if err := g.Wait(); err != nil {
		if !s.IsCurrent(ticket) {
			// Failed because a newer load cancelled it.
			return Home{Feed: s.View()}, &domain.SyncError{Op: "load home", Err: context.Canceled}
		}
		return Home{Feed: s.View()}, err
	}
	if !s.CommitLoad(ticket, home.Feed) {
		return Home{Feed: s.View()}, &domain.SyncError{Op: "load home", Err: context.Canceled}
	}
	home.Feed = s.View()
	return home, nil
}

// IsCurrent reports whether ticket belongs to the most recent load.
func (s *Synchronizer) IsCurrent(ticket LoadTicket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ticket.Seq == s.loadSeq
}
