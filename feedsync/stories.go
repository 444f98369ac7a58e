package feedsync

import (
	"context"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// StoryGroup is one owner's visible stories.
type StoryGroup struct {
	UserID  string
	Author  domain.AuthorSummary
	Stories []domain.Story
}

// GroupStoriesByOwner partitions stories into one group per owner. Owners
// appear in the order they are first seen and each group keeps its stories
// in input order. With newest-first input an owner is placed by their most
// recent story.
func GroupStoriesByOwner(stories []domain.Story) []StoryGroup {
	if len(stories) == 0 {
		return nil
	}
	idx := make(map[string]int)
	var groups []StoryGroup
	for _, st := range stories {
		i, ok := idx[st.UserID]
		if !ok {
			i = len(groups)
			idx[st.UserID] = i
			groups = append(groups, StoryGroup{UserID: st.UserID, Author: st.Author})
		}
		groups[i].Stories = append(groups[i].Stories, st)
	}
	return groups
}

// LoadStories fetches stories that have not expired and groups them by owner.
func (s *Synchronizer) LoadStories(ctx context.Context) ([]StoryGroup, error) {
	ctx, span := s.tracer.Start(ctx, "feedsync.LoadStories")
	defer span.End()
	start := s.now()

	stories, err := s.store.SelectStories(ctx, start)
	if err != nil {
		s.metrics.observe(opLoadStories, resultError, start, s.now())
		return nil, &domain.SyncError{Op: "load stories", Err: err}
	}
	visible := make([]domain.Story, 0, len(stories))
	for _, st := range stories {
		if st.VisibleAt(start) {
			visible = append(visible, st)
		}
	}
	s.metrics.observe(opLoadStories, resultOK, start, s.now())
	return GroupStoriesByOwner(visible), nil
}
