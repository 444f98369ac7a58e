package memstore

import (
	"slices"

	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/infra/seed"
)

// Load replaces the store's contents with ds. Counters are taken from ds.
func (s *Store) Load(ds seed.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = make(map[string]domain.Profile, len(ds.Profiles))
	for _, p := range ds.Profiles {
		s.profiles[p.ID] = p
	}
	s.posts = slices.Clone(ds.Posts)
	s.comments = slices.Clone(ds.Comments)
	s.stories = slices.Clone(ds.Stories)
	s.likes = make(map[pair]bool, len(ds.Likes))
	for _, l := range ds.Likes {
		s.likes[pair{l.UserID, l.PostID}] = true
	}
	s.follows = make(map[pair]bool, len(ds.Follows))
	for _, f := range ds.Follows {
		s.follows[pair{f.FollowerID, f.FollowingID}] = true
	}
}
