// Package memstore is an in-process app.DataStore. It backs the offline demo
// mode and the synchronizer tests, and mimics the hosted backend's triggers
// by maintaining like, comment and follow counters on write.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

type pair struct{ a, b string }

// Store is a goroutine-safe in-memory DataStore.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	seq      int
	profiles map[string]domain.Profile
	posts    []domain.Post
	likes    map[pair]bool
	comments []domain.Comment
	follows  map[pair]bool
	stories  []domain.Story
	calls    map[string]int
	fail     map[string]error
}

var _ app.DataStore = (*Store)(nil)

// New creates an empty store. now may be nil.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		profiles: make(map[string]domain.Profile),
		likes:    make(map[pair]bool),
		follows:  make(map[pair]bool),
		calls:    make(map[string]int),
		fail:     make(map[string]error),
	}
}

// FailNext makes the next call to op return err. op is the method name,
// e.g. "InsertLike".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// Calls returns how many times op was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of calls across all methods.
func (s *Store) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// enter records the call and returns an injected failure. Callers hold s.mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	if err, ok := s.fail[op]; ok {
		delete(s.fail, op)
		return err
	}
	return nil
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%06d", prefix, s.seq)
}

func (s *Store) author(userID string) domain.AuthorSummary {
	p := s.profiles[userID]
	return domain.AuthorSummary{Username: p.Username, AvatarURL: p.AvatarURL, FullName: p.FullName}
}

// AddProfile stores p as-is, replacing any profile with the same id.
func (s *Store) AddProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	s.profiles[p.ID] = p
}

// AddPost stores p, assigning an id and timestamp when missing.
func (s *Store) AddPost(p domain.Post) domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextID("p")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.LikedByViewer = false
	s.posts = append(s.posts, p)
	if prof, ok := s.profiles[p.UserID]; ok {
		prof.PostsCount++
		s.profiles[p.UserID] = prof
	}
	return p
}

// AddStory stores st, assigning an id when missing.
func (s *Store) AddStory(st domain.Story) domain.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == "" {
		st.ID = s.nextID("s")
	}
	s.stories = append(s.stories, st)
	return st
}

// SetLike writes a like row directly, bypassing counters and call counts.
func (s *Store) SetLike(viewerID, postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes[pair{viewerID, postID}] = true
}

// Post returns the stored row for id.
func (s *Store) Post(id string) (domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Post{}, false
}

func (s *Store) postIndex(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) withAuthors(posts []domain.Post) []domain.Post {
	for i := range posts {
		posts[i].Author = s.author(posts[i].UserID)
	}
	return posts
}

func newestFirst(a, b domain.Post) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func (s *Store) SelectPosts(_ context.Context) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectPosts"); err != nil {
		return nil, err
	}
	out := s.withAuthors(slices.Clone(s.posts))
	slices.SortStableFunc(out, newestFirst)
	return out, nil
}

func (s *Store) SelectPostsByUser(_ context.Context, userID string) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectPostsByUser"); err != nil {
		return nil, err
	}
	var out []domain.Post
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	out = s.withAuthors(out)
	slices.SortStableFunc(out, newestFirst)
	return out, nil
}

func (s *Store) InsertPost(_ context.Context, row app.NewPostRow) (domain.Post, error) {
	s.mu.Lock()
	if err := s.enter("InsertPost"); err != nil {
		s.mu.Unlock()
		return domain.Post{}, err
	}
	s.mu.Unlock()
	p := s.AddPost(domain.Post{UserID: row.UserID, ImageURL: row.ImageURL, Caption: row.Caption})
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Author = s.author(p.UserID)
	return p, nil
}

func (s *Store) SelectLike(_ context.Context, viewerID, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectLike"); err != nil {
		return false, err
	}
	return s.likes[pair{viewerID, postID}], nil
}

func (s *Store) LikedPostIDs(_ context.Context, viewerID string, postIDs []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("LikedPostIDs"); err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, id := range postIDs {
		if s.likes[pair{viewerID, id}] {
			out[id] = true
		}
	}
	return out, nil
}

func (s *Store) InsertLike(_ context.Context, viewerID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertLike"); err != nil {
		return err
	}
	i := s.postIndex(postID)
	if i < 0 {
		return fmt.Errorf("insert like: post %s: %w", postID, domain.ErrNotFound)
	}
	k := pair{viewerID, postID}
	if s.likes[k] {
		return fmt.Errorf("insert like: %w", domain.ErrConflict)
	}
	s.likes[k] = true
	s.posts[i].LikesCount++
	return nil
}

func (s *Store) DeleteLike(_ context.Context, viewerID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteLike"); err != nil {
		return err
	}
	k := pair{viewerID, postID}
	if !s.likes[k] {
		return nil
	}
	delete(s.likes, k)
	if i := s.postIndex(postID); i >= 0 {
		s.posts[i].LikesCount--
	}
	return nil
}

func (s *Store) SelectComments(_ context.Context, postID string) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectComments"); err != nil {
		return nil, err
	}
	var out []domain.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			c.Author = s.author(c.UserID)
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) InsertComment(_ context.Context, viewerID, postID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertComment"); err != nil {
		return err
	}
	i := s.postIndex(postID)
	if i < 0 {
		return fmt.Errorf("insert comment: post %s: %w", postID, domain.ErrNotFound)
	}
	s.comments = append(s.comments, domain.Comment{
		ID:        s.nextID("c"),
		UserID:    viewerID,
		PostID:    postID,
		Content:   content,
		CreatedAt: s.now(),
	})
	s.posts[i].CommentsCount++
	return nil
}

func (s *Store) SelectProfile(_ context.Context, username string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectProfile"); err != nil {
		return domain.Profile{}, err
	}
	for _, p := range s.profiles {
		if strings.EqualFold(p.Username, username) {
			return p, nil
		}
	}
	return domain.Profile{}, fmt.Errorf("profile %q: %w", username, domain.ErrNotFound)
}

func (s *Store) SelectProfileByID(_ context.Context, id string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectProfileByID"); err != nil {
		return domain.Profile{}, err
	}
	p, ok := s.profiles[id]
	if !ok {
		return domain.Profile{}, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Store) InsertProfile(_ context.Context, p domain.Profile) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertProfile"); err != nil {
		return domain.Profile{}, err
	}
	if _, ok := s.profiles[p.ID]; ok {
		return domain.Profile{}, fmt.Errorf("insert profile: %w", domain.ErrConflict)
	}
	for _, existing := range s.profiles {
		if strings.EqualFold(existing.Username, p.Username) {
			return domain.Profile{}, fmt.Errorf("insert profile: username taken: %w", domain.ErrConflict)
		}
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.profiles[p.ID] = p
	return p, nil
}

func (s *Store) SelectFollow(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectFollow"); err != nil {
		return false, err
	}
	return s.follows[pair{followerID, followingID}], nil
}

func (s *Store) InsertFollow(_ context.Context, followerID, followingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertFollow"); err != nil {
		return err
	}
	k := pair{followerID, followingID}
	if s.follows[k] {
		return fmt.Errorf("insert follow: %w", domain.ErrConflict)
	}
	s.follows[k] = true
	s.bumpFollowCounts(followerID, followingID, 1)
	return nil
}

func (s *Store) DeleteFollow(_ context.Context, followerID, followingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteFollow"); err != nil {
		return err
	}
	k := pair{followerID, followingID}
	if !s.follows[k] {
		return nil
	}
	delete(s.follows, k)
	s.bumpFollowCounts(followerID, followingID, -1)
	return nil
}

func (s *Store) bumpFollowCounts(followerID, followingID string, d int) {
	if p, ok := s.profiles[followerID]; ok {
		p.FollowingCount += d
		s.profiles[followerID] = p
	}
	if p, ok := s.profiles[followingID]; ok {
		p.FollowersCount += d
		s.profiles[followingID] = p
	}
}

func (s *Store) SelectStories(_ context.Context, expiresAfter time.Time) ([]domain.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SelectStories"); err != nil {
		return nil, err
	}
	var out []domain.Story
	for _, st := range s.stories {
		if st.ExpiresAt.After(expiresAfter) {
			st.Author = s.author(st.UserID)
			out = append(out, st)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Story) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
