// Package feedsync keeps a local, viewer-relative feed consistent with the
// remote data store while applying like toggles optimistically.
//
// Local state changes happen synchronously under a mutex; remote calls are
// made without holding it. A caller may therefore run the remote half of an
// operation on another goroutine (a tea.Cmd) and report the result back.
package feedsync

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

const tracerName = "github.com/Cardjinho/Instagram-v0/feedsync"

// Synchronizer owns one viewer's FeedView.
type Synchronizer struct {
	store   app.DataStore
	objects app.ObjectStore
	events  app.EventPublisher
	viewer  domain.Actor
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
	tracer  trace.Tracer

	mu         sync.Mutex
	view       FeedView
	loaded     bool
	loadSeq    int
	loadCancel context.CancelFunc
	likes      map[string]LikeToggle // in-flight like toggles by post id
	follows    map[string]bool       // in-flight follow toggles by target id
	comments   map[string][]domain.Comment

	out outbox
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithObjectStore enables CreatePost.
func WithObjectStore(o app.ObjectStore) Option {
	return func(s *Synchronizer) { s.objects = o }
}

// WithEvents publishes successful mutations to p.
func WithEvents(p app.EventPublisher) Option {
	return func(s *Synchronizer) { s.events = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// WithClock overrides time.Now, used for story expiry and post paths.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Synchronizer for viewer backed by store.
func New(store app.DataStore, viewer domain.Actor, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:    store,
		viewer:   viewer,
		log:      zap.NewNop(),
		now:      time.Now,
		tracer:   otel.Tracer(tracerName),
		likes:    make(map[string]LikeToggle),
		follows:  make(map[string]bool),
		comments: make(map[string][]domain.Comment),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("viewer", viewer.ID))
	return s
}

// Viewer returns the actor the feed is computed for.
func (s *Synchronizer) Viewer() domain.Actor { return s.viewer }

// View returns a copy of the current FeedView.
func (s *Synchronizer) View() FeedView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.clone()
}

// Loaded reports whether a feed has been committed at least once.
func (s *Synchronizer) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LoadTicket identifies one feed load. Only the most recent ticket may commit.
type LoadTicket struct {
	Seq int
	Ctx context.Context
}

// BeginLoad starts a new feed load and cancels the previous one.
func (s *Synchronizer) BeginLoad(parent context.Context) LoadTicket {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadCancel != nil {
		s.loadCancel()
	}
	s.loadSeq++
	s.loadCancel = cancel
	return LoadTicket{Seq: s.loadSeq, Ctx: ctx}
}

// FetchFeed reads posts and the viewer's likes without touching local state.
// Likes are resolved with one batched query keyed by the viewer and post ids.
func (s *Synchronizer) FetchFeed(ctx context.Context) (FeedView, error) {
	ctx, span := s.tracer.Start(ctx, "feedsync.FetchFeed")
	defer span.End()
	start := s.now()

	posts, err := s.store.SelectPosts(ctx)
	if err != nil {
		s.metrics.observe(opLoadFeed, resultError, start, s.now())
		return FeedView{}, &domain.SyncError{Op: "load feed", Err: err}
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked := map[string]bool{}
	if len(ids) > 0 {
		liked, err = s.store.LikedPostIDs(ctx, s.viewer.ID, ids)
		if err != nil {
			s.metrics.observe(opLoadFeed, resultError, start, s.now())
			return FeedView{}, &domain.SyncError{Op: "load likes", Err: err}
		}
	}
	for i := range posts {
		posts[i].LikedByViewer = liked[posts[i].ID]
	}
	sortPosts(posts)

	items := make([]FeedItem, len(posts))
	for i, p := range posts {
		items[i] = FeedItem{Post: p}
	}
	span.SetAttributes(attribute.Int("feed.posts", len(items)))
	s.metrics.observe(opLoadFeed, resultOK, start, s.now())
	return FeedView{Items: items, LoadedAt: s.now()}, nil
}

// CommitLoad installs view if ticket is still the current load. Like toggles
// that are still in flight are re-applied on top of the fetched rows so the
// viewer keeps seeing their intent.
func (s *Synchronizer) CommitLoad(ticket LoadTicket, view FeedView) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.Seq != s.loadSeq {
		s.log.Debug("discarding stale feed", zap.Int("seq", ticket.Seq), zap.Int("current", s.loadSeq))
		s.metrics.staleLoad()
		return false
	}
	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}
	next := view.clone()
	for i := range next.Items {
		t, ok := s.likes[next.Items[i].Post.ID]
		if !ok {
			continue
		}
		p := &next.Items[i].Post
		if p.LikedByViewer != t.Intended() {
			p.LikedByViewer = t.Intended()
			p.LikesCount += t.delta()
		}
		next.Items[i].Pending = true
	}
	s.view = next
	s.loaded = true
	return true
}

// LoadFeed fetches and commits the feed. On failure the previous view is
// left untouched and a *domain.SyncError is returned.
func (s *Synchronizer) LoadFeed(ctx context.Context) (FeedView, error) {
	ticket := s.BeginLoad(ctx)
	view, err := s.FetchFeed(ticket.Ctx)
	if err != nil {
		s.log.Warn("feed load failed", zap.Error(err))
		return s.View(), err
	}
	if !s.CommitLoad(ticket, view) {
		return s.View(), &domain.SyncError{Op: "load feed", Err: context.Canceled}
	}
	return s.View(), nil
}
