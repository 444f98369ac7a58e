package feedsync

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// LikeToggle is a like mutation that has been applied locally and is
// waiting for its remote write.
type LikeToggle struct {
	PostID   string
	WasLiked bool
}

// Intended is the liked state the viewer asked for.
func (t LikeToggle) Intended() bool { return !t.WasLiked }

func (t LikeToggle) delta() int {
	if t.WasLiked {
		return -1
	}
	return 1
}

// BeginToggleLike flips the post's liked flag and adjusts its like counter
// in the local view and marks the post in flight. A second toggle for the
// same post is rejected with domain.ErrToggleInFlight until FinishToggleLike.
// currentlyLiked must match the view; a stale value is rejected with
// domain.ErrConflict and nothing changes.
func (s *Synchronizer) BeginToggleLike(postID string, currentlyLiked bool) (LikeToggle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.likes[postID]; busy {
		s.metrics.toggle(resultRejected)
		return LikeToggle{}, fmt.Errorf("like %s: %w", postID, domain.ErrToggleInFlight)
	}
	i := s.view.Index(postID)
	if i < 0 {
		return LikeToggle{}, fmt.Errorf("like %s: %w", postID, domain.ErrNotFound)
	}
	it := &s.view.Items[i]
	if it.Post.LikedByViewer != currentlyLiked {
		// The caller acted on an outdated copy of the post.
		s.metrics.toggle(resultRejected)
		return LikeToggle{}, fmt.Errorf("like %s: caller saw liked=%t, view has %t: %w",
			postID, currentlyLiked, it.Post.LikedByViewer, domain.ErrConflict)
	}
	t := LikeToggle{PostID: postID, WasLiked: currentlyLiked}
	it.Post.LikedByViewer = t.Intended()
	it.Post.LikesCount += t.delta()
	it.Pending = true
	s.likes[postID] = t
	return t, nil
}

// WriteLike performs the remote half of t. A failed write is checked against
// the remote like row before being reported: if the row already matches the
// intended state (a duplicate insert, or a write that landed before the error
// surfaced) the toggle counts as converged and nil is returned.
func (s *Synchronizer) WriteLike(ctx context.Context, t LikeToggle) error {
	ctx, span := s.tracer.Start(ctx, "feedsync.WriteLike")
	defer span.End()
	span.SetAttributes(attribute.String("post.id", t.PostID), attribute.Bool("like.intended", t.Intended()))

	var err error
	if t.WasLiked {
		err = s.store.DeleteLike(ctx, s.viewer.ID, t.PostID)
	} else {
		err = s.store.InsertLike(ctx, s.viewer.ID, t.PostID)
	}
	if err == nil {
		typ := domain.EventLikeCreated
		if t.WasLiked {
			typ = domain.EventLikeDeleted
		}
		s.publish(typ, t.PostID)
		return nil
	}
	if errors.Is(err, domain.ErrConflict) && t.Intended() {
		return nil
	}
	liked, serr := s.store.SelectLike(ctx, s.viewer.ID, t.PostID)
	if serr == nil && liked == t.Intended() {
		s.log.Info("like write failed but remote converged", zap.String("post", t.PostID), zap.Error(err))
		return nil
	}
	span.RecordError(err)
	return err
}

// FinishToggleLike clears the in-flight marker. When writeErr is non-nil the
// optimistic change is reverted and a *domain.MutationError is returned.
func (s *Synchronizer) FinishToggleLike(t LikeToggle, writeErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, t.PostID)

	i := s.view.Index(t.PostID)
	if i >= 0 {
		s.view.Items[i].Pending = false
	}
	if writeErr == nil {
		s.metrics.toggle(resultOK)
		return nil
	}
	reverted := false
	if i >= 0 {
		p := &s.view.Items[i].Post
		if p.LikedByViewer == t.Intended() {
			p.LikedByViewer = t.WasLiked
			p.LikesCount -= t.delta()
			reverted = true
		}
	}
	s.metrics.toggle(resultReverted)
	s.log.Warn("like toggle failed", zap.String("post", t.PostID), zap.Bool("reverted", reverted), zap.Error(writeErr))
	return &domain.MutationError{Op: "like", ID: t.PostID, Reverted: reverted, Err: writeErr}
}

// ToggleLike runs all three phases of a like toggle in sequence.
func (s *Synchronizer) ToggleLike(ctx context.Context, postID string, currentlyLiked bool) error {
	t, err := s.BeginToggleLike(postID, currentlyLiked)
	if err != nil {
		return err
	}
	return s.FinishToggleLike(t, s.WriteLike(ctx, t))
}

// Pending reports whether a like toggle for postID is in flight.
func (s *Synchronizer) Pending(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.likes[postID]
	return ok
}
