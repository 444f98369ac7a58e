package feedsync

import (
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// LoadComments fetches a post's comments oldest first. Counters in the feed
// view are left alone.
func (s *Synchronizer) LoadComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	ctx, span := s.tracer.Start(ctx, "feedsync.LoadComments")
	defer span.End()
	span.SetAttributes(attribute.String("post.id", postID))
	start := s.now()

	comments, err := s.store.SelectComments(ctx, postID)
	if err != nil {
		s.metrics.observe(opLoadComments, resultError, start, s.now())
		return nil, &domain.SyncError{Op: "load comments", Err: err}
	}
	sortComments(comments)
	s.metrics.observe(opLoadComments, resultOK, start, s.now())

	s.mu.Lock()
	s.comments[postID] = slices.Clone(comments)
	s.mu.Unlock()
	return comments, nil
}

// Comments returns the last loaded comment list for postID.
func (s *Synchronizer) Comments(postID string) ([]domain.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[postID]
	return slices.Clone(c), ok
}

// PostComment inserts a comment and then re-queries the post's comments so
// the stored row's timestamp and position are what the caller sees.
// Blank text is rejected locally without any remote call.
func (s *Synchronizer) PostComment(ctx context.Context, postID, text string) ([]domain.Comment, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		s.metrics.validation()
		return nil, &domain.ValidationError{Field: "content", Err: domain.ErrEmptyComment}
	}

	ctx, span := s.tracer.Start(ctx, "feedsync.PostComment")
	defer span.End()
	start := s.now()

	if err := s.store.InsertComment(ctx, s.viewer.ID, postID, content); err != nil {
		s.metrics.observe(opPostComment, resultError, start, s.now())
		s.log.Warn("comment insert failed", zap.String("post", postID), zap.Error(err))
		return nil, &domain.MutationError{Op: "comment", ID: postID, Err: err}
	}
	s.metrics.observe(opPostComment, resultOK, start, s.now())
	s.publish(domain.EventCommentCreated, postID)

	s.mu.Lock()
	if i := s.view.Index(postID); i >= 0 {
		s.view.Items[i].Post.CommentsCount++
	}
	s.mu.Unlock()

	return s.LoadComments(ctx, postID)
}
