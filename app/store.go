package app

import (
	"context"
	"time"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// NewPostRow is the insert shape for a post.
type NewPostRow struct {
	UserID   string
	ImageURL string
	Caption  *string
}

// DataStore is the remote table store that owns profiles, posts, likes,
// comments, follows and stories.
//
// Reads that match nothing return domain.ErrNotFound, duplicate inserts
// return domain.ErrConflict and rejected credentials domain.ErrUnauthorized.
type DataStore interface {
	// SelectPosts returns every post, newest first, with author summaries.
	SelectPosts(ctx context.Context) ([]domain.Post, error)

	// SelectPostsByUser returns one user's posts, newest first.
	SelectPostsByUser(ctx context.Context, userID string) ([]domain.Post, error)

	// InsertPost creates a post and returns the stored row.
	InsertPost(ctx context.Context, row NewPostRow) (domain.Post, error)

	// SelectLike reports whether viewerID has liked postID.
	SelectLike(ctx context.Context, viewerID, postID string) (bool, error)

	// LikedPostIDs resolves the like relation for many posts in one query.
	// The result only contains ids the viewer has liked.
	LikedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error)

	InsertLike(ctx context.Context, viewerID, postID string) error
	DeleteLike(ctx context.Context, viewerID, postID string) error

	// SelectComments returns a post's comments, oldest first.
	SelectComments(ctx context.Context, postID string) ([]domain.Comment, error)
	InsertComment(ctx context.Context, viewerID, postID, content string) error

	SelectProfile(ctx context.Context, username string) (domain.Profile, error)
	SelectProfileByID(ctx context.Context, id string) (domain.Profile, error)
	InsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error)

	SelectFollow(ctx context.Context, followerID, followingID string) (bool, error)
	InsertFollow(ctx context.Context, followerID, followingID string) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error

	// SelectStories returns stories expiring strictly after expiresAfter, newest first.
	SelectStories(ctx context.Context, expiresAfter time.Time) ([]domain.Story, error)
}
