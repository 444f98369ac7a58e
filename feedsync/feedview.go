package feedsync

import (
	"slices"
	"strings"
	"time"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// FeedItem is a post as the viewer sees it.
type FeedItem struct {
	Post    domain.Post
	Pending bool // a like toggle for this post is waiting on the remote store
}

// FeedView is the ordered, viewer-relative list of posts.
type FeedView struct {
	Items    []FeedItem
	LoadedAt time.Time
}

// Len returns the number of posts in the view.
func (v FeedView) Len() int { return len(v.Items) }

// Index returns the position of postID, or -1.
func (v FeedView) Index(postID string) int {
	for i, it := range v.Items {
		if it.Post.ID == postID {
			return i
		}
	}
	return -1
}

// Find returns the item for postID.
func (v FeedView) Find(postID string) (FeedItem, bool) {
	i := v.Index(postID)
	if i < 0 {
		return FeedItem{}, false
	}
	return v.Items[i], true
}

func (v FeedView) clone() FeedView {
	return FeedView{Items: slices.Clone(v.Items), LoadedAt: v.LoadedAt}
}

// sortPosts orders posts newest first. Remote timestamps are not unique, so
// equal timestamps fall back to ascending id.
func sortPosts(posts []domain.Post) {
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// sortComments orders comments oldest first, ties by ascending id.
func sortComments(comments []domain.Comment) {
	slices.SortStableFunc(comments, func(a, b domain.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
