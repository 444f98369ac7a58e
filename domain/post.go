package domain

import "time"

// Actor is the signed-in user for the current session.
type Actor struct {
	ID       string
	Handle   string
	Email    string
	FullName string
}

// AuthorSummary is the profile subset embedded in posts, comments and stories.
type AuthorSummary struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// Profile is a user's public profile row.
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Website        string    `json:"website,omitempty"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	PostsCount     int       `json:"posts_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Post is a single image post.
type Post struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	ImageURL      string        `json:"image_url"`
	Caption       *string       `json:"caption"`
	LikesCount    int           `json:"likes_count"`
	CommentsCount int           `json:"comments_count"`
	CreatedAt     time.Time     `json:"created_at"`
	Author        AuthorSummary `json:"profiles"`

	// LikedByViewer is derived per viewer from the likes relation; it is
	// never written back to the posts table.
	LikedByViewer bool `json:"-"`
}

// CaptionText returns the caption or "" when the post has none.
func (p Post) CaptionText() string {
	if p.Caption == nil {
		return ""
	}
	return *p.Caption
}

// Comment is a text reply attached to a post.
type Comment struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	PostID    string        `json:"post_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Author    AuthorSummary `json:"profiles"`
}

// Story is an ephemeral image that stops being visible at ExpiresAt.
type Story struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	ImageURL  string        `json:"image_url"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Author    AuthorSummary `json:"profiles"`
}

// VisibleAt reports whether the story is still visible at now.
func (s Story) VisibleAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
