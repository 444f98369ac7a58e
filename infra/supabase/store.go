package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

const authorColumns = "profiles(username,avatar_url,full_name)"

// Store implements app.DataStore on top of the PostgREST data API.
type Store struct {
	client *Client
}

var _ app.DataStore = (*Store)(nil)

// NewStore creates a DataStore backed by the project's REST API.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func restPath(table string, q url.Values) string {
	if len(q) == 0 {
		return "/rest/v1/" + table
	}
	return "/rest/v1/" + table + "?" + q.Encode()
}

func withAuthor(q url.Values) url.Values {
	q.Set("select", "*,"+authorColumns)
	return q
}

func decode[T any](data []byte, what string) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parsing %s: %w", what, err)
	}
	return v, nil
}

func first[T any](rows []T, what string) (T, error) {
	if len(rows) == 0 {
		var zero T
		return zero, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return rows[0], nil
}

func jsonBody(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	return bytes.NewReader(data), nil
}

func (s *Store) selectPosts(ctx context.Context, q url.Values) ([]domain.Post, error) {
	q = withAuthor(q)
	q.Set("order", "created_at.desc,id.asc")
	data, err := s.client.Get(ctx, restPath("posts", q))
	if err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}
	posts, err := decode[[]domain.Post](data, "posts")
	if err != nil {
		return nil, err
	}
	for i := range posts {
		cleanPost(&posts[i])
	}
	return posts, nil
}

func (s *Store) SelectPosts(ctx context.Context) ([]domain.Post, error) {
	return s.selectPosts(ctx, url.Values{})
}

func (s *Store) SelectPostsByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	return s.selectPosts(ctx, url.Values{"user_id": {"eq." + userID}})
}

func (s *Store) InsertPost(ctx context.Context, row app.NewPostRow) (domain.Post, error) {
	body, err := jsonBody(map[string]any{
		"user_id":   row.UserID,
		"image_url": row.ImageURL,
		"caption":   row.Caption,
	})
	if err != nil {
		return domain.Post{}, err
	}
	data, err := s.client.Post(ctx, restPath("posts", withAuthor(url.Values{})), body)
	if err != nil {
		return domain.Post{}, fmt.Errorf("creating post: %w", err)
	}
	posts, err := decode[[]domain.Post](data, "created post")
	if err != nil {
		return domain.Post{}, err
	}
	p, err := first(posts, "created post")
	if err != nil {
		return domain.Post{}, err
	}
	cleanPost(&p)
	return p, nil
}

func (s *Store) SelectLike(ctx context.Context, viewerID, postID string) (bool, error) {
	q := url.Values{
		"select":  {"post_id"},
		"user_id": {"eq." + viewerID},
		"post_id": {"eq." + postID},
		"limit":   {"1"},
	}
	data, err := s.client.Get(ctx, restPath("likes", q))
	if err != nil {
		return false, fmt.Errorf("checking like: %w", err)
	}
	rows, err := decode[[]struct{}](data, "like")
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// likeLookupBatch bounds the ids per in.(...) filter so the request URL stays
// under common gateway limits.
const likeLookupBatch = 100

func (s *Store) LikedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error) {
	res := make(map[string]bool)
	for chunk := range slices.Chunk(postIDs, likeLookupBatch) {
		quoted := make([]string, len(chunk))
		for i, id := range chunk {
			quoted[i] = strconv.Quote(id)
		}
		q := url.Values{
			"select":  {"post_id"},
			"user_id": {"eq." + viewerID},
			"post_id": {"in.(" + strings.Join(quoted, ",") + ")"},
		}
		data, err := s.client.Get(ctx, restPath("likes", q))
		if err != nil {
			return nil, fmt.Errorf("fetching likes: %w", err)
		}
		rows, err := decode[[]struct {
			PostID string `json:"post_id"`
		}](data, "likes")
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			res[r.PostID] = true
		}
	}
	return res, nil
}

func (s *Store) InsertLike(ctx context.Context, viewerID, postID string) error {
	body, err := jsonBody(map[string]string{"user_id": viewerID, "post_id": postID})
	if err != nil {
		return err
	}
	if _, err := s.client.Post(ctx, restPath("likes", nil), body); err != nil {
		return fmt.Errorf("liking post: %w", err)
	}
	return nil
}

func (s *Store) DeleteLike(ctx context.Context, viewerID, postID string) error {
	q := url.Values{"user_id": {"eq." + viewerID}, "post_id": {"eq." + postID}}
	if _, err := s.client.Delete(ctx, restPath("likes", q)); err != nil {
		return fmt.Errorf("unliking post: %w", err)
	}
	return nil
}

func (s *Store) SelectComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	q := withAuthor(url.Values{"post_id": {"eq." + postID}})
	q.Set("order", "created_at.asc,id.asc")
	data, err := s.client.Get(ctx, restPath("comments", q))
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}
	comments, err := decode[[]domain.Comment](data, "comments")
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].Content = sanitizeForTerminal(comments[i].Content)
		cleanAuthor(&comments[i].Author)
	}
	return comments, nil
}

func (s *Store) InsertComment(ctx context.Context, viewerID, postID, content string) error {
	body, err := jsonBody(map[string]string{"user_id": viewerID, "post_id": postID, "content": content})
	if err != nil {
		return err
	}
	if _, err := s.client.Post(ctx, restPath("comments", nil), body); err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	return nil
}

func (s *Store) selectProfile(ctx context.Context, column, value string) (domain.Profile, error) {
	q := url.Values{"select": {"*"}, column: {"eq." + value}, "limit": {"1"}}
	data, err := s.client.Get(ctx, restPath("profiles", q))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("fetching profile: %w", err)
	}
	rows, err := decode[[]domain.Profile](data, "profile")
	if err != nil {
		return domain.Profile{}, err
	}
	p, err := first(rows, "profile "+value)
	if err != nil {
		return domain.Profile{}, err
	}
	cleanProfile(&p)
	return p, nil
}

func (s *Store) SelectProfile(ctx context.Context, username string) (domain.Profile, error) {
	return s.selectProfile(ctx, "username", username)
}

func (s *Store) SelectProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	return s.selectProfile(ctx, "id", id)
}

func (s *Store) InsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	body, err := jsonBody(map[string]string{
		"id":         p.ID,
		"username":   p.Username,
		"full_name":  p.FullName,
		"avatar_url": p.AvatarURL,
	})
	if err != nil {
		return domain.Profile{}, err
	}
	data, err := s.client.Post(ctx, restPath("profiles", nil), body)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("creating profile: %w", err)
	}
	rows, err := decode[[]domain.Profile](data, "created profile")
	if err != nil {
		return domain.Profile{}, err
	}
	created, err := first(rows, "created profile")
	if err != nil {
		return domain.Profile{}, err
	}
	cleanProfile(&created)
	return created, nil
}

func followQuery(followerID, followingID string) url.Values {
	return url.Values{"follower_id": {"eq." + followerID}, "following_id": {"eq." + followingID}}
}

func (s *Store) SelectFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	q := followQuery(followerID, followingID)
	q.Set("select", "follower_id")
	q.Set("limit", "1")
	data, err := s.client.Get(ctx, restPath("follows", q))
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	rows, err := decode[[]struct{}](data, "follow")
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (s *Store) InsertFollow(ctx context.Context, followerID, followingID string) error {
	body, err := jsonBody(map[string]string{"follower_id": followerID, "following_id": followingID})
	if err != nil {
		return err
	}
	if _, err := s.client.Post(ctx, restPath("follows", nil), body); err != nil {
		return fmt.Errorf("following user: %w", err)
	}
	return nil
}

func (s *Store) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	if _, err := s.client.Delete(ctx, restPath("follows", followQuery(followerID, followingID))); err != nil {
		return fmt.Errorf("unfollowing user: %w", err)
	}
	return nil
}

func (s *Store) SelectStories(ctx context.Context, expiresAfter time.Time) ([]domain.Story, error) {
	q := withAuthor(url.Values{"expires_at": {"gt." + expiresAfter.UTC().Format(time.RFC3339)}})
	q.Set("order", "created_at.desc")
	data, err := s.client.Get(ctx, restPath("stories", q))
	if err != nil {
		return nil, fmt.Errorf("fetching stories: %w", err)
	}
	stories, err := decode[[]domain.Story](data, "stories")
	if err != nil {
		return nil, err
	}
	for i := range stories {
		cleanAuthor(&stories[i].Author)
	}
	return stories, nil
}
