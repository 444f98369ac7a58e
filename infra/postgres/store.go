package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

// Store is an app.DataStore backed by a pgx pool. Counter columns are kept
// in step with the relation tables inside the same transaction.
type Store struct {
	pool *pgxpool.Pool
}

var _ app.DataStore = (*Store)(nil)

// NewStore wraps pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const postColumns = `p.id, p.user_id, p.image_url, p.caption, p.likes_count, p.comments_count, p.created_at,
	coalesce(a.username, ''), coalesce(a.avatar_url, ''), coalesce(a.full_name, '')`

const profileColumns = `id, username, coalesce(full_name, ''), coalesce(bio, ''), coalesce(avatar_url, ''),
	coalesce(website, ''), followers_count, following_count, posts_count, created_at, updated_at`

func scanPost(row pgx.Row) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.UserID, &p.ImageURL, &p.Caption, &p.LikesCount, &p.CommentsCount, &p.CreatedAt,
		&p.Author.Username, &p.Author.AvatarURL, &p.Author.FullName)
	return p, err
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Bio, &p.AvatarURL, &p.Website,
		&p.FollowersCount, &p.FollowingCount, &p.PostsCount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) queryPosts(ctx context.Context, op, sql string, args ...any) ([]domain.Post, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	posts, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Post, error) { return scanPost(r) })
	if err != nil {
		return nil, mapErr(op, err)
	}
	return posts, nil
}

func (s *Store) SelectPosts(ctx context.Context) ([]domain.Post, error) {
	return s.queryPosts(ctx, "select posts", `SELECT `+postColumns+`
		FROM posts p LEFT JOIN profiles a ON a.id = p.user_id
		ORDER BY p.created_at DESC, p.id ASC`)
}

func (s *Store) SelectPostsByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	return s.queryPosts(ctx, "select user posts", `SELECT `+postColumns+`
		FROM posts p LEFT JOIN profiles a ON a.id = p.user_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id ASC`, userID)
}

func (s *Store) InsertPost(ctx context.Context, row app.NewPostRow) (domain.Post, error) {
	var post domain.Post
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		post, err = scanPost(tx.QueryRow(ctx, `WITH p AS (
				INSERT INTO posts (id, user_id, image_url, caption) VALUES ($1, $2, $3, $4)
				RETURNING *
			)
			SELECT `+postColumns+` FROM p LEFT JOIN profiles a ON a.id = p.user_id`,
			uuid.NewString(), row.UserID, row.ImageURL, row.Caption))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE profiles SET posts_count = posts_count + 1 WHERE id = $1`, row.UserID)
		return err
	})
	if err != nil {
		return domain.Post{}, mapErr("insert post", err)
	}
	return post, nil
}

func (s *Store) SelectLike(ctx context.Context, viewerID, postID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`,
		viewerID, postID).Scan(&ok)
	if err != nil {
		return false, mapErr("select like", err)
	}
	return ok, nil
}

func (s *Store) LikedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(postIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT post_id FROM likes WHERE user_id = $1 AND post_id = ANY($2)`, viewerID, postIDs)
	if err != nil {
		return nil, mapErr("select likes", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapErr("select likes", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *Store) InsertLike(ctx context.Context, viewerID, postID string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO likes (id, user_id, post_id) VALUES ($1, $2, $3)`,
			uuid.NewString(), viewerID, postID); err != nil {
			return err
		}
		return bump(ctx, tx, `UPDATE posts SET likes_count = likes_count + 1 WHERE id = $1`, postID)
	})
	return mapErr("insert like", err)
}

func (s *Store) DeleteLike(ctx context.Context, viewerID, postID string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, viewerID, postID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return bump(ctx, tx, `UPDATE posts SET likes_count = greatest(likes_count - 1, 0) WHERE id = $1`, postID)
	})
	return mapErr("delete like", err)
}

// bump runs a counter update and reports a missing target row.
func bump(ctx context.Context, tx pgx.Tx, sql string, args ...any) error {
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) SelectComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := s.pool.Query(ctx, `SELECT c.id, c.user_id, c.post_id, c.content, c.created_at,
			coalesce(a.username, ''), coalesce(a.avatar_url, ''), coalesce(a.full_name, '')
		FROM comments c LEFT JOIN profiles a ON a.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, mapErr("select comments", err)
	}
	comments, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Comment, error) {
		var c domain.Comment
		err := r.Scan(&c.ID, &c.UserID, &c.PostID, &c.Content, &c.CreatedAt,
			&c.Author.Username, &c.Author.AvatarURL, &c.Author.FullName)
		return c, err
	})
	if err != nil {
		return nil, mapErr("select comments", err)
	}
	return comments, nil
}

func (s *Store) InsertComment(ctx context.Context, viewerID, postID, content string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := bump(ctx, tx, `UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1`, postID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO comments (id, user_id, post_id, content) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), viewerID, postID, content)
		return err
	})
	return mapErr("insert comment", err)
}

func (s *Store) SelectProfile(ctx context.Context, username string) (domain.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(username) = lower($1)`,
		strings.TrimSpace(username)))
	if err != nil {
		return domain.Profile{}, mapErr("select profile", err)
	}
	return p, nil
}

func (s *Store) SelectProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return domain.Profile{}, mapErr("select profile", err)
	}
	return p, nil
}

func (s *Store) InsertProfile(ctx context.Context, in domain.Profile) (domain.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx, `INSERT INTO profiles (id, username, full_name, bio, avatar_url, website)
		VALUES ($1, $2, nullif($3, ''), nullif($4, ''), nullif($5, ''), nullif($6, ''))
		RETURNING `+profileColumns,
		in.ID, in.Username, in.FullName, in.Bio, in.AvatarURL, in.Website))
	if err != nil {
		return domain.Profile{}, mapErr("insert profile", err)
	}
	return p, nil
}

func (s *Store) SelectFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID).Scan(&ok)
	if err != nil {
		return false, mapErr("select follow", err)
	}
	return ok, nil
}

func (s *Store) InsertFollow(ctx context.Context, followerID, followingID string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO follows (follower_id, following_id) VALUES ($1, $2)`, followerID, followingID); err != nil {
			return err
		}
		return adjustFollowCounts(ctx, tx, followerID, followingID, 1)
	})
	return mapErr("insert follow", err)
}

func (s *Store) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return adjustFollowCounts(ctx, tx, followerID, followingID, -1)
	})
	return mapErr("delete follow", err)
}

func adjustFollowCounts(ctx context.Context, tx pgx.Tx, followerID, followingID string, delta int) error {
	if err := bump(ctx, tx,
		`UPDATE profiles SET following_count = greatest(following_count + $2, 0) WHERE id = $1`,
		followerID, delta); err != nil {
		return fmt.Errorf("follower: %w", err)
	}
	if err := bump(ctx, tx,
		`UPDATE profiles SET followers_count = greatest(followers_count + $2, 0) WHERE id = $1`,
		followingID, delta); err != nil {
		return fmt.Errorf("following: %w", err)
	}
	return nil
}

func (s *Store) SelectStories(ctx context.Context, expiresAfter time.Time) ([]domain.Story, error) {
	rows, err := s.pool.Query(ctx, `SELECT s.id, s.user_id, s.image_url, s.created_at, s.expires_at,
			coalesce(a.username, ''), coalesce(a.avatar_url, ''), coalesce(a.full_name, '')
		FROM stories s LEFT JOIN profiles a ON a.id = s.user_id
		WHERE s.expires_at > $1
		ORDER BY s.created_at DESC, s.id ASC`, expiresAfter.UTC())
	if err != nil {
		return nil, mapErr("select stories", err)
	}
	stories, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Story, error) {
		var st domain.Story
		err := r.Scan(&st.ID, &st.UserID, &st.ImageURL, &st.CreatedAt, &st.ExpiresAt,
			&st.Author.Username, &st.Author.AvatarURL, &st.Author.FullName)
		return st, err
	})
	if err != nil {
		return nil, mapErr("select stories", err)
	}
	return stories, nil
}
