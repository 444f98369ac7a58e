package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cardjinho/Instagram-v0/infra/seed"
)

const seedBatchSize = 500

// Seed inserts ds in batches. Counter columns are written as generated, so
// the dataset must be self-consistent. Existing rows with the same ids are
// left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, ds seed.Dataset) error {
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		br := pool.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("seed batch exec: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("seed batch close: %w", err)
		}
		batch = &pgx.Batch{}
		return nil
	}
	queue := func(sql string, args ...any) error {
		batch.Queue(sql, args...)
		if batch.Len() >= seedBatchSize {
			return flush()
		}
		return nil
	}

	for _, p := range ds.Profiles {
		if err := queue(`INSERT INTO profiles (id, username, full_name, bio, avatar_url, website,
				followers_count, following_count, posts_count, created_at, updated_at)
			VALUES ($1, $2, nullif($3, ''), nullif($4, ''), nullif($5, ''), nullif($6, ''), $7, $8, $9, $10, $11)
			ON CONFLICT DO NOTHING`,
			p.ID, p.Username, p.FullName, p.Bio, p.AvatarURL, p.Website,
			p.FollowersCount, p.FollowingCount, p.PostsCount, p.CreatedAt, p.UpdatedAt); err != nil {
			return err
		}
	}
	// Parents must exist before children reference them.
	if err := flush(); err != nil {
		return err
	}
	for _, p := range ds.Posts {
		if err := queue(`INSERT INTO posts (id, user_id, image_url, caption, likes_count, comments_count, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING`,
			p.ID, p.UserID, p.ImageURL, p.Caption, p.LikesCount, p.CommentsCount, p.CreatedAt); err != nil {
			return err
		}
	}
	for _, st := range ds.Stories {
		if err := queue(`INSERT INTO stories (id, user_id, image_url, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
			st.ID, st.UserID, st.ImageURL, st.CreatedAt, st.ExpiresAt); err != nil {
			return err
		}
	}
	for _, f := range ds.Follows {
		if err := queue(`INSERT INTO follows (follower_id, following_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			f.FollowerID, f.FollowingID); err != nil {
			return err
		}
	}
	if err := flush(); err != nil {
		return err
	}
	for _, l := range ds.Likes {
		if err := queue(`INSERT INTO likes (user_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			l.UserID, l.PostID); err != nil {
			return err
		}
	}
	for _, c := range ds.Comments {
		if err := queue(`INSERT INTO comments (id, user_id, post_id, content, created_at)
			VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
			c.ID, c.UserID, c.PostID, c.Content, c.CreatedAt); err != nil {
			return err
		}
	}
	return flush()
}
