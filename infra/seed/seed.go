// Package seed generates fake social data for demos and local databases.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/Cardjinho/Instagram-v0/domain"
)

// Like is a (user, post) like row.
type Like struct {
	UserID string
	PostID string
}

// Follow is a (follower, following) edge.
type Follow struct {
	FollowerID  string
	FollowingID string
}

// Dataset is one generated world. Counters on profiles and posts already
// reflect the generated likes, comments and follows.
type Dataset struct {
	Profiles []domain.Profile
	Posts    []domain.Post
	Comments []domain.Comment
	Stories  []domain.Story
	Likes    []Like
	Follows  []Follow
}

// Options controls the size of a Dataset.
type Options struct {
	Users        int
	PostsPerUser int
	Seed         int64
	Now          time.Time
}

// Generate builds a deterministic Dataset for opts.Seed.
func Generate(opts Options) Dataset {
	if opts.Users <= 0 {
		opts.Users = 8
	}
	if opts.PostsPerUser <= 0 {
		opts.PostsPerUser = 3
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	f := gofakeit.New(opts.Seed)
	var ds Dataset

	taken := map[string]bool{}
	for i := 0; i < opts.Users; i++ {
		name := strings.ToLower(f.Username())
		for taken[name] {
			name = fmt.Sprintf("%s%d", name, f.Number(1, 99))
		}
		taken[name] = true
		created := f.DateRange(opts.Now.AddDate(-1, 0, 0), opts.Now.AddDate(0, -1, 0))
		ds.Profiles = append(ds.Profiles, domain.Profile{
			ID:        f.UUID(),
			Username:  name,
			FullName:  f.Name(),
			Bio:       f.Sentence(6),
			AvatarURL: f.ImageURL(150, 150),
			CreatedAt: created,
			UpdatedAt: created,
		})
	}

	postIdx := map[string]int{}
	for pi := range ds.Profiles {
		owner := &ds.Profiles[pi]
		for j := 0; j < opts.PostsPerUser; j++ {
			var caption *string
			if f.Bool() {
				c := f.Sentence(f.Number(3, 12))
				caption = &c
			}
			post := domain.Post{
				ID:        f.UUID(),
				UserID:    owner.ID,
				ImageURL:  f.ImageURL(640, 640),
				Caption:   caption,
				CreatedAt: f.DateRange(opts.Now.AddDate(0, 0, -30), opts.Now),
			}
			postIdx[post.ID] = len(ds.Posts)
			ds.Posts = append(ds.Posts, post)
			owner.PostsCount++
		}
	}

	for _, u := range ds.Profiles {
		for pi := range ds.Posts {
			p := &ds.Posts[pi]
			if f.Number(1, 100) <= 30 {
				ds.Likes = append(ds.Likes, Like{UserID: u.ID, PostID: p.ID})
				p.LikesCount++
			}
			if f.Number(1, 100) <= 10 {
				ds.Comments = append(ds.Comments, domain.Comment{
					ID:        f.UUID(),
					UserID:    u.ID,
					PostID:    p.ID,
					Content:   f.Sentence(f.Number(2, 10)),
					CreatedAt: p.CreatedAt.Add(time.Duration(f.Number(1, 600)) * time.Minute),
				})
				p.CommentsCount++
			}
		}
	}

	for i := range ds.Profiles {
		for j := range ds.Profiles {
			if i == j || f.Number(1, 100) > 40 {
				continue
			}
			ds.Follows = append(ds.Follows, Follow{FollowerID: ds.Profiles[i].ID, FollowingID: ds.Profiles[j].ID})
			ds.Profiles[i].FollowingCount++
			ds.Profiles[j].FollowersCount++
		}
	}

	for _, u := range ds.Profiles {
		for k := f.Number(0, 2); k > 0; k-- {
			created := opts.Now.Add(-time.Duration(f.Number(1, 30)) * time.Hour)
			ds.Stories = append(ds.Stories, domain.Story{
				ID:        f.UUID(),
				UserID:    u.ID,
				ImageURL:  f.ImageURL(720, 1280),
				CreatedAt: created,
				ExpiresAt: created.Add(24 * time.Hour),
			})
		}
	}
	return ds
}
