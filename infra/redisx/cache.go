// Package redisx adds a Redis read-through cache in front of a DataStore.
package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
)

const keyPrefix = "instaterm:"

// Open creates a client for addr and pings it.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// CachedStore caches stories and profiles. Posts, likes, comments and
// follow edges always go to the underlying store, since the feed must
// observe its own writes. Redis failures fall through to the store.
type CachedStore struct {
	app.DataStore
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

var _ app.DataStore = (*CachedStore)(nil)

// NewCachedStore wraps next. A nil logger discards output.
func NewCachedStore(next app.DataStore, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStore{DataStore: next, rdb: rdb, ttl: ttl, log: log}
}

func storiesKey() string { return keyPrefix + "stories" }
func profileIDKey(id string) string { return keyPrefix + "profile:id:" + id }
func profileNameKey(n string) string { return keyPrefix + "profile:name:" + strings.ToLower(n) }

// get decodes key into dst and reports a hit.
func (c *CachedStore) get(ctx context.Context, key string, dst any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedStore) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedStore) del(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// SelectStories caches the unexpired set and re-applies the expiry cut on
// every read.
func (c *CachedStore) SelectStories(ctx context.Context, expiresAfter time.Time) ([]domain.Story, error) {
	var cached []domain.Story
	if !c.get(ctx, storiesKey(), &cached) {
		stories, err := c.DataStore.SelectStories(ctx, expiresAfter)
		if err != nil {
			return nil, err
		}
		c.set(ctx, storiesKey(), stories)
		return stories, nil
	}
	out := cached[:0]
	for _, s := range cached {
		if s.ExpiresAt.After(expiresAfter) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *CachedStore) SelectProfile(ctx context.Context, username string) (domain.Profile, error) {
	var p domain.Profile
	if c.get(ctx, profileNameKey(username), &p) {
		return p, nil
	}
	p, err := c.DataStore.SelectProfile(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	c.cacheProfile(ctx, p)
	return p, nil
}

func (c *CachedStore) SelectProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	var p domain.Profile
	if c.get(ctx, profileIDKey(id), &p) {
		return p, nil
	}
	p, err := c.DataStore.SelectProfileByID(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	c.cacheProfile(ctx, p)
	return p, nil
}

func (c *CachedStore) cacheProfile(ctx context.Context, p domain.Profile) {
	c.set(ctx, profileIDKey(p.ID), p)
	c.set(ctx, profileNameKey(p.Username), p)
}

// forgetProfiles drops cached profiles whose counters a write changed.
func (c *CachedStore) forgetProfiles(ctx context.Context, ids ...string) {
	keys := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		keys = append(keys, profileIDKey(id))
		var p domain.Profile
		if c.get(ctx, profileIDKey(id), &p) {
			keys = append(keys, profileNameKey(p.Username))
		}
	}
	c.del(ctx, keys...)
}

func (c *CachedStore) InsertProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	out, err := c.DataStore.InsertProfile(ctx, p)
	if err != nil {
		return out, err
	}
	c.del(ctx, profileNameKey(out.Username))
	return out, nil
}

func (c *CachedStore) InsertPost(ctx context.Context, row app.NewPostRow) (domain.Post, error) {
	post, err := c.DataStore.InsertPost(ctx, row)
	if err == nil {
		c.forgetProfiles(ctx, row.UserID)
	}
	return post, err
}

func (c *CachedStore) InsertFollow(ctx context.Context, followerID, followingID string) error {
	err := c.DataStore.InsertFollow(ctx, followerID, followingID)
	if err == nil {
		c.forgetProfiles(ctx, followerID, followingID)
	}
	return err
}

func (c *CachedStore) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	err := c.DataStore.DeleteFollow(ctx, followerID, followingID)
	if err == nil {
		c.forgetProfiles(ctx, followerID, followingID)
	}
	return err
}
