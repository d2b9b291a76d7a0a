package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/darkodi/link-shortener/internal/model"
)

const linkKeyPrefix = "link:"

// createScript writes the link hash only when the key does not exist yet,
// so two concurrent creates of one slug cannot both succeed.
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "id", ARGV[1], "slug", ARGV[2], "url", ARGV[3], "created_at", ARGV[4], "clicks", ARGV[5])
return 1
`)

// incrementScript bumps clicks on an existing link and never creates one
var incrementScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return redis.call("HINCRBY", KEYS[1], "clicks", 1)
`)

// RedisStore keeps each link in a hash at link:<slug>
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects using a redis:// URL, or a bare host:port
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func linkKey(slug string) string {
	return linkKeyPrefix + slug
}

func (s *RedisStore) Create(ctx context.Context, link *model.Link) error {
	created, err := createScript.Run(ctx, s.client, []string{linkKey(link.Slug)},
		link.ID,
		link.Slug,
		link.URL,
		link.CreatedAt.UTC().Format(time.RFC3339Nano),
		link.Clicks,
	).Int64()
	if err != nil {
		return fmt.Errorf("create link: %w", err)
	}
	if created == 0 {
		return ErrDuplicateSlug
	}
	return nil
}

func (s *RedisStore) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	fields, err := s.client.HGetAll(ctx, linkKey(slug)).Result()
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("decode created_at of %q: %w", slug, err)
	}
	clicks, err := strconv.ParseInt(fields["clicks"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode clicks of %q: %w", slug, err)
	}

	return &model.Link{
		ID:        fields["id"],
		Slug:      fields["slug"],
		URL:       fields["url"],
		CreatedAt: createdAt.UTC(),
		Clicks:    clicks,
	}, nil
}

func (s *RedisStore) IncrementClicks(ctx context.Context, slug string) error {
	n, err := incrementScript.Run(ctx, s.client, []string{linkKey(slug)}).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("increment clicks: %w", err)
	}
	if n < 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
