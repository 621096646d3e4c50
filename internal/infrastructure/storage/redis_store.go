package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/ports"
)

const redisKeyPrefix = "newscatcher:seen:"

// RedisStore remembers delivered fingerprints as expiring keys.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SeenStore = (*RedisStore)(nil)

// NewRedisClient parses a redis:// URL, falling back to a bare host:port address.
func NewRedisClient(redisURL string) *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	return redis.NewClient(opt)
}

// NewRedisStore wraps a client; ttl bounds how long a fingerprint suppresses repeats.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// AlreadySeen looks every fingerprint up with a single MGET.
func (s *RedisStore) AlreadySeen(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if s.client == nil || len(fingerprints) == 0 {
		return result, nil
	}

	keys := make([]string, len(fingerprints))
	for i, fp := range fingerprints {
		keys[i] = seenKey(fp)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range values {
		if v != nil {
			result[fingerprints[i]] = true
		}
	}
	return result, nil
}

// Remember stores one key per item in a pipeline.
func (s *RedisStore) Remember(ctx context.Context, items []domain.Item) error {
	if s.client == nil || len(items) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, item := range items {
		fp := item.Fingerprint
		if fp == "" {
			fp = domain.Fingerprint(item.Title)
		}
		pipe.Set(ctx, seenKey(fp), item.Label, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func seenKey(fp string) string {
	return redisKeyPrefix + fp
}
