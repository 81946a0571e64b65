// Package graphcache caches the latest serialized graph payload per
// repository in Redis so repeat fetches skip the database. The cache is
// derived state: a miss always falls through to the store.
package graphcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no payload is cached for a repository.
var ErrMiss = errors.New("graphcache: miss")

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "graph:", ttl: ttl}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "graph:", ttl: ttl}
}

func (s *RedisStore) key(repositoryID string) string {
	return s.prefix + repositoryID
}

// Put stores the serialized graph payload for a repository, replacing any
// prior entry.
func (s *RedisStore) Put(ctx context.Context, repositoryID string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(repositoryID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache graph payload: %w", err)
	}
	return nil
}

// Get returns the cached payload or ErrMiss.
func (s *RedisStore) Get(ctx context.Context, repositoryID string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.key(repositoryID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cached graph payload: %w", err)
	}
	return payload, nil
}

// Invalidate drops the cached payload for a repository.
func (s *RedisStore) Invalidate(ctx context.Context, repositoryID string) error {
	if err := s.client.Del(ctx, s.key(repositoryID)).Err(); err != nil {
		return fmt.Errorf("invalidate graph payload: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
