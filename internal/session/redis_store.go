package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"testament/api/internal/clause"
)

// RedisStore implements TrackerStore on Redis, so an editing session's
// tracked-clause list survives process restarts and page reloads.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: "editsession:",
		ttl:    ttl,
	}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "editsession:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, clauses []clause.TrackedClause) error {
	data, err := json.Marshal(clauses)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	ttl := s.ttl
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]clause.TrackedClause, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}

	var clauses []clause.TrackedClause
	if err := json.Unmarshal(data, &clauses); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	return clauses, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
