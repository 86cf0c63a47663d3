package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store maps opaque session tokens to user ids. A missing token is not an
// error: Get returns an empty user id for unknown or expired tokens, and
// Destroy of an absent token is a no-op.
type Store interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

const keyPrefix = "session:"

// RedisStore keeps session records in Redis with a TTL. Expiry is owned by
// Redis; the application never sweeps sessions itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Create issues a fresh opaque token bound to the given user id.
func (s *RedisStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("session requires a user id")
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token to its user id. Unknown tokens resolve to "".
func (s *RedisStore) Get(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	userID, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Destroy removes the session record. Idempotent.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, keyPrefix+token).Err()
}
