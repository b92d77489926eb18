package shared

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound indicates a missing or expired API token.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore keeps opaque bearer tokens in Redis with a TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue mints a token bound to the user and stores it with the configured TTL.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("token store: issue: %w", err)
	}
	return token, nil
}

// Resolve returns the user bound to the token, refreshing its TTL.
func (s *TokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrTokenNotFound
	}
	value, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrTokenNotFound
		}
		return 0, fmt.Errorf("token store: resolve: %w", err)
	}
	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token store: corrupt entry: %w", err)
	}
	_ = s.client.Expire(ctx, s.key(token), s.ttl).Err()
	return userID, nil
}

// Revoke deletes the token.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(token)).Err()
}

// TTL exposes the configured token lifetime.
func (s *TokenStore) TTL() time.Duration { return s.ttl }

func (s *TokenStore) key(token string) string {
	return "stockflow:token:" + token
}
