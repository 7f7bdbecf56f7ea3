package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/openmerce/storefront/pkg/errors"
)

// CredentialStore implements session.CredentialStore using a single Redis key.
type CredentialStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewCredentialStore creates a Redis-backed credential store. A zero ttl
// keeps the token until it is explicitly cleared.
func NewCredentialStore(client *redis.Client, key string, ttl time.Duration) *CredentialStore {
	return &CredentialStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Get returns the stored token.
func (s *CredentialStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("credential", s.key)
		}
		return "", fmt.Errorf("redis get credential: %w", err)
	}
	return token, nil
}

// Set stores the token, replacing any previous value.
func (s *CredentialStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

// Clear removes the token.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del credential: %w", err)
	}
	return nil
}
