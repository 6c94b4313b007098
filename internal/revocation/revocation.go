package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store records revoked token ids. A missing entry means "not revoked";
// failures to reach the backend are returned as errors.
type Store interface {
	Revoke(ctx context.Context, jti string) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Clear(ctx context.Context) error
}

// RedisStore keeps one key per revoked jti. Entries expire after TTL, which
// should equal the access token lifetime.
type RedisStore struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) Revoke(ctx context.Context, jti string) error {
	if jti == "" {
		return errors.New("revocation: empty jti")
	}
	if err := s.Client.Set(ctx, jti, "", s.TTL).Err(); err != nil {
		return fmt.Errorf("revocation: set %s: %w", jti, err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.Client.Get(ctx, jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("revocation: get %s: %w", jti, err)
	}
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.Client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("revocation: flushdb: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}
