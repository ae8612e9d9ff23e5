package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "revoked_token:"

// RedisTokenDenylist stores revoked token ids as expiring redis keys.
type RedisTokenDenylist struct {
	client *redis.Client
}

// NewRedisTokenDenylist creates a new instance of RedisTokenDenylist.
func NewRedisTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{client: client}
}

// Revoke marks jti as revoked for ttl.
func (r *RedisTokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is currently revoked.
func (r *RedisTokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := r.client.Get(ctx, revokedTokenPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return true, nil
}
