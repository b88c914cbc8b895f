package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/blazeledger/internal/domain"
)

// StatusCache implements usecase.StatusCache using Redis.
type StatusCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStatusCache creates a new StatusCache.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &StatusCache{
		client: client,
		prefix: "blazeledger:status:",
		ttl:    ttl,
	}
}

// GetStatus returns the cached status of uuid, if any.
func (c *StatusCache) GetStatus(ctx context.Context, uuid string) (domain.TransactionStatus, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+uuid).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return domain.TransactionStatus(val), true, nil
}

// SetStatus caches status for uuid.
func (c *StatusCache) SetStatus(ctx context.Context, uuid string, status domain.TransactionStatus) error {
	return c.client.Set(ctx, c.prefix+uuid, string(status), c.ttl).Err()
}
