package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ClientConfig configures the Redis client shared by the lock manager,
// the idempotency store and the status cache.
type ClientConfig struct {
	URL      string
	PoolSize int
	// ConnectTimeout bounds the initial ping retries. Zero pings once.
	ConnectTimeout time.Duration
}

// NewClient creates a new Redis client and waits for it to answer PING.
func NewClient(ctx context.Context, cfg ClientConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)

	if err := ping(ctx, client, cfg.ConnectTimeout); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func ping(ctx context.Context, client *redis.Client, maxElapsed time.Duration) error {
	if maxElapsed <= 0 {
		return client.Ping(ctx).Err()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = maxElapsed

	return backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(b, ctx))
}
