package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/iho/blazeledger/internal/usecase"
)

// LockerConfig tunes lock acquisition.
type LockerConfig struct {
	// Expiry bounds how long a crashed holder keeps the lock.
	Expiry      time.Duration
	RetryDelay  time.Duration
	DriftFactor float64
}

// Locker implements usecase.Locker with redsync.
type Locker struct {
	rs     *redsync.Redsync
	cfg    LockerConfig
	prefix string
}

// NewLocker creates a new Locker.
func NewLocker(client redis.UniversalClient, cfg LockerConfig) *Locker {
	if cfg.Expiry <= 0 {
		cfg.Expiry = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 50 * time.Millisecond
	}
	if cfg.DriftFactor <= 0 {
		cfg.DriftFactor = 0.01
	}

	return &Locker{
		rs:     redsync.New(goredis.NewPool(client)),
		cfg:    cfg,
		prefix: "blazeledger:",
	}
}

// Acquire takes the named lock. Bounded acquisition gives up with
// usecase.ErrLockContention after opts.MaxAttempts tries; unbounded
// acquisition keeps trying until ctx is done.
func (l *Locker) Acquire(ctx context.Context, key string, opts usecase.LockOptions) (usecase.Lease, error) {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	if opts.Unbounded {
		return l.acquireUnbounded(ctx, key)
	}

	mutex := l.newMutex(key, attempts)
	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			return nil, fmt.Errorf("%w: %s", usecase.ErrLockContention, key)
		}
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return &lease{mutex: mutex}, nil
}

func (l *Locker) acquireUnbounded(ctx context.Context, key string) (usecase.Lease, error) {
	mutex := l.newMutex(key, 1)
	for {
		err := mutex.LockContext(ctx)
		if err == nil {
			return &lease{mutex: mutex}, nil
		}
		if !isContention(err) {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", usecase.ErrLockContention, key, ctx.Err())
		case <-time.After(l.cfg.RetryDelay):
		}
	}
}

func (l *Locker) newMutex(key string, tries int) *redsync.Mutex {
	return l.rs.NewMutex(
		l.prefix+key,
		redsync.WithExpiry(l.cfg.Expiry),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(l.cfg.RetryDelay),
		redsync.WithDriftFactor(l.cfg.DriftFactor),
	)
}

// redsync reports a held lock either as ErrFailed once its tries run out or
// as ErrTaken when a quorum of nodes already holds the key.
func isContention(err error) bool {
	var taken *redsync.ErrTaken
	var takenValue redsync.ErrTaken
	return errors.Is(err, redsync.ErrFailed) ||
		errors.As(err, &taken) ||
		errors.As(err, &takenValue)
}

type lease struct {
	mutex *redsync.Mutex
}

// Release unlocks the mutex. A lease that expired before release is
// reported as an error since another holder may have run meanwhile.
func (l *lease) Release(ctx context.Context) error {
	ok, err := l.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.mutex.Name(), err)
	}
	if !ok {
		return fmt.Errorf("release lock %s: not held", l.mutex.Name())
	}
	return nil
}
