// Package lock provides re-entrancy guards for the low-stock scanner.
//
// A guard answers one question: is a scan for this entry point already
// running? Single-instance deployments use the in-process atomic guard;
// multi-instance deployments layer a Redis lock on top.
package lock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"stockcontrol/pkg/logger"
)

// Guard serializes one scan entry point. TryAcquire returns ok=false when
// a scan is already in flight; callers skip instead of queueing.
type Guard interface {
	TryAcquire(ctx context.Context) (release func(), ok bool)
}

// AtomicGuard is an in-process guard using compare-and-swap, closing the
// check-then-set race a plain boolean flag would have.
type AtomicGuard struct {
	running atomic.Bool
}

// NewAtomicGuard creates an in-process guard.
func NewAtomicGuard() *AtomicGuard {
	return &AtomicGuard{}
}

// TryAcquire implements Guard.
func (g *AtomicGuard) TryAcquire(ctx context.Context) (func(), bool) {
	if !g.running.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { g.running.Store(false) }, true
}

// RedisGuard combines the in-process guard with a Redis lock so that
// scans are also mutually exclusive across instances.
type RedisGuard struct {
	local  *AtomicGuard
	locker *redislock.Client
	key    string
	ttl    time.Duration
}

// NewRedisGuard creates a distributed guard. The TTL bounds how long a
// crashed instance can hold the lock.
func NewRedisGuard(client *redis.Client, key string, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		local:  NewAtomicGuard(),
		locker: redislock.New(client),
		key:    key,
		ttl:    ttl,
	}
}

// TryAcquire implements Guard.
func (g *RedisGuard) TryAcquire(ctx context.Context) (func(), bool) {
	releaseLocal, ok := g.local.TryAcquire(ctx)
	if !ok {
		return nil, false
	}

	dlock, err := g.locker.Obtain(ctx, g.key, g.ttl, nil)
	if err == redislock.ErrNotObtained {
		releaseLocal()
		return nil, false
	}
	if err != nil {
		// Redis unavailable: fall back to the local guard rather than
		// blocking scans entirely.
		logger.Warn(ctx, "redis scan lock unavailable, using local guard",
			"key", g.key,
			"error", err,
		)
		return releaseLocal, true
	}

	return func() {
		_ = dlock.Release(context.Background())
		releaseLocal()
	}, true
}

// Ensure interface compliance.
var (
	_ Guard = (*AtomicGuard)(nil)
	_ Guard = (*RedisGuard)(nil)
)
