package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is an in-process sliding window limiter. Keys idle for a
// whole window are swept at most once per window.
type MemoryLimiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	max       int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryLimiter allows max attempts per window for each key.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow checks the key and records the attempt when it is allowed, in one
// step so concurrent callers cannot overshoot max.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.max <= 0 {
		return true, nil
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	kept := l.prune(key, now.Add(-l.window))
	if len(kept) >= l.max {
		return false, nil
	}
	l.attempts[key] = append(kept, now)
	return true, nil
}

// Check reports whether key is under the limit without recording anything.
func (l *MemoryLimiter) Check(key string) bool {
	if l.max <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	kept := l.prune(key, now.Add(-l.window))
	return len(kept) < l.max
}

// Record registers one attempt for key.
func (l *MemoryLimiter) Record(key string) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	l.attempts[key] = append(l.attempts[key], now)
}

// Reset forgets every attempt for key, used after a successful login.
func (l *MemoryLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.attempts, key)
	l.mu.Unlock()
}

// sweep drops keys with no attempt inside the window. Callers hold mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-l.window)
	for key := range l.attempts {
		l.prune(key, cutoff)
	}
}

func (l *MemoryLimiter) prune(key string, cutoff time.Time) []time.Time {
	hits := l.attempts[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = kept
	return kept
}

// RedisLimiter is a fixed window limiter shared by every dashboard instance.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter connects to addr and allows max attempts per window.
func NewRedisLimiter(addr string, max int, window time.Duration) *RedisLimiter {
	return NewRedisLimiterWithClient(redis.NewClient(&redis.Options{Addr: addr}), max, window)
}

// NewRedisLimiterWithClient reuses an existing client.
func NewRedisLimiterWithClient(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "blogai:ratelimit:", max: int64(max), window: window, now: time.Now}
}

// Allow increments the counter for the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.max <= 0 {
		return true, nil
	}
	redisKey := l.bucketKey(key)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= l.max, nil
}

func (l *RedisLimiter) bucketKey(key string) string {
	bucket := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)
}

// Ping checks the connection, used by the health check.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
