package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// INCR then arm the expiry on the first hit of a window; returns {count, pttl}
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisLimiter shares fixed-window counters between instances through Redis.
// When Redis is unreachable it falls back to a local MemoryLimiter.
type RedisLimiter struct {
	client   redis.UniversalClient
	limit    int
	window   time.Duration
	prefix   string
	timeout  time.Duration
	fallback *MemoryLimiter
	logger   *zap.Logger
}

// NewRedisLimiter creates a Redis-backed limiter. prefix namespaces the keys
// so several policies can share one Redis.
func NewRedisLimiter(client redis.UniversalClient, limit int, win time.Duration, prefix string, logger *zap.Logger) *RedisLimiter {
	if limit <= 0 {
		limit = 1
	}
	if win <= 0 {
		win = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		client:   client,
		limit:    limit,
		window:   win,
		prefix:   "ratelimit:" + prefix + ":",
		timeout:  2 * time.Second,
		fallback: NewMemoryLimiter(limit, win),
		logger:   logger,
	}
}

// Allow counts the request in Redis
func (l *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	res, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		l.logger.Warn("Redis rate limiter unavailable, using local counters", zap.Error(err))
		return l.fallback.Allow(ctx, key)
	}

	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}
	return decide(int(res[0]), l.limit, time.Now().Add(ttl))
}

// Stop releases the fallback limiter
func (l *RedisLimiter) Stop() {
	l.fallback.Stop()
}
