package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkScript implements the fixed-window transition atomically. It mirrors
// MemoryStore.Check: the counter saturates at the limit and rejected requests
// never touch the window.
//
// KEYS[1] counter key, ARGV[1] limit, ARGV[2] window in ms.
// Returns {allowed, count, pttl_ms}.
var checkScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if count >= limit then
  return {0, count, redis.call('PTTL', KEYS[1])}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, count, redis.call('PTTL', KEYS[1])}
`)

// RedisStore keeps fixed-window counters in Redis so multiple instances share
// one counter per identifier. Keys expire with the window, so Sweep is a
// no-op.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore constructs a RedisStore with the given key prefix
// ("ratelimit" when empty).
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// Check applies the fixed-window transition for key.
func (s *RedisStore) Check(ctx context.Context, key string, p Policy, now time.Time) (Result, error) {
	raw, err := checkScript.Run(ctx, s.rdb, []string{s.key(key)}, p.Limit, p.Window.Milliseconds()).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit redis check: %w", err)
	}
	vals, ok := raw.([]interface{})
	if !ok || len(vals) != 3 {
		return Result{}, fmt.Errorf("ratelimit redis check: unexpected reply %v", raw)
	}
	allowed := toInt64(vals[0]) == 1
	count := int(toInt64(vals[1]))
	ttlMs := toInt64(vals[2])

	resetAt := now.Add(p.Window)
	if ttlMs > 0 {
		resetAt = now.Add(time.Duration(ttlMs) * time.Millisecond)
	}

	remaining := p.Limit - count
	if !allowed || remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: allowed, Remaining: remaining, ResetAt: resetAt}, nil
}

// Reset removes the entry for key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// Sweep is a no-op: Redis expires window keys itself.
func (s *RedisStore) Sweep(ctx context.Context, now time.Time) error {
	return nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

var _ Store = (*RedisStore)(nil)
