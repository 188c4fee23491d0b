package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisFixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local count = redis.call("INCR", key)
if count == 1 then
  redis.call("PEXPIRE", key, window_ms)
end

local ttl_ms = redis.call("PTTL", key)
if ttl_ms < 0 then
  redis.call("PEXPIRE", key, window_ms)
  ttl_ms = window_ms
end

if count > limit then
  return {0, ttl_ms}
end
return {1, ttl_ms}
`)

// RedisFixedWindowLimiter shares one fixed window per key across all
// instances behind the same Redis.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisFixedWindowLimiter{client: client, prefix: prefix}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if l.client == nil {
		return false, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}
	windowMS := window.Milliseconds()
	if windowMS <= 0 {
		windowMS = 1000
	}
	storeKey := fmt.Sprintf("%s:%s", l.prefix, key)
	raw, err := redisFixedWindowScript.Run(ctx, l.client, []string{storeKey}, limit, windowMS).Result()
	if err != nil {
		return false, 0, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected redis script response type")
	}
	allowed, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis response type %T", values[0])
	}
	ttlMS, ok := values[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis response type %T", values[1])
	}
	retryAfter := time.Duration(ttlMS) * time.Millisecond
	if retryAfter <= 0 {
		retryAfter = time.Millisecond
	}
	return allowed == 1, retryAfter, nil
}
