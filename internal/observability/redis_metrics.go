package observability

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RedisMetricsHook records keyspace hit/miss ratios and command failures
// for the redis-backed idempotency store and rate limiter.
type RedisMetricsHook struct{}

func NewRedisMetricsHook() *RedisMetricsHook {
	metricsOnce.Do(initMetrics)
	return &RedisMetricsHook{}
}

func (h *RedisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			recordRedisError(ctx, err)
		}
		return conn, err
	}
}

func (h *RedisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if hits, misses, ok := classifyKeyspaceOutcome(cmd); ok {
			if hits > 0 {
				redisKeyspaceHits.Add(ctx, int64(hits))
			}
			if misses > 0 {
				redisKeyspaceMiss.Add(ctx, int64(misses))
			}
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			recordRedisError(ctx, err)
		}
		return err
	}
}

func (h *RedisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		for _, cmd := range cmds {
			if cmdErr := cmd.Err(); cmdErr != nil && !errors.Is(cmdErr, redis.Nil) {
				recordRedisError(ctx, cmdErr)
			}
		}
		return err
	}
}

func recordRedisError(ctx context.Context, err error) {
	redisCommandErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("class", classifyRedisError(err)),
	))
}

func classifyKeyspaceOutcome(cmd redis.Cmder) (int, int, bool) {
	switch strings.ToLower(cmd.Name()) {
	case "get":
		if errors.Is(cmd.Err(), redis.Nil) {
			return 0, 1, true
		}
		if cmd.Err() == nil {
			return 1, 0, true
		}
		return 0, 0, false
	case "mget":
		slice, ok := cmd.(*redis.SliceCmd)
		if !ok || slice.Err() != nil {
			return 0, 0, false
		}
		hits, misses := 0, 0
		for _, v := range slice.Val() {
			if v == nil {
				misses++
			} else {
				hits++
			}
		}
		return hits, misses, true
	}
	return 0, 0, false
}

func classifyRedisError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "refused") || strings.Contains(msg, "reset"):
		return "connection"
	default:
		return "other"
	}
}
