package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "go-fund-registry-service"

var (
	metricsOnce sync.Once

	repositoryOps      metric.Int64Counter
	idempotencyEvents  metric.Int64Counter
	invariantRejects   metric.Int64Counter
	redisKeyspaceHits  metric.Int64Counter
	redisKeyspaceMiss  metric.Int64Counter
	redisCommandErrors metric.Int64Counter
)

func initMetrics() {
	meter := otel.Meter(meterName)
	repositoryOps, _ = meter.Int64Counter("repository_operations_total",
		metric.WithDescription("Repository operations by entity, operation and outcome"))
	idempotencyEvents, _ = meter.Int64Counter("idempotency_events_total",
		metric.WithDescription("Idempotency coordinator outcomes by scope"))
	invariantRejects, _ = meter.Int64Counter("business_rule_rejections_total",
		metric.WithDescription("Writes rejected by a domain invariant"))
	redisKeyspaceHits, _ = meter.Int64Counter("redis_keyspace_hits_total")
	redisKeyspaceMiss, _ = meter.Int64Counter("redis_keyspace_misses_total")
	redisCommandErrors, _ = meter.Int64Counter("redis_command_errors_total",
		metric.WithDescription("Redis command failures by error class"))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	metricsOnce.Do(initMetrics)
	repositoryOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordIdempotencyEvent(ctx context.Context, scope, outcome string) {
	metricsOnce.Do(initMetrics)
	idempotencyEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}

func RecordBusinessRuleRejection(ctx context.Context, rule string) {
	metricsOnce.Do(initMetrics)
	invariantRejects.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}
