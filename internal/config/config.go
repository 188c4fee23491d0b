package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string

	IdempotencyEnabled      bool
	IdempotencyRequired     bool
	IdempotencyTTL          time.Duration
	IdempotencyRedisEnabled bool
	IdempotencyCleanupEvery time.Duration
	IdempotencyCleanupBatch int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimitPerMin   int
	RateLimitRedisEnable bool

	SeedOnStart bool

	OTELLogsEnabled          bool
	OTELMetricsEnabled       bool
	OTELTracingEnabled       bool
	OTELExporterOTLPEndpoint string
	OTELExporterOTLPInsecure bool
	OTELServiceName          string
	OTELEnvironment          string
	OTELTraceSamplingRatio   float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		IdempotencyEnabled:      getEnvBool("IDEMPOTENCY_ENABLED", true),
		IdempotencyRequired:     getEnvBool("IDEMPOTENCY_REQUIRED", false),
		IdempotencyRedisEnabled: getEnvBool("IDEMPOTENCY_REDIS_ENABLED", false),
		IdempotencyCleanupBatch: getEnvInt("IDEMPOTENCY_CLEANUP_BATCH", 500),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		APIRateLimitPerMin:   getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		RateLimitRedisEnable: getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),

		SeedOnStart: getEnvBool("SEED_ON_START", false),

		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "fund-registry-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "development"),
	}

	ttl, err := time.ParseDuration(getEnv("IDEMPOTENCY_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse IDEMPOTENCY_TTL: %w", err)
	}
	cfg.IdempotencyTTL = ttl

	cleanupEvery, err := time.ParseDuration(getEnv("IDEMPOTENCY_CLEANUP_EVERY", "10m"))
	if err != nil {
		return nil, fmt.Errorf("parse IDEMPOTENCY_CLEANUP_EVERY: %w", err)
	}
	cfg.IdempotencyCleanupEvery = cleanupEvery

	ratio, err := strconv.ParseFloat(getEnv("OTEL_TRACE_SAMPLING_RATIO", "1.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("parse OTEL_TRACE_SAMPLING_RATIO: %w", err)
	}
	cfg.OTELTraceSamplingRatio = ratio

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.IdempotencyTTL <= 0 || c.IdempotencyTTL > 7*24*time.Hour {
		errs = append(errs, "IDEMPOTENCY_TTL must be between 1s and 168h")
	}
	if c.IdempotencyCleanupEvery <= 0 {
		errs = append(errs, "IDEMPOTENCY_CLEANUP_EVERY must be > 0")
	}
	if c.IdempotencyCleanupBatch <= 0 {
		errs = append(errs, "IDEMPOTENCY_CLEANUP_BATCH must be > 0")
	}
	if c.IdempotencyRequired && !c.IdempotencyEnabled {
		errs = append(errs, "IDEMPOTENCY_REQUIRED needs IDEMPOTENCY_ENABLED=true")
	}
	if (c.IdempotencyRedisEnabled || c.RateLimitRedisEnable) && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when a redis-backed component is enabled")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be within [0,1]")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
