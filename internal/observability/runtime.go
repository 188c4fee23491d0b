package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"go-fund-registry-service/internal/config"
)

// Runtime owns the OTel providers. Shutdown is safe on a nil or
// partially-initialized receiver so callers can defer it unconditionally.
type Runtime struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	if cfg.OTELMetricsEnabled {
		if err := validateEndpoint(cfg.OTELExporterOTLPEndpoint); err != nil {
			return nil, fmt.Errorf("metrics exporter endpoint: %w", err)
		}
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
		if cfg.OTELExporterOTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("init metrics exporter: %w", err)
		}
		rt.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
	} else {
		rt.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	}
	otel.SetMeterProvider(rt.MeterProvider)

	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.TracerProvider = tp
	otel.SetTracerProvider(tp)

	logger.Info("observability runtime initialized",
		"metrics_enabled", cfg.OTELMetricsEnabled,
		"tracing_enabled", cfg.OTELTracingEnabled,
	)
	return rt, nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.TracerProvider != nil {
		if err := r.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if r.MeterProvider != nil {
		if err := r.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.DeploymentEnvironment(cfg.OTELEnvironment),
		),
	)
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is empty")
	}
	if _, err := url.Parse("//" + endpoint); err != nil {
		return err
	}
	return nil
}
