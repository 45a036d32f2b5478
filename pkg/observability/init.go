package observability

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// initTracing initializes the tracing provider
func initTracing(config Config) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	if config.SamplingRate <= 0 {
		sampler = sdktrace.NeverSample()
	} else if config.SamplingRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(config.BatchTimeout),
			sdktrace.WithMaxExportBatchSize(config.MaxExportBatch),
			sdktrace.WithMaxQueueSize(config.MaxQueueSize),
		),
	)

	otel.SetTracerProvider(tp)

	mu.Lock()
	tracer = tp.Tracer(instrumentationName)
	mu.Unlock()

	return nil
}

// initMetrics sets up the OpenTelemetry meter. Prometheus remains the
// exported metrics backend; this counter only reaches an exporter when a
// meter provider is installed.
func initMetrics(namespace string) error {
	if namespace == "" {
		namespace = "pricer"
	}
	m := otel.Meter(instrumentationName)
	counter, err := m.Int64Counter(namespace+".rows",
		metric.WithDescription("Rows passed through a pipeline stage"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rows counter: %w", err)
	}

	mu.Lock()
	rowsSeen = counter
	mu.Unlock()
	return nil
}

// DefaultConfig returns a default tracing configuration
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "pricer",
		ServiceVersion: "dev",
		Environment:    getEnv("ENVIRONMENT", "development"),
		SamplingRate:   0.1,
		BatchTimeout:   5 * time.Second,
		MaxExportBatch: 512,
		MaxQueueSize:   2048,
	}
}

// getEnv gets environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Shutdown flushes and stops the tracer provider
func Shutdown(ctx context.Context) error {
	if tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer: %w", err)
		}
	}
	return nil
}
