// Package observability provides OpenTelemetry tracing for the pricing pipeline
package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
)

const instrumentationName = "github.com/Bloop15/House-Price-Predictor-Deployment"

var (
	mu       sync.RWMutex
	tracer   trace.Tracer
	rowsSeen metric.Int64Counter

	initOnce sync.Once
)

// Config contains tracing configuration
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	SamplingRate   float64
	BatchTimeout   time.Duration
	MaxExportBatch int
	MaxQueueSize   int
}

// Initialize sets up the tracer provider. Only the first call has an effect.
// When tracing is disabled the global no-op provider stays in place.
func Initialize(config Config) error {
	var err error

	initOnce.Do(func() {
		if config.Enabled {
			if err = initTracing(config); err != nil {
				return
			}
		}

		if err = initMetrics(config.ServiceName); err != nil {
			return
		}

		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})

	return err
}

// Tracer returns the configured tracer, or the global one before Initialize
func Tracer() trace.Tracer {
	mu.RLock()
	t := tracer
	mu.RUnlock()
	if t != nil {
		return t
	}
	return otel.Tracer(instrumentationName)
}

// Span wraps a trace span and times the stage it covers
type Span struct {
	span       trace.Span
	stage      string
	startTime  time.Time
	attributes []attribute.KeyValue
}

// StartSpan starts a span for a pipeline stage
func StartSpan(ctx context.Context, stage string) (context.Context, *Span) {
	ctx, span := Tracer().Start(ctx, "pricer."+stage)
	return ctx, &Span{
		span:      span,
		stage:     stage,
		startTime: time.Now(),
	}
}

// SetAttribute adds an attribute to the span
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	case []string:
		attr = attribute.StringSlice(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// End closes the span, records err on it and observes the stage latency
func (s *Span) End(err error) {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}

	metrics.ObserveStage(s.stage, time.Since(s.startTime))
	s.span.End()
}

// Trace runs fn inside a stage span. rows is attached to the span and counted.
func Trace(ctx context.Context, stage string, rows int, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, stage)
	span.SetAttribute("rows", rows)

	err := fn(ctx)
	if err == nil && rows > 0 {
		countRows(ctx, stage, rows)
	}
	span.End(err)
	return err
}

func countRows(ctx context.Context, stage string, rows int) {
	mu.RLock()
	c := rowsSeen
	mu.RUnlock()
	if c != nil {
		c.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("stage", stage)))
	}
}

// TracingMiddleware provides HTTP middleware for tracing
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := Tracer().Start(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.url", r.URL.String()),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.String("service.name", serviceName),
			)

			otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(w.Header()))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
