package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestInitializeDisabledKeepsNoopTracer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceName = "pricer-test"
	if err := Initialize(cfg); err != nil {
		t.Fatalf("Failed to initialize observability: %v", err)
	}

	if Tracer() == nil {
		t.Error("Tracer should never be nil")
	}
}

func TestTraceReturnsOriginalError(t *testing.T) {
	ctx := context.Background()
	testError := errors.New("test error")

	var sawCtx context.Context
	err := Trace(ctx, "preprocess", 3, func(ctx context.Context) error {
		sawCtx = ctx
		time.Sleep(time.Millisecond)
		return nil
	})
	if err != nil {
		t.Errorf("Trace should not return error for successful operation: %v", err)
	}
	if sawCtx == nil || trace.SpanFromContext(sawCtx) == nil {
		t.Error("Trace should pass a span context to fn")
	}

	err = Trace(ctx, "predict", 3, func(context.Context) error { return testError })
	if err != testError {
		t.Errorf("Trace should return the original error: got %v, want %v", err, testError)
	}
}

func TestSpanAttributes(t *testing.T) {
	_, span := StartSpan(context.Background(), "load")
	span.SetAttribute("store", "local")
	span.SetAttribute("files", 5)
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("strict", true)
	span.SetAttribute("columns", []string{"GrLivArea"})
	span.SetAttribute("other", struct{}{})
	if len(span.attributes) != 6 {
		t.Errorf("expected 6 attributes, got %d", len(span.attributes))
	}
	span.End(nil)
}

func TestTracingMiddleware(t *testing.T) {
	called := false
	h := TracingMiddleware("pricer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !called {
		t.Error("middleware did not call next handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("unexpected status %d", rec.Code)
	}
}
