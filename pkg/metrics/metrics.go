// Package metrics exposes Prometheus metrics for artifact loading,
// preprocessing and scoring.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	x, err := pre.Transform(ctx, f)
//	metrics.ObserveStage(metrics.StagePreprocess, timer.Stop())
//
//	metrics.RecordPrediction(metrics.ModeBatch, err, f.Len())
//
// All metrics are registered with the default registry through promauto and
// served by promhttp on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// Prediction modes
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
)

// Pipeline stages
const (
	StageLoad       = "load"
	StagePreprocess = "preprocess"
	StagePredict    = "predict"
	StageDecode     = "decode"
	StageEncode     = "encode"
)

var (
	// PredictionsTotal counts scored requests.
	// Labels: mode (single/batch), status (success or the error type)
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"mode", "status"},
	)

	// RowsScored counts properties priced
	RowsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_rows_scored_total",
			Help: "Total number of property rows priced",
		},
		[]string{"mode"},
	)

	// StageLatency tracks how long each pipeline stage takes, in seconds.
	// Labels: stage (load/decode/preprocess/predict/encode)
	StageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pricer_prediction_latency_seconds",
			Help: "Pipeline stage latency in seconds",
			Buckets: []float64{
				0.0001, // 100μs - single row preprocessing
				0.001,  // 1ms
				0.01,   // 10ms
				0.1,    // 100ms - mid-size batch
				1,      // 1s
				10,     // 10s - large batch or remote artifact load
			},
		},
		[]string{"stage"},
	)

	// BatchRows tracks batch sizes
	BatchRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricer_batch_rows",
			Help:    "Number of rows per batch prediction",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// UnrecognizedCategories counts ordinal labels with no rank, per column
	UnrecognizedCategories = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_unrecognized_categories_total",
			Help: "Ordinal labels missing from their encoding table",
		},
		[]string{"column"},
	)

	// ArtifactLoadSeconds tracks bundle load time
	ArtifactLoadSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricer_artifact_load_seconds",
			Help:    "Time to load the artifact bundle",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BundleLoaded is 1 once the bundle is loaded and valid
	BundleLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricer_artifact_bundle_loaded",
			Help: "Whether the artifact bundle is loaded (1) or not (0)",
		},
	)

	// HTTPRequests counts API requests by route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
)

// ObserveStage records the duration of a pipeline stage
func ObserveStage(stage string, d time.Duration) {
	StageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordPrediction counts a finished request. rows is only counted on success.
func RecordPrediction(mode string, err error, rows int) {
	PredictionsTotal.WithLabelValues(mode, Status(err)).Inc()
	if err == nil {
		RowsScored.WithLabelValues(mode).Add(float64(rows))
		if mode == ModeBatch {
			BatchRows.Observe(float64(rows))
		}
	}
}

// Status returns "success" or the error type label
func Status(err error) string {
	if err == nil {
		return "success"
	}
	return string(errors.TypeOf(err))
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
