// Package predict prices properties with the loaded ridge model.
package predict

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/artifact"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/observability"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/preprocess"
)

const (
	// RangeFraction is the half-width of the band shown around a single price
	RangeFraction = 0.10
	// ModelConfidence is the R² the shipped model scored on held-out sales
	ModelConfidence = 0.9154
)

// Predictor runs preprocessing and the model. It holds no per-request state.
type Predictor struct {
	bundle  *artifact.Bundle
	pre     *preprocess.Preprocessor
	workers int
	logger  *zap.Logger
}

// Option configures a Predictor
type Option func(*Predictor)

// WithWorkers sets how many goroutines score row ranges
func WithWorkers(n int) Option {
	return func(p *Predictor) { p.workers = n }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a predictor over bundle using pre for feature preparation
func New(bundle *artifact.Bundle, pre *preprocess.Preprocessor, opts ...Option) (*Predictor, error) {
	if bundle == nil || pre == nil {
		return nil, errors.New(errors.ErrorTypeArtifact, "predictor needs a loaded bundle and preprocessor")
	}
	p := &Predictor{bundle: bundle, pre: pre, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("component", "predictor"))
	return p, nil
}

// Bundle returns the bundle the predictor scores with
func (p *Predictor) Bundle() *artifact.Bundle { return p.bundle }

// Predict prices every row of f, in row order. The model works in log space,
// so each output is expm1 of the linear prediction. No clamping is applied.
func (p *Predictor) Predict(ctx context.Context, f *frame.Frame) ([]float64, error) {
	x, err := p.pre.Transform(ctx, f)
	if err != nil {
		return nil, err
	}

	var prices []float64
	err = observability.Trace(ctx, metrics.StagePredict, x.Rows(), func(ctx context.Context) error {
		logPrices, err := p.bundle.Model.Predict(x, p.workers)
		if err != nil {
			return err
		}
		prices = make([]float64, len(logPrices))
		for i, y := range logPrices {
			prices[i] = math.Expm1(y)
			if math.IsNaN(prices[i]) || math.IsInf(prices[i], 0) {
				return errors.Newf(errors.ErrorTypeModel, "row %d: prediction is not finite", i+1).
					WithDetail("row", i+1)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug("priced rows", zap.Int("rows", len(prices)))
	return prices, nil
}

// PredictRow prices a single property
func (p *Predictor) PredictRow(ctx context.Context, row frame.Row) (float64, error) {
	prices, err := p.Predict(ctx, frame.FromRows([]frame.Row{row}))
	if err != nil {
		return 0, err
	}
	return prices[0], nil
}

// Range is the band displayed around a single price
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// PriceRange returns price ±10%
func PriceRange(price float64) Range {
	return Range{Low: price * (1 - RangeFraction), High: price * (1 + RangeFraction)}
}

// Summary describes a batch of prices
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summarize returns count, mean, min and max. An empty slice gives a zero Summary.
func Summarize(prices []float64) Summary {
	if len(prices) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(prices), Min: prices[0], Max: prices[0]}
	var sum float64
	for _, v := range prices {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(prices))
	return s
}
