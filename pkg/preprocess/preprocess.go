// Package preprocess turns a raw feature frame into the exact matrix the
// trained model expects.
//
// The steps run in a fixed order: ordinal encoding, log1p skew correction,
// completion of absent columns with 0, projection to the full feature list,
// and scaling of the columns the scaler was fit on.
package preprocess

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/artifact"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/frame"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/model"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/observability"
)

// Preprocessor is safe for concurrent use; it never mutates its bundle or
// the frames passed to Transform.
type Preprocessor struct {
	bundle      *artifact.Bundle
	skewed      []string
	passthrough map[string]struct{}
	drop        map[string]struct{}
	strict      bool
	logger      *zap.Logger

	columns []string
}

// New returns a preprocessor over bundle
func New(bundle *artifact.Bundle, opts ...Option) (*Preprocessor, error) {
	if bundle == nil {
		return nil, errors.New(errors.ErrorTypeArtifact, "no artifact bundle loaded")
	}

	p := &Preprocessor{
		bundle:      bundle,
		skewed:      DefaultSkewedFeatures,
		passthrough: toSet(DefaultPassthroughOrdinal),
		drop:        toSet(DefaultDropColumns),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("component", "preprocess"))

	for _, c := range bundle.FullFeatures {
		if _, ok := p.drop[c]; !ok {
			p.columns = append(p.columns, c)
		}
	}
	if len(p.columns) == 0 {
		return nil, errors.New(errors.ErrorTypeArtifact, "full feature list has no model columns")
	}
	return p, nil
}

// Columns returns the projected column order
func (p *Preprocessor) Columns() []string {
	out := make([]string, len(p.columns))
	copy(out, p.columns)
	return out
}

// Strict reports whether unknown ordinal labels are rejected
func (p *Preprocessor) Strict() bool { return p.strict }

// Transform runs every step on a copy of f
func (p *Preprocessor) Transform(ctx context.Context, f *frame.Frame) (*model.Matrix, error) {
	if f == nil || f.Len() == 0 {
		return nil, errors.New(errors.ErrorTypeMalformedInput, "input table has no rows")
	}

	var x *model.Matrix
	err := observability.Trace(ctx, metrics.StagePreprocess, f.Len(), func(ctx context.Context) error {
		work := f.Clone()

		unknown, err := p.EncodeOrdinals(work)
		if err != nil {
			return err
		}
		if err := p.CorrectSkew(work); err != nil {
			return err
		}
		p.CompleteColumns(work)

		x, err = p.Project(work)
		if err != nil {
			return err
		}
		if err := p.Scale(x); err != nil {
			return err
		}

		if len(unknown) > 0 {
			p.logger.Debug("unrecognized ordinal labels encoded as 0", zap.Any("counts", unknown))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return x, nil
}

// EncodeOrdinals replaces labels in every mapped input column with their
// rank. Passthrough columns are left as they are. Missing values and, unless
// strict, unknown labels become 0. It returns the unknown-label count per
// column.
func (p *Preprocessor) EncodeOrdinals(f *frame.Frame) (map[string]int, error) {
	var unknown map[string]int

	for _, col := range f.Columns() {
		table, ok := p.bundle.OrdinalMaps[col]
		if !ok {
			continue
		}
		if _, skip := p.passthrough[col]; skip {
			continue
		}

		values, _ := f.Column(col)
		encoded := make([]frame.Value, len(values))
		for i, v := range values {
			if v.IsMissing() || v.IsAbsent() {
				encoded[i] = frame.Number(0)
				continue
			}
			rank, found := table[v.Key()]
			if !found {
				if p.strict {
					return nil, errors.Newf(errors.ErrorTypeUnrecognizedCategory,
						"column %q row %d: label %q has no rank", col, i+1, v.Text()).
						WithDetail("column", col).
						WithDetail("row", i+1)
				}
				if unknown == nil {
					unknown = make(map[string]int)
				}
				unknown[col]++
				rank = 0
			}
			encoded[i] = frame.Number(rank)
		}
		if err := f.Set(col, encoded); err != nil {
			return nil, err
		}
	}

	for col, n := range unknown {
		metrics.UnrecognizedCategories.WithLabelValues(col).Add(float64(n))
	}
	return unknown, nil
}

// CorrectSkew applies log1p to each skewed column present in f
func (p *Preprocessor) CorrectSkew(f *frame.Frame) error {
	for _, col := range p.skewed {
		values, ok := f.Column(col)
		if !ok {
			continue
		}

		out := make([]frame.Value, len(values))
		for i, v := range values {
			switch v.Kind {
			case frame.KindMissing, frame.KindAbsent:
				out[i] = v
			case frame.KindNumber:
				if v.Num <= -1 {
					return errors.Newf(errors.ErrorTypeValidation,
						"column %q row %d: log1p is undefined for %v", col, i+1, v.Num).
						WithDetail("column", col).
						WithDetail("row", i+1)
				}
				out[i] = frame.Number(math.Log1p(v.Num))
			default:
				return errors.Newf(errors.ErrorTypeMalformedInput,
					"column %q row %d: expected a number, got %q", col, i+1, v.Text()).
					WithDetail("column", col).
					WithDetail("row", i+1)
			}
		}
		if err := f.Set(col, out); err != nil {
			return err
		}
	}
	return nil
}

// CompleteColumns adds every absent full-feature column filled with 0.
// Absent cells inside present columns are zeroed by Project.
func (p *Preprocessor) CompleteColumns(f *frame.Frame) {
	for _, col := range p.bundle.FullFeatures {
		if f.Has(col) {
			continue
		}
		zeros := make([]frame.Value, f.Len())
		for i := range zeros {
			zeros[i] = frame.Number(0)
		}
		// lengths always match
		_ = f.Set(col, zeros)
	}
}

// Project builds the model matrix from the full feature list in order,
// without identifier and target columns. Every cell must be numeric; absent
// cells are 0.
func (p *Preprocessor) Project(f *frame.Frame) (*model.Matrix, error) {
	x, err := model.NewMatrix(p.columns, f.Len())
	if err != nil {
		return nil, err
	}

	for j, col := range p.columns {
		values, ok := f.Column(col)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeInternal, "column %q missing after completion", col)
		}
		for i, v := range values {
			n, ok := v.Float()
			if v.IsAbsent() {
				n, ok = 0, true
			}
			if !ok {
				what := "missing value"
				if v.Kind == frame.KindCategory {
					what = "non-numeric value " + v.Text()
				}
				return nil, errors.Newf(errors.ErrorTypeMalformedInput,
					"column %q row %d: %s", col, i+1, what).
					WithDetail("column", col).
					WithDetail("row", i+1)
			}
			x.Data.Set(i, j, n)
		}
	}
	return x, nil
}

// Scale applies the fitted scaler. Every scaler column must be projected.
func (p *Preprocessor) Scale(x *model.Matrix) error {
	return p.bundle.Scaler.Transform(x)
}
