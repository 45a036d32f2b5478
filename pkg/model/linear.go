package model

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// LinearModel is a fitted ridge regression: y = x·coef + intercept
type LinearModel struct {
	Kind         string    `json:"kind,omitempty"`
	FeatureNames []string  `json:"feature_names"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
}

// Validate checks the coefficients line up with the feature names
func (m *LinearModel) Validate() error {
	if len(m.Coef) == 0 {
		return errors.New(errors.ErrorTypeArtifact, "model has no coefficients")
	}
	if len(m.FeatureNames) > 0 && len(m.FeatureNames) != len(m.Coef) {
		return errors.Newf(errors.ErrorTypeArtifact,
			"model has %d coefficients for %d feature names", len(m.Coef), len(m.FeatureNames))
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return errors.New(errors.ErrorTypeArtifact, "model intercept is not finite")
	}
	return nil
}

// Check verifies x has the columns the model was fit on, in the same order
func (m *LinearModel) Check(x *Matrix) error {
	if len(x.Columns) != len(m.Coef) {
		return errors.Newf(errors.ErrorTypeModel,
			"input has %d columns, model expects %d", len(x.Columns), len(m.Coef))
	}
	for i, name := range m.FeatureNames {
		if x.Columns[i] != name {
			return errors.Newf(errors.ErrorTypeModel,
				"column %d is %q, model expects %q", i, x.Columns[i], name).
				WithDetail("position", i)
		}
	}
	return nil
}

// Predict returns x·coef + intercept per row. Rows are split into contiguous
// ranges across workers; each result is written at its row index.
func (m *LinearModel) Predict(x *Matrix, workers int) ([]float64, error) {
	if err := m.Check(x); err != nil {
		return nil, err
	}

	rows := x.Rows()
	out := make([]float64, rows)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > rows {
		workers = rows
	}
	chunk := (rows + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > rows {
			end = rows
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = floats.Dot(x.Row(i), m.Coef) + m.Intercept
			}
		}(start, end)
	}
	wg.Wait()

	return out, nil
}
