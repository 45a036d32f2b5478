package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

func fill(t *testing.T, cols []string, rows [][]float64) *Matrix {
	t.Helper()
	m, err := NewMatrix(cols, len(rows))
	require.NoError(t, err)
	for i, r := range rows {
		for j, v := range r {
			m.Data.Set(i, j, v)
		}
	}
	return m
}

func TestNewMatrixRejectsEmpty(t *testing.T) {
	_, err := NewMatrix([]string{"a"}, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedInput))

	_, err = NewMatrix(nil, 3)
	assert.Error(t, err)
}

func TestScalerTransform(t *testing.T) {
	s := &Scaler{
		FeatureNames: []string{"GrLivArea", "YearBuilt"},
		Center:       []float64{7, 1970},
		Scale:        []float64{0.5, 0},
	}
	require.NoError(t, s.Validate())

	x := fill(t, []string{"OverallQual", "GrLivArea", "YearBuilt"}, [][]float64{{7, 8, 2000}})
	require.NoError(t, s.Transform(x))

	assert.Equal(t, 7.0, x.At(0, "OverallQual"))
	assert.Equal(t, 2.0, x.At(0, "GrLivArea"))
	assert.Equal(t, 30.0, x.At(0, "YearBuilt"))
}

func TestScalerTransformMismatch(t *testing.T) {
	s := &Scaler{FeatureNames: []string{"GrLivArea", "LotArea"}, Center: []float64{0, 0}, Scale: []float64{1, 1}}
	x := fill(t, []string{"GrLivArea"}, [][]float64{{1}})

	err := s.Transform(x)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScalingMismatch))

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"LotArea"}, e.Details["missing"])
}

func TestScalerValidate(t *testing.T) {
	s := &Scaler{FeatureNames: []string{"a", "b"}, Center: []float64{0}, Scale: []float64{1, 1}}
	assert.True(t, errors.IsType(s.Validate(), errors.ErrorTypeArtifact))
}

func TestLinearModelPredict(t *testing.T) {
	m := &LinearModel{
		FeatureNames: []string{"a", "b"},
		Coef:         []float64{0.5, -1},
		Intercept:    12,
	}
	require.NoError(t, m.Validate())

	x := fill(t, []string{"a", "b"}, [][]float64{{2, 1}, {0, 0}, {4, 3}})
	got, err := m.Predict(x, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 12, 11}, got)
}

func TestLinearModelWorkerCountDoesNotChangeOutput(t *testing.T) {
	m := &LinearModel{Coef: []float64{0.1, 0.2, 0.3}, Intercept: 11.5}
	rows := make([][]float64, 101)
	for i := range rows {
		rows[i] = []float64{float64(i), float64(i % 7), float64(100 - i)}
	}
	x := fill(t, []string{"a", "b", "c"}, rows)

	one, err := m.Predict(x, 1)
	require.NoError(t, err)
	many, err := m.Predict(x, 16)
	require.NoError(t, err)
	assert.Equal(t, one, many)
}

func TestLinearModelColumnOrder(t *testing.T) {
	m := &LinearModel{FeatureNames: []string{"a", "b"}, Coef: []float64{1, 1}}
	x := fill(t, []string{"b", "a"}, [][]float64{{1, 2}})

	_, err := m.Predict(x, 1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeModel))

	x = fill(t, []string{"a"}, [][]float64{{1}})
	_, err = m.Predict(x, 1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeModel))
}
