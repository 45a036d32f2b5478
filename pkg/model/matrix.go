// Package model holds the fitted ridge regression, its scaler and the dense
// feature matrix they operate on.
package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// Matrix is a row-per-property numeric table with named columns
type Matrix struct {
	Columns []string
	Data    *mat.Dense
	index   map[string]int
}

// NewMatrix allocates a zero matrix. Both dimensions must be positive.
func NewMatrix(columns []string, rows int) (*Matrix, error) {
	if rows <= 0 {
		return nil, errors.New(errors.ErrorTypeMalformedInput, "no rows to score")
	}
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrorTypeInternal, "matrix needs at least one column")
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	return &Matrix{
		Columns: cols,
		Data:    mat.NewDense(rows, len(cols), nil),
		index:   index,
	}, nil
}

// Rows returns the number of rows
func (m *Matrix) Rows() int {
	r, _ := m.Data.Dims()
	return r
}

// Index returns the position of a named column
func (m *Matrix) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// At returns the value at row i of the named column
func (m *Matrix) At(i int, name string) float64 {
	j, ok := m.index[name]
	if !ok {
		return 0
	}
	return m.Data.At(i, j)
}

// Row returns row i. The slice aliases the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.Data.RawRowView(i)
}
