// Package testutil provides testing utilities for the price predictor
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout, cancelled
// when the test ends.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ExampleInputs are the ten form fields at their default values
func ExampleInputs() map[string]float64 {
	return map[string]float64{
		"OverallQual": 7,
		"GrLivArea":   1500,
		"GarageCars":  2,
		"1stFlrSF":    1000,
		"YearBuilt":   2000,
		"ExterQual":   4,
		"TotalBsmtSF": 1000,
		"KitchenQual": 4,
		"GarageArea":  480,
		"FullBath":    2,
	}
}
