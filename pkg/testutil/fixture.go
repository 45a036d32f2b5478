package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/json"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/model"
)

// Artifact file names written by Fixture.Write
const (
	ModelFile        = "ridge_model.json"
	ScalerFile       = "scaler.json"
	OrdinalFile      = "ordinal_mappings.json"
	FullFeaturesFile = "final_features_columns.json"
	TopFeaturesFile  = "top_10_input_features.json"
)

// Fixture is a small but realistic trained bundle
type Fixture struct {
	Model        model.LinearModel
	Scaler       model.Scaler
	OrdinalMaps  map[string]map[string]float64
	FullFeatures []string
	TopFeatures  []string
}

var quality = map[string]float64{"Po": 1, "Fa": 2, "TA": 3, "Gd": 4, "Ex": 5}

// NewFixture returns a bundle over the ten form fields plus two ordinal
// quality columns, lot area and one neighbourhood indicator. The full
// feature list carries Id and SalePrice_Log, which the model never sees.
func NewFixture() *Fixture {
	modelFeatures := []string{
		"OverallQual", "GrLivArea", "GarageCars", "1stFlrSF", "YearBuilt",
		"ExterQual", "TotalBsmtSF", "KitchenQual", "GarageArea", "FullBath",
		"BsmtQual", "HeatingQC", "LotArea", "Neighborhood_NAmes",
	}

	full := append([]string{"Id"}, modelFeatures...)
	full = append(full, "SalePrice_Log")

	return &Fixture{
		Model: model.LinearModel{
			Kind:         "ridge",
			FeatureNames: modelFeatures,
			Coef: []float64{
				0.12, 0.10, 0.04, 0.02, 0.05,
				0.03, 0.02, 0.03, 0.01, 0.02,
				0.015, 0.02, 0.01, -0.01,
			},
			Intercept: 12.02,
		},
		Scaler: model.Scaler{
			Kind: "standard",
			FeatureNames: []string{
				"OverallQual", "GrLivArea", "GarageCars", "1stFlrSF", "YearBuilt",
				"ExterQual", "TotalBsmtSF", "KitchenQual", "GarageArea", "FullBath",
				"BsmtQual", "HeatingQC", "LotArea",
			},
			Center: []float64{6.1, 7.27, 1.77, 7.0, 1971, 3.4, 6.75, 3.5, 5.8, 1.56, 3.5, 4.1, 10000},
			Scale:  []float64{1.4, 0.33, 0.75, 0.32, 30, 0.57, 1.15, 0.66, 1.3, 0.55, 0.9, 0.96, 9981},
		},
		OrdinalMaps: map[string]map[string]float64{
			"ExterQual":   quality,
			"KitchenQual": quality,
			"BsmtQual":    quality,
			"HeatingQC":   quality,
		},
		FullFeatures: full,
		TopFeatures: []string{
			"OverallQual", "GrLivArea", "GarageCars", "1stFlrSF", "YearBuilt",
			"ExterQual", "TotalBsmtSF", "KitchenQual", "GarageArea", "FullBath",
		},
	}
}

// Write stores the five artifacts in dir, compressed with alg
func (f *Fixture) Write(t testing.TB, dir string, alg compression.Algorithm) {
	t.Helper()

	c, err := compression.NewCompressor(&compression.Config{Algorithm: alg, Level: compression.Default})
	require.NoError(t, err)

	files := map[string]interface{}{
		ModelFile:        f.Model,
		ScalerFile:       f.Scaler,
		OrdinalFile:      f.OrdinalMaps,
		FullFeaturesFile: f.FullFeatures,
		TopFeaturesFile:  f.TopFeatures,
	}
	for name, v := range files {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		data, err = c.Compress(data)
		require.NoError(t, err)

		path := filepath.Join(dir, name+compression.Extension(alg))
		require.NoError(t, os.WriteFile(path, data, 0o600))
	}
}

// WriteFixture writes the default fixture, uncompressed, to a fresh temp dir
func WriteFixture(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	NewFixture().Write(t, dir, compression.None)
	return dir
}
