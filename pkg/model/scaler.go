package model

import (
	"math"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// Scaler is a fitted per-column affine transform: (x - center) / scale
type Scaler struct {
	Kind         string    `json:"kind,omitempty"`
	FeatureNames []string  `json:"feature_names_in"`
	Center       []float64 `json:"center"`
	Scale        []float64 `json:"scale"`
}

// Validate checks the scaler arrays line up
func (s *Scaler) Validate() error {
	if len(s.FeatureNames) == 0 {
		return errors.New(errors.ErrorTypeArtifact, "scaler has no feature names")
	}
	if len(s.Center) != len(s.FeatureNames) || len(s.Scale) != len(s.FeatureNames) {
		return errors.Newf(errors.ErrorTypeArtifact,
			"scaler arrays disagree: %d names, %d centers, %d scales",
			len(s.FeatureNames), len(s.Center), len(s.Scale))
	}
	for i, v := range s.Scale {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(s.Center[i]) || math.IsInf(s.Center[i], 0) {
			return errors.Newf(errors.ErrorTypeArtifact, "scaler has a non-finite entry for %q", s.FeatureNames[i])
		}
	}
	return nil
}

// Missing returns the scaler columns not present in x, in scaler order
func (s *Scaler) Missing(x *Matrix) []string {
	var missing []string
	for _, name := range s.FeatureNames {
		if _, ok := x.Index(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Transform scales the named columns of x in place. Every scaler column must
// be present; other columns are left alone. A zero scale divides by 1.
func (s *Scaler) Transform(x *Matrix) error {
	if missing := s.Missing(x); len(missing) > 0 {
		return errors.Newf(errors.ErrorTypeScalingMismatch,
			"feature mismatch: %d scaler columns absent from input", len(missing)).
			WithDetail("missing", missing)
	}

	rows := x.Rows()
	for k, name := range s.FeatureNames {
		j, _ := x.Index(name)
		center, scale := s.Center[k], s.Scale[k]
		if scale == 0 {
			scale = 1
		}
		for i := 0; i < rows; i++ {
			x.Data.Set(i, j, (x.Data.At(i, j)-center)/scale)
		}
	}
	return nil
}
