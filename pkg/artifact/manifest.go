package artifact

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/config"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
)

// ManifestFile optionally overrides artifact file names
const ManifestFile = "manifest.yaml"

// Names are the file names of the five artifacts
type Names struct {
	Model        string `yaml:"model"`
	Scaler       string `yaml:"scaler"`
	OrdinalMaps  string `yaml:"ordinal_mappings"`
	FullFeatures string `yaml:"final_features"`
	TopFeatures  string `yaml:"top_features"`
}

// DefaultNames returns the conventional file names
func DefaultNames() Names {
	return Names{
		Model:        "ridge_model.json",
		Scaler:       "scaler.json",
		OrdinalMaps:  "ordinal_mappings.json",
		FullFeatures: "final_features_columns.json",
		TopFeatures:  "top_10_input_features.json",
	}
}

// Manifest is the optional manifest.yaml document
type Manifest struct {
	Version string `yaml:"version"`
	Files   Names  `yaml:"files"`
}

// ResolveNames reads manifest.yaml from the store when present and fills
// unset names with defaults
func ResolveNames(ctx context.Context, store Store) (Names, string, error) {
	names := DefaultNames()

	data, _, err := fetch(ctx, store, ManifestFile)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return names, "", nil
		}
		return names, "", errors.Wrap(err, errors.ErrorTypeArtifact, "failed to read "+ManifestFile)
	}

	var m Manifest
	if err := config.Parse(data, &m); err != nil {
		return names, "", errors.Wrap(err, errors.ErrorTypeArtifact, "invalid "+ManifestFile)
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&names.Model, m.Files.Model)
	override(&names.Scaler, m.Files.Scaler)
	override(&names.OrdinalMaps, m.Files.OrdinalMaps)
	override(&names.FullFeatures, m.Files.FullFeatures)
	override(&names.TopFeatures, m.Files.TopFeatures)

	return names, m.Version, nil
}

// fetch reads name from the store, trying the plain name and then each
// compressed variant. It returns the decompressed bytes and the object name
// that was found.
func fetch(ctx context.Context, store Store, name string) ([]byte, string, error) {
	candidates := []string{name}
	if alg, _ := compression.FromFileName(name); alg == compression.None {
		for _, ext := range compression.Extensions() {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		rc, err := store.Open(ctx, candidate)
		if err != nil {
			if stderrors.Is(err, ErrNotFound) {
				continue
			}
			return nil, candidate, err
		}

		data, err := readAll(rc, candidate)
		if err != nil {
			return nil, candidate, err
		}
		return data, candidate, nil
	}

	return nil, name, ErrNotFound
}

func readAll(rc io.ReadCloser, name string) ([]byte, error) {
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	alg, _ := compression.FromFileName(name)
	if alg == compression.None {
		return data, nil
	}

	c, err := compression.NewCompressor(&compression.Config{Algorithm: alg, Level: compression.Default})
	if err != nil {
		return nil, err
	}
	out, err := c.Decompress(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeArtifact, "failed to decompress "+name)
	}
	return out, nil
}
