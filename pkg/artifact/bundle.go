// Package artifact loads the trained model bundle: the ridge model, its
// scaler, the ordinal encoding tables and the two feature lists.
//
// Artifacts are JSON documents, optionally compressed (.gz, .zst, .lz4, .s2,
// .snappy), read from a local directory, S3 or GCS. The bundle is loaded
// once per process and never mutated.
package artifact

import (
	"context"
	stderrors "errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/json"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/model"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/observability"
)

// OrdinalMaps maps a column to its label → rank table
type OrdinalMaps map[string]map[string]float64

// Bundle is the immutable set of trained parameters
type Bundle struct {
	Model        *model.LinearModel
	Scaler       *model.Scaler
	OrdinalMaps  OrdinalMaps
	FullFeatures []string
	TopFeatures  []string

	Source   string
	Version  string
	Files    map[string]string
	LoadedAt time.Time
}

// Validate checks internal consistency of the bundle
func (b *Bundle) Validate() error {
	if b.Model == nil || b.Scaler == nil {
		return errors.New(errors.ErrorTypeArtifact, "bundle is missing the model or scaler")
	}
	if err := b.Model.Validate(); err != nil {
		return err
	}
	if err := b.Scaler.Validate(); err != nil {
		return err
	}
	if len(b.FullFeatures) == 0 {
		return errors.New(errors.ErrorTypeArtifact, "full feature list is empty")
	}
	if len(b.TopFeatures) == 0 {
		return errors.New(errors.ErrorTypeArtifact, "top feature list is empty")
	}
	seen := make(map[string]struct{}, len(b.FullFeatures))
	for _, f := range b.FullFeatures {
		if _, dup := seen[f]; dup {
			return errors.Newf(errors.ErrorTypeArtifact, "full feature list repeats %q", f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// Load reads all five artifacts concurrently. Any failure returns an
// artifact error and no bundle.
func Load(ctx context.Context, store Store, names Names) (*Bundle, error) {
	b := &Bundle{
		Model:    &model.LinearModel{},
		Scaler:   &model.Scaler{},
		Source:   store.Location(),
		Files:    make(map[string]string, 5),
		LoadedAt: time.Now(),
	}

	type job struct {
		kind string
		name string
		dst  interface{}
	}
	jobs := []job{
		{"model", names.Model, b.Model},
		{"scaler", names.Scaler, b.Scaler},
		{"ordinal_mappings", names.OrdinalMaps, &b.OrdinalMaps},
		{"final_features", names.FullFeatures, &b.FullFeatures},
		{"top_features", names.TopFeatures, &b.TopFeatures},
	}
	found := make([]string, len(jobs))

	err := observability.Trace(ctx, "load", 0, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		for i, j := range jobs {
			g.Go(func() error {
				data, object, err := fetch(gctx, store, j.name)
				if err != nil {
					if stderrors.Is(err, ErrNotFound) {
						return errors.Wrap(err, errors.ErrorTypeArtifact, j.kind+" artifact "+j.name+" not found in "+store.Location()).
							WithDetail("artifact", j.kind)
					}
					return errors.Wrap(err, errors.ErrorTypeArtifact, "failed to read "+j.kind+" artifact "+object).
						WithDetail("artifact", j.kind)
				}
				if err := json.Unmarshal(data, j.dst); err != nil {
					return errors.Wrap(err, errors.ErrorTypeArtifact, "failed to decode "+j.kind+" artifact "+object).
						WithDetail("artifact", j.kind)
				}
				found[i] = object
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}

	for i, j := range jobs {
		b.Files[j.kind] = found[i]
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Open resolves the store named by cfg, reads the manifest and loads the bundle
func Open(ctx context.Context, cfg StoreConfig) (*Bundle, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, asArtifactError(err, "failed to open artifact store "+cfg.Path)
	}
	defer store.Close()

	names, version, err := ResolveNames(ctx, store)
	if err != nil {
		return nil, err
	}

	b, err := Load(ctx, store, names)
	if err != nil {
		return nil, err
	}
	b.Version = version
	return b, nil
}

func asArtifactError(err error, msg string) error {
	if errors.IsType(err, errors.ErrorTypeArtifact) {
		return err
	}
	return errors.Wrap(err, errors.ErrorTypeArtifact, msg)
}
