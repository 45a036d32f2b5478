package artifact

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/config"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
)

// LoadFunc produces a bundle
type LoadFunc func(ctx context.Context) (*Bundle, error)

// Provider loads the bundle exactly once. Every Get returns the same bundle,
// or the same error, for the life of the process.
type Provider struct {
	load    LoadFunc
	timeout time.Duration
	logger  *zap.Logger

	once   sync.Once
	bundle *Bundle
	err    error
	done   chan struct{}
}

// NewProvider wraps load. timeout bounds the single load (0 = no bound).
func NewProvider(load LoadFunc, timeout time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		load:    load,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "artifact_provider")),
		done:    make(chan struct{}),
	}
}

// NewStoreProvider loads from the store cfg names
func NewStoreProvider(cfg StoreConfig, timeout time.Duration, logger *zap.Logger) *Provider {
	return NewProvider(func(ctx context.Context) (*Bundle, error) {
		return Open(ctx, cfg)
	}, timeout, logger)
}

// FromConfig returns a provider for the configured artifact location
func FromConfig(cfg config.ArtifactsConfig, logger *zap.Logger) *Provider {
	return NewStoreProvider(StoreConfig{
		Path:            cfg.Path,
		Region:          cfg.Region,
		CredentialsFile: cfg.CredentialsFile,
	}, cfg.LoadTimeout, logger)
}

// Get returns the bundle, loading it on first use. The load ignores the
// caller's cancellation; only the provider timeout bounds it.
func (p *Provider) Get(ctx context.Context) (*Bundle, error) {
	p.once.Do(func() {
		defer close(p.done)

		loadCtx := context.WithoutCancel(ctx)
		if p.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, p.timeout)
			defer cancel()
		}

		timer := metrics.NewTimer()
		p.bundle, p.err = p.load(loadCtx)
		elapsed := timer.Stop()
		metrics.ArtifactLoadSeconds.Observe(elapsed.Seconds())

		if p.err != nil {
			p.bundle = nil
			metrics.BundleLoaded.Set(0)
			p.logger.Error("artifact bundle failed to load", zap.Error(p.err), zap.Duration("elapsed", elapsed))
			return
		}

		metrics.BundleLoaded.Set(1)
		p.logger.Info("artifact bundle loaded",
			zap.String("source", p.bundle.Source),
			zap.String("version", p.bundle.Version),
			zap.Int("features", len(p.bundle.FullFeatures)),
			zap.Int("ordinal_columns", len(p.bundle.OrdinalMaps)),
			zap.Duration("elapsed", elapsed))
	})
	return p.bundle, p.err
}

// Loaded reports whether a load has finished, and its error
func (p *Provider) Loaded() (bool, error) {
	select {
	case <-p.done:
		return p.err == nil, p.err
	default:
		return false, nil
	}
}
