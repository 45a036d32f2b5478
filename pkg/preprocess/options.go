package preprocess

import (
	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/config"
)

// Default column sets used by the reference deployment
var (
	DefaultSkewedFeatures     = []string{"GrLivArea", "1stFlrSF", "TotalBsmtSF", "GarageArea"}
	DefaultPassthroughOrdinal = []string{"ExterQual", "KitchenQual"}
	DefaultDropColumns        = []string{"Id", "SalePrice", "SalePrice_Log"}
)

// Option configures a Preprocessor
type Option func(*Preprocessor)

// WithStrictCategories rejects ordinal labels that have no rank instead of
// encoding them as 0. Missing values still encode as 0.
func WithStrictCategories() Option {
	return func(p *Preprocessor) { p.strict = true }
}

// WithSkewedFeatures replaces the log1p column set
func WithSkewedFeatures(cols ...string) Option {
	return func(p *Preprocessor) { p.skewed = append([]string(nil), cols...) }
}

// WithPassthroughOrdinal replaces the set of ordinal columns that arrive
// already numeric and skip encoding
func WithPassthroughOrdinal(cols ...string) Option {
	return func(p *Preprocessor) { p.passthrough = toSet(cols) }
}

// WithDropColumns replaces the identifier and target columns removed after
// projection
func WithDropColumns(cols ...string) Option {
	return func(p *Preprocessor) { p.drop = toSet(cols) }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Preprocessor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithConfig applies a preprocess config section. Nil lists keep defaults.
func WithConfig(cfg config.PreprocessConfig) Option {
	return func(p *Preprocessor) {
		if cfg.SkewedFeatures != nil {
			WithSkewedFeatures(cfg.SkewedFeatures...)(p)
		}
		if cfg.PassthroughOrdinal != nil {
			WithPassthroughOrdinal(cfg.PassthroughOrdinal...)(p)
		}
		if cfg.DropColumns != nil {
			WithDropColumns(cfg.DropColumns...)(p)
		}
		if cfg.StrictCategories {
			WithStrictCategories()(p)
		}
	}
}

func toSet(cols []string) map[string]struct{} {
	s := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}
