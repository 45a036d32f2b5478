package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override except ARTIFACTS_PATH
	EnvPrefix = "PRICER"
	// ArtifactsPathEnv selects the artifact store
	ArtifactsPathEnv = "ARTIFACTS_PATH"
	// DefaultArtifactsPath is used when ARTIFACTS_PATH is unset
	DefaultArtifactsPath = "Deployment_Artifacts"
	// DefaultOutputColumn is appended to batch output
	DefaultOutputColumn = "Predicted_SalePrice"
)

// Config is the single configuration structure for the predictor.
type Config struct {
	// Artifacts locates the trained bundle
	Artifacts ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`

	// Preprocess tunes the feature pipeline
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess"`

	// Server controls the HTTP surface
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Batch controls bulk prediction
	Batch BatchConfig `mapstructure:"batch" yaml:"batch"`

	// Logging controls zap output
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Observability controls metrics and tracing
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability"`
}

// ArtifactsConfig locates the trained artifact bundle.
type ArtifactsConfig struct {
	// Path is a local directory, s3://bucket/prefix or gs://bucket/prefix
	Path string `mapstructure:"path" yaml:"path"`
	// Region for S3 stores; empty uses the default AWS chain
	Region string `mapstructure:"region" yaml:"region"`
	// CredentialsFile for GCS stores; empty uses application default credentials
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	// LoadTimeout bounds the startup load
	LoadTimeout time.Duration `mapstructure:"load_timeout" yaml:"load_timeout"`
}

// PreprocessConfig tunes the feature pipeline.
type PreprocessConfig struct {
	// SkewedFeatures are log1p-transformed before scaling
	SkewedFeatures []string `mapstructure:"skewed_features" yaml:"skewed_features"`
	// PassthroughOrdinal lists ordinal columns collected as numeric ranks
	PassthroughOrdinal []string `mapstructure:"passthrough_ordinal" yaml:"passthrough_ordinal"`
	// DropColumns are removed after projection (identifier and target columns)
	DropColumns []string `mapstructure:"drop_columns" yaml:"drop_columns"`
	// StrictCategories rejects ordinal labels missing from their mapping
	StrictCategories bool `mapstructure:"strict_categories" yaml:"strict_categories"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	MaxConnections  int           `mapstructure:"max_connections" yaml:"max_connections"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// SessionTTL expires idle interactive sessions
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
}

// BatchConfig controls bulk prediction.
type BatchConfig struct {
	// MaxRows rejects larger batches before scoring (0 = unlimited)
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`
	// Workers scores row ranges in parallel
	Workers int `mapstructure:"workers" yaml:"workers"`
	// OutputColumn names the appended prediction column
	OutputColumn string `mapstructure:"output_column" yaml:"output_column"`
	// Compression applied to CLI batch output (none, gzip, zstd, lz4, s2, snappy)
	Compression string `mapstructure:"compression" yaml:"compression"`
}

// LoggingConfig controls zap output.
type LoggingConfig struct {
	Level       string   `mapstructure:"level" yaml:"level"`
	Encoding    string   `mapstructure:"encoding" yaml:"encoding"`
	Development bool     `mapstructure:"development" yaml:"development"`
	OutputPaths []string `mapstructure:"output_paths" yaml:"output_paths"`
}

// ObservabilityConfig controls metrics and tracing.
type ObservabilityConfig struct {
	EnableMetrics     bool    `mapstructure:"enable_metrics" yaml:"enable_metrics"`
	EnableTracing     bool    `mapstructure:"enable_tracing" yaml:"enable_tracing"`
	TracingSampleRate float64 `mapstructure:"tracing_sample_rate" yaml:"tracing_sample_rate"`
	ServiceName       string  `mapstructure:"service_name" yaml:"service_name"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Artifacts: ArtifactsConfig{
			Path:        DefaultArtifactsPath,
			LoadTimeout: 2 * time.Minute,
		},
		Preprocess: PreprocessConfig{
			SkewedFeatures:     []string{"GrLivArea", "1stFlrSF", "TotalBsmtSF", "GarageArea"},
			PassthroughOrdinal: []string{"ExterQual", "KitchenQual"},
			DropColumns:        []string{"Id", "SalePrice", "SalePrice_Log"},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxConnections:  256,
			MaxBodyBytes:    64 << 20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			SessionTTL:      time.Hour,
		},
		Batch: BatchConfig{
			MaxRows:      0,
			Workers:      runtime.NumCPU(),
			OutputColumn: DefaultOutputColumn,
			Compression:  "none",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Observability: ObservabilityConfig{
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 0.1,
			ServiceName:       "pricer",
		},
	}
}

// SetDefaults registers every default with v so environment variables can
// override keys that never appear in a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("artifacts.path", d.Artifacts.Path)
	v.SetDefault("artifacts.region", d.Artifacts.Region)
	v.SetDefault("artifacts.credentials_file", d.Artifacts.CredentialsFile)
	v.SetDefault("artifacts.load_timeout", d.Artifacts.LoadTimeout)

	v.SetDefault("preprocess.skewed_features", d.Preprocess.SkewedFeatures)
	v.SetDefault("preprocess.passthrough_ordinal", d.Preprocess.PassthroughOrdinal)
	v.SetDefault("preprocess.drop_columns", d.Preprocess.DropColumns)
	v.SetDefault("preprocess.strict_categories", d.Preprocess.StrictCategories)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_connections", d.Server.MaxConnections)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)

	v.SetDefault("batch.max_rows", d.Batch.MaxRows)
	v.SetDefault("batch.workers", d.Batch.Workers)
	v.SetDefault("batch.output_column", d.Batch.OutputColumn)
	v.SetDefault("batch.compression", d.Batch.Compression)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.output_paths", d.Logging.OutputPaths)

	v.SetDefault("observability.enable_metrics", d.Observability.EnableMetrics)
	v.SetDefault("observability.enable_tracing", d.Observability.EnableTracing)
	v.SetDefault("observability.tracing_sample_rate", d.Observability.TracingSampleRate)
	v.SetDefault("observability.service_name", d.Observability.ServiceName)
}

// LoadWithViper reads configuration through v. file may be empty, in which
// case only defaults and environment variables apply. Flags bound to v by the
// caller take precedence over both.
func LoadWithViper(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("artifacts.path", EnvPrefix+"_ARTIFACTS_PATH", ArtifactsPathEnv); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", ArtifactsPathEnv, err)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Artifacts.Path) == "" {
		return fmt.Errorf("artifacts.path is required")
	}
	if c.Artifacts.LoadTimeout < 0 {
		return fmt.Errorf("artifacts.load_timeout cannot be negative")
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections cannot be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Batch.MaxRows < 0 {
		return fmt.Errorf("batch.max_rows cannot be negative")
	}
	if strings.TrimSpace(c.Batch.OutputColumn) == "" {
		return fmt.Errorf("batch.output_column is required")
	}
	if r := c.Observability.TracingSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("observability.tracing_sample_rate must be within [0, 1]")
	}
	return nil
}

// GetWorkers returns the number of workers, ensuring it's at least 1
func (b *BatchConfig) GetWorkers() int {
	if b.Workers <= 0 {
		return runtime.NumCPU()
	}
	return b.Workers
}
