package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/artifact"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/config"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/logger"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/observability"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/predict"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/preprocess"
)

var version = "0.1.0"

// exit codes
const (
	exitError    = 1
	exitArtifact = 2
)

// app carries state shared by every command
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        *zap.Logger
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	a := &app{v: viper.New()}
	root := a.rootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.IsType(err, errors.ErrorTypeArtifact) {
			os.Exit(exitArtifact)
		}
		os.Exit(exitError)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pricer",
		Short: "Estimate house sale prices with a trained ridge model",
		Long: `pricer loads a trained model bundle and prices properties one at a time,
in CSV or Parquet batches, or over HTTP.

The artifact location comes from ARTIFACTS_PATH (default Deployment_Artifacts),
a config file, or --artifacts. Local directories, s3:// and gs:// are supported.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = observability.Shutdown(ctx)
			_ = logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to a YAML config file")
	pf.String("artifacts", "", "Artifact location: directory, s3://bucket/prefix or gs://bucket/prefix")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.Bool("strict-categories", false, "Reject ordinal labels that have no rank instead of encoding them as 0")
	_ = a.v.BindPFlag("artifacts.path", pf.Lookup("artifacts"))
	_ = a.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("preprocess.strict_categories", pf.Lookup("strict-categories"))

	root.AddCommand(
		a.serveCommand(),
		a.predictCommand(),
		a.batchCommand(),
		a.featuresCommand(),
		versionCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pricer v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// setup loads configuration and initializes logging and tracing
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.LoadWithViper(a.v, a.configFile)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "load configuration")
	}
	a.cfg = cfg

	logCfg := logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
		OutputPaths: cfg.Logging.OutputPaths,
	}
	// keep stdout for command output
	if len(logCfg.OutputPaths) == 0 && cmd.Name() != "serve" {
		logCfg.OutputPaths = []string{"stderr"}
	}
	if err := logger.Init(logCfg); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "initialize logger")
	}
	a.log = logger.With(zap.String("component", "cli"), zap.String("command", cmd.Name()))

	obs := observability.DefaultConfig()
	obs.Enabled = cfg.Observability.EnableTracing
	obs.ServiceName = cfg.Observability.ServiceName
	obs.ServiceVersion = version
	obs.SamplingRate = cfg.Observability.TracingSampleRate
	if err := observability.Initialize(obs); err != nil {
		a.log.Warn("tracing disabled", zap.Error(err))
	}
	return nil
}

// loadPredictor loads the bundle eagerly and builds the scoring pipeline
func (a *app) loadPredictor(ctx context.Context) (*predict.Predictor, *artifact.Bundle, error) {
	bundle, err := artifact.FromConfig(a.cfg.Artifacts, a.log).Get(ctx)
	if err != nil {
		return nil, nil, err
	}

	pre, err := preprocess.New(bundle,
		preprocess.WithConfig(a.cfg.Preprocess),
		preprocess.WithLogger(a.log))
	if err != nil {
		return nil, nil, err
	}

	p, err := predict.New(bundle, pre,
		predict.WithWorkers(a.cfg.Batch.GetWorkers()),
		predict.WithLogger(a.log))
	if err != nil {
		return nil, nil, err
	}
	return p, bundle, nil
}
