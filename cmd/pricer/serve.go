package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/internal/server"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/artifact"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long: `Load the artifact bundle and serve the prediction API.

The bundle is loaded before the listener opens; if it cannot be loaded the
command exits non-zero without serving.

Routes:
  GET  /v1/features        input fields, defaults and ranges
  POST /v1/predict         price one property from JSON features
  GET  /v1/predict/last    last prediction in this session
  POST /v1/predict/batch   score a CSV or Parquet upload, returns CSV
  GET  /healthz            bundle and process status
  GET  /metrics            Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, a.cfg, artifact.FromConfig(a.cfg.Artifacts, a.log), a.log)
			if err != nil {
				a.log.Error("refusing to start", zap.Error(err))
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().Int("max-rows", 0, "Reject batches with more rows (overrides batch.max_rows)")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("batch.max_rows", cmd.Flags().Lookup("max-rows"))
	return cmd
}
