package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/formats"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/logger"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/predict"
)

func (a *app) batchCommand() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Price every row of a CSV or Parquet file",
		Long: `Score a table of properties and write it back as CSV with one extra
Predicted_SalePrice column. Input columns and cell text are kept as they are.

Input may be .csv or .parquet, optionally compressed (.gz, .zst, .lz4, .s2,
.snappy). With --compress the output gets the matching suffix.

Example:
  pricer batch -i houses.csv -o ames_housing_predictions.csv --compress zstd`,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := compression.Parse(a.cfg.Batch.Compression)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, "output compression")
			}

			ctx := context.WithValue(cmd.Context(), logger.BatchIDKey, uuid.NewString())
			log := logger.WithContext(a.log, ctx).With(zap.String("input", input))

			p, _, err := a.loadPredictor(ctx)
			if err != nil {
				return err
			}

			f, err := formats.ReadFile(ctx, input)
			if err != nil {
				return err
			}
			if limit := a.cfg.Batch.MaxRows; limit > 0 && f.Len() > limit {
				return errors.Newf(errors.ErrorTypeValidation, "batch has %d rows, limit is %d", f.Len(), limit)
			}
			log.Info("scoring batch", zap.Int("rows", f.Len()), zap.Int("columns", len(f.Columns())))

			prices, err := p.Predict(ctx, f)
			metrics.RecordPrediction(metrics.ModeBatch, err, f.Len())
			if err != nil {
				return err
			}

			path, err := formats.WriteFile(output, f, prices, a.cfg.Batch.OutputColumn, alg)
			if err != nil {
				return err
			}

			sum := predict.Summarize(prices)
			log.Info("batch written", zap.String("output", path), zap.Int("rows", sum.Count))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Predicted prices for %d properties -> %s\n", sum.Count, path)
			fmt.Fprintf(out, "Average price: $%s\n", dollars(sum.Mean))
			fmt.Fprintf(out, "Price range:   $%s - $%s\n", dollars(sum.Min), dollars(sum.Max))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input table (.csv or .parquet, optionally compressed)")
	cmd.Flags().StringVarP(&output, "output", "o", "ames_housing_predictions.csv", "Output CSV path")
	cmd.Flags().String("compress", "", "Compress output: gzip, zstd, lz4, s2, snappy (overrides batch.compression)")
	cmd.Flags().String("output-column", "", "Name of the appended prediction column (overrides batch.output_column)")
	cmd.Flags().Int("workers", 0, "Scoring goroutines (overrides batch.workers)")
	_ = cmd.MarkFlagRequired("input")
	_ = a.v.BindPFlag("batch.compression", cmd.Flags().Lookup("compress"))
	_ = a.v.BindPFlag("batch.output_column", cmd.Flags().Lookup("output-column"))
	_ = a.v.BindPFlag("batch.workers", cmd.Flags().Lookup("workers"))
	return cmd
}
