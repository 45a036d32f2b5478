package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/form"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/json"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/predict"
)

func (a *app) predictCommand() *cobra.Command {
	var asJSON bool
	values := make(map[string]*float64)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Price a single property",
		Long: `Price one property from the ten exposed features. Omitted features take
their defaults; every other model feature is 0.

Example:
  pricer predict --OverallQual 8 --GrLivArea 2100 --YearBuilt 2005`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make(map[string]float64)
			for name, v := range values {
				if cmd.Flags().Changed(name) {
					inputs[name] = *v
				}
			}
			inputs, err := form.Resolve(inputs)
			if err != nil {
				return err
			}

			p, _, err := a.loadPredictor(cmd.Context())
			if err != nil {
				return err
			}

			price, err := p.PredictRow(cmd.Context(), form.BuildRow(inputs))
			metrics.RecordPrediction(metrics.ModeSingle, err, 1)
			if err != nil {
				return err
			}
			a.log.Debug("priced property", zap.Float64("price", price))

			if asJSON {
				return json.MarshalToWriter(cmd.OutOrStdout(), struct {
					Price      float64            `json:"price"`
					Range      predict.Range      `json:"range"`
					Confidence float64            `json:"confidence"`
					Inputs     map[string]float64 `json:"inputs"`
				}{price, predict.PriceRange(price), predict.ModelConfidence, inputs})
			}
			printPrice(cmd.OutOrStdout(), price)
			return nil
		},
	}

	for _, f := range form.Fields() {
		v := new(float64)
		values[f.Name] = v
		cmd.Flags().Float64Var(v, f.Name, f.Default,
			fmt.Sprintf("%s [%g-%g]", f.Label, f.Min, f.Max))
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printPrice(w io.Writer, price float64) {
	r := predict.PriceRange(price)
	fmt.Fprintf(w, "Estimated sale price: $%s\n", dollars(price))
	fmt.Fprintf(w, "Price range (±10%%):   $%s - $%s\n", dollars(r.Low), dollars(r.High))
	fmt.Fprintf(w, "Model confidence:     %.2f%% (R²)\n", predict.ModelConfidence*100)
}

// dollars formats a price rounded to whole dollars with thousands separators
func dollars(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := len(s) > 0 && s[0] == '-'
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
