package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/form"
)

func (a *app) featuresCommand() *cobra.Command {
	var top bool

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List the input fields with defaults and ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tDEFAULT\tMIN\tMAX\tWIDGET")
			for _, f := range form.Fields() {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%s\n", f.Name, f.Label, f.Default, f.Min, f.Max, f.Widget)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if !top {
				return nil
			}
			_, bundle, err := a.loadPredictor(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nTop model features (%s):\n", bundle.Source)
			for i, name := range bundle.TopFeatures {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %s\n", i+1, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&top, "top", false, "Also load the bundle and list its most important features")
	return cmd
}
