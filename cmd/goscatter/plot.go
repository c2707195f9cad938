package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmera/goscatter/chemplot"
)

func newPlotCmd(a *app) *cobra.Command {
	var parity, residuals, title string
	var bins, tagged int
	cmd := &cobra.Command{
		Use:   "plot PREDICTIONFILE",
		Short: "Draw parity and residual plots from a prediction file",
		Long: `Reads a prediction file written by fit --predictions or predict and draws
the predicted against the reference values and a histogram of the residuals.
The image format follows the file extension (png, svg, pdf).`,
		Example: `  goscatter plot cv.tsv --parity parity.png --residuals residuals.svg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, ref, err := loadLabeledPredictions(args[0])
			if err != nil {
				return err
			}
			if parity == "" && residuals == "" {
				return fmt.Errorf("nothing to plot: give --parity or --residuals")
			}
			if parity != "" {
				if err := chemplot.Parity(pred, ref, title, parity, tagged); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", parity)
			}
			if residuals != "" {
				if err := chemplot.Residuals(pred, ref, bins, title, residuals); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", residuals)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&parity, "parity", "", "parity plot file")
	cmd.Flags().StringVar(&residuals, "residuals", "", "residual histogram file")
	cmd.Flags().StringVar(&title, "title", "", "plot title")
	cmd.Flags().IntVar(&bins, "bins", 0, "histogram bins (0: square root of the number of points)")
	cmd.Flags().IntVar(&tagged, "tag", 0, fmt.Sprintf("mark the points with the largest errors (at most %d)", chemplot.MaxTagged))
	return cmd
}
