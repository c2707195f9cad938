package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmera/goscatter/store"
)

func newModelsCmd(a *app) *cobra.Command {
	var del string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()
			if del != "" {
				if err := st.Delete(del); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", del)
				return nil
			}
			recs, err := st.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tKIND\tALPHA\tFEATURES\tSAMPLES\tCV\tTRAIN MAE\tCREATED")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%d\t%d\t%s=%.4g\t%.4g\t%s\n",
					r.ID, r.Name, r.Kind, r.Alpha, r.NFeatures, r.NSamples, r.CVMetric, r.CVScore, r.TrainMAE,
					r.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&del, "delete", "", "delete the model with this ID")
	return cmd
}
