package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/features"
	"github.com/rmera/goscatter/regress"
	"github.com/rmera/goscatter/store"
)

func newPredictCmd(a *app) *cobra.Command {
	var id, out string
	cmd := &cobra.Command{
		Use:   "predict FEATUREFILE",
		Short: "Predict the targets of a feature file with a stored model",
		Long: `Applies a stored model (the newest one unless --id is given) to every
molecule of a feature file and writes id, prediction and reference target as
tab-separated columns. The feature columns must match those of the model.`,
		Example: `  goscatter predict test.feat.zst --id 5c0e... -o test.tsv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.predict(cmd, args[0], id, out)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "ID of the stored model (default: newest)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "file for the predictions (default: standard output)")
	return cmd
}

func (a *app) predict(cmd *cobra.Command, in, id, out string) error {
	M, err := features.LoadMatrix(in)
	if err != nil {
		return err
	}
	st, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	model, rec, err := st.Load(id)
	if err != nil {
		return err
	}
	if err := sameFeatures(model.Features, M.Names); err != nil {
		return err
	}
	for k, v := range rec.Meta {
		if got, ok := M.Meta[k]; ok && got != v {
			a.log.Warn("feature settings differ from the model's", zap.String("key", k), zap.String("model", v), zap.String("features", got))
		}
	}
	pred, err := model.Predict(M.Rows)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if out != "" {
		if err := savePredictions(out, M.IDs, pred, M.Targets); err != nil {
			return err
		}
	} else if err := writePredictions(w, M.IDs, pred, M.Targets); err != nil {
		return err
	}
	if idx := M.Labeled(); len(idx) > 0 {
		p, y := pick(pred, idx), pick(M.Targets, idx)
		fmt.Fprintf(cmd.ErrOrStderr(), "MAE: %.6g  RMSE: %.6g  (%d labeled molecules)\n", regress.MAE(p, y), regress.RMSE(p, y), len(idx))
	}
	return nil
}

func sameFeatures(model, file []string) error {
	if len(model) != len(file) {
		return scatter.DimensionMismatchError("model has %d features, file has %d", len(model), len(file))
	}
	for i := range model {
		if model[i] != file[i] {
			return scatter.DimensionMismatchError("feature %d is %s in the model but %s in the file", i, model[i], file[i])
		}
	}
	return nil
}

func pick(x []float64, idx []int) []float64 {
	ret := make([]float64, len(idx))
	for i, j := range idx {
		ret[i] = x[j]
	}
	return ret
}
