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

func newFitCmd(a *app) *cobra.Command {
	var name, oof string
	cmd := &cobra.Command{
		Use:   "fit FEATUREFILE",
		Short: "Cross-validate and fit a regression model on a feature file",
		Long: `Selects the regularization strength among regression.alphas by k-fold
cross-validation (ridge and lasso), fits the model on all labeled molecules
and saves it, with its scores, in the model database.`,
		Example: `  goscatter fit qm7.feat.zst --model ridge --alphas 1e-3,1e-2,1e-1 --cv-folds 5`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fit(cmd, args[0], name, oof)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the stored model")
	cmd.Flags().StringVar(&oof, "predictions", "", "write the out-of-fold predictions to this file")
	return cmd
}

func (a *app) fit(cmd *cobra.Command, in, name, oof string) error {
	M, err := features.LoadMatrix(in)
	if err != nil {
		return err
	}
	L := M.Subset(M.Labeled())
	n, _ := L.Dims()
	if n == 0 {
		return scatter.DimensionMismatchError("no labeled molecules in %s", in)
	}
	r := a.cfg.Regression
	kind, err := regress.ParseKind(r.Model)
	if err != nil {
		return err
	}
	metric, err := regress.ParseMetric(r.Metric)
	if err != nil {
		return err
	}
	folds, err := regress.KFold(n, r.CVFolds, r.Seed)
	if err != nil {
		return err
	}
	alphas := r.Alphas
	if len(alphas) == 0 {
		alphas = []float64{r.Alpha}
	}
	cv, err := regress.CrossValidate(cmd.Context(), L.Rows, L.Targets, kind, alphas, folds, metric)
	if err != nil {
		return err
	}
	a.metrics.RecordFit(string(kind), len(cv.Alphas)*len(folds))
	alpha := cv.BestAlpha()
	a.log.Info("cross-validation done",
		zap.String("model", string(kind)),
		zap.Float64s("alphas", cv.Alphas),
		zap.Float64s("scores", cv.Scores),
		zap.Float64("best_alpha", alpha))

	hp := a.cfg.Hyperparams(alpha)
	model, err := regress.Fit(L.Rows, L.Targets, kind, hp)
	if err != nil {
		return err
	}
	a.metrics.RecordFit(string(kind), 1)
	model.Features = L.Names
	pred, err := model.Predict(L.Rows)
	if err != nil {
		return err
	}
	mae, rmse := regress.MAE(pred, L.Targets), regress.RMSE(pred, L.Targets)

	if oof != "" {
		cvPred, err := regress.CrossValPredict(cmd.Context(), L.Rows, L.Targets, kind, hp, folds)
		if err != nil {
			return err
		}
		a.metrics.RecordFit(string(kind), len(folds))
		if err := savePredictions(oof, L.IDs, cvPred, L.Targets); err != nil {
			return err
		}
	}

	st, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	rec, err := st.Save(model, store.Record{
		Name:      name,
		NSamples:  n,
		CVMetric:  string(metric),
		CVScore:   cv.BestScore(),
		TrainMAE:  mae,
		TrainRMSE: rmse,
		Meta:      M.Meta,
	})
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "model %s (%s, alpha=%g) trained on %d molecules\n", rec.ID, kind, alpha, n)
	fmt.Fprintf(w, "cv %s: %.6g\n", metric, cv.BestScore())
	fmt.Fprintf(w, "train MAE: %.6g  RMSE: %.6g\n", mae, rmse)
	return nil
}
