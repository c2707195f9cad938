/*
 * cv.go, part of goScatter.
 *
 * Copyright 2026 The goScatter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package regress

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	scatter "github.com/rmera/goscatter"
)

// Fold is one split of a dataset into training and held-out samples.
type Fold struct {
	Train []int
	Test  []int
}

// KFold shuffles the indexes 0..n-1 with the given seed and splits them in k
// folds of nearly equal size. Each index is in the Test set of exactly one fold.
func KFold(n, k int, seed int64) ([]Fold, error) {
	if k < 2 || k > n {
		return nil, scatter.InvalidConfigError("cannot make %d folds of %d samples", k, n)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([]Fold, k)
	start := 0
	for f := range folds {
		size := n / k
		if f < n%k {
			size++
		}
		test := append([]int(nil), perm[start:start+size]...)
		sort.Ints(test)
		train := make([]int, 0, n-size)
		train = append(train, perm[:start]...)
		train = append(train, perm[start+size:]...)
		sort.Ints(train)
		folds[f] = Fold{Train: train, Test: test}
		start += size
	}
	return folds, nil
}

// Metric is an error measure for held-out predictions.
type Metric string

const (
	MetricMAE  Metric = "mae"
	MetricRMSE Metric = "rmse"
)

// ParseMetric returns the metric for a name, case insensitive.
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(name))); m {
	case MetricMAE, MetricRMSE:
		return m, nil
	}
	return "", scatter.InvalidConfigError("unknown metric %q", name)
}

// Score returns the error of pred with respect to y.
func (m Metric) Score(pred, y []float64) float64 {
	if m == MetricRMSE {
		return RMSE(pred, y)
	}
	return MAE(pred, y)
}

// CVResult holds the held-out errors of a cross-validation.
type CVResult struct {
	Metric     Metric
	Alphas     []float64
	FoldScores [][]float64 //[alpha][fold]
	Scores     []float64   //mean over folds
	Best       int
}

// BestAlpha returns the regularization strength with the lowest mean error.
func (R *CVResult) BestAlpha() float64 { return R.Alphas[R.Best] }

// BestScore returns the lowest mean error.
func (R *CVResult) BestScore() float64 { return R.Scores[R.Best] }

func checkFolds(folds []Fold, n int) error {
	if len(folds) == 0 {
		return scatter.InvalidConfigError("no folds")
	}
	for f, fold := range folds {
		if len(fold.Train) == 0 || len(fold.Test) == 0 {
			return scatter.InvalidConfigError("fold %d has an empty training or test set", f)
		}
		for _, set := range [][]int{fold.Train, fold.Test} {
			for _, i := range set {
				if i < 0 || i >= n {
					return scatter.InvalidConfigError("fold %d has index %d, out of range for %d samples", f, i, n)
				}
			}
		}
	}
	return nil
}

func rows(X [][]float64, idx []int) [][]float64 {
	ret := make([][]float64, len(idx))
	for i, j := range idx {
		ret[i] = X[j]
	}
	return ret
}

func values(y []float64, idx []int) []float64 {
	ret := make([]float64, len(idx))
	for i, j := range idx {
		ret[i] = y[j]
	}
	return ret
}

// CrossValidate fits a model of the given kind for each alpha on the training part
// of each fold and scores it on the held-out part. Fits run in parallel. The best
// alpha is the one with the lowest mean error, the first one on ties. For OLS the
// alphas are ignored and a single unregularized model is evaluated.
func CrossValidate(ctx context.Context, X [][]float64, y []float64, kind Kind, alphas []float64, folds []Fold, metric Metric) (*CVResult, error) {
	if err := checkXY(X, y); err != nil {
		return nil, err
	}
	if !kind.Regularized() {
		if _, err := ParseKind(string(kind)); err != nil {
			return nil, err
		}
		alphas = []float64{0}
	}
	if len(alphas) == 0 {
		return nil, scatter.InvalidConfigError("no regularization strengths to cross-validate")
	}
	if _, err := ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	if err := checkFolds(folds, len(y)); err != nil {
		return nil, err
	}
	ests := make([]Estimator, len(alphas))
	for a, alpha := range alphas {
		var err error
		if ests[a], err = NewEstimator(kind, Hyperparams{Alpha: alpha}); err != nil {
			return nil, err
		}
	}
	R := &CVResult{Metric: metric, Alphas: append([]float64(nil), alphas...), FoldScores: make([][]float64, len(alphas)), Scores: make([]float64, len(alphas))}
	for a := range R.FoldScores {
		R.FoldScores[a] = make([]float64, len(folds))
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for a := range alphas {
		for f := range folds {
			a, f := a, f
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				fold := folds[f]
				M, err := FitWith(ests[a], rows(X, fold.Train), values(y, fold.Train), alphas[a])
				if err != nil {
					return err
				}
				pred, err := Predict(M, rows(X, fold.Test))
				if err != nil {
					return err
				}
				R.FoldScores[a][f] = metric.Score(pred, values(y, fold.Test))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for a, fs := range R.FoldScores {
		var s float64
		for _, v := range fs {
			s += v
		}
		R.Scores[a] = s / float64(len(fs))
		if R.Scores[a] < R.Scores[R.Best] {
			R.Best = a
		}
	}
	return R, nil
}

// CrossValPredict returns, for each sample, the prediction of the model trained on
// the fold where the sample is held out. Samples in no test set get NaN.
func CrossValPredict(ctx context.Context, X [][]float64, y []float64, kind Kind, hp Hyperparams, folds []Fold) ([]float64, error) {
	if err := checkXY(X, y); err != nil {
		return nil, err
	}
	if err := checkFolds(folds, len(y)); err != nil {
		return nil, err
	}
	est, err := NewEstimator(kind, hp)
	if err != nil {
		return nil, err
	}
	preds := make([][]float64, len(folds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for f := range folds {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			M, err := FitWith(est, rows(X, folds[f].Train), values(y, folds[f].Train), hp.Alpha)
			if err != nil {
				return err
			}
			preds[f], err = Predict(M, rows(X, folds[f].Test))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ret := make([]float64, len(y))
	for i := range ret {
		ret[i] = math.NaN()
	}
	for f, fold := range folds {
		for i, idx := range fold.Test {
			ret[idx] = preds[f][i]
		}
	}
	return ret, nil
}
