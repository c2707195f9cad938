/*
 * model.go, part of goScatter.
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

// Package regress fits standardized linear models (ordinary least squares, ridge
// and lasso) to feature vectors and selects their regularization strength by
// cross-validation.
package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	scatter "github.com/rmera/goscatter"
)

// Model is a trained linear model. Weights act on standardized features;
// Bias is the mean of the training targets.
type Model struct {
	Kind         Kind          `json:"kind"`
	Alpha        float64       `json:"alpha"`
	Weights      []float64     `json:"weights"`
	Bias         float64       `json:"bias"`
	Standardizer *Standardizer `json:"standardizer"`
	Features     []string      `json:"features,omitempty"`
}

// Fit standardizes X, centers y, and fits a model of the given kind. It returns a
// DimensionMismatchError if X is empty or ragged or does not have one row per
// target, and an InvalidConfigError for a bad kind or hyperparameters.
func Fit(X [][]float64, y []float64, kind Kind, hp Hyperparams) (*Model, error) {
	est, err := NewEstimator(kind, hp)
	if err != nil {
		return nil, err
	}
	return FitWith(est, X, y, hp.Alpha)
}

// FitWith is like Fit, with an estimator built beforehand. alpha is only recorded in the model.
func FitWith(est Estimator, X [][]float64, y []float64, alpha float64) (*Model, error) {
	if err := checkXY(X, y); err != nil {
		return nil, err
	}
	S, err := FitStandardizer(X)
	if err != nil {
		return nil, err
	}
	Z, err := S.Transform(X)
	if err != nil {
		return nil, err
	}
	mean := stat.Mean(y, nil)
	yc := append([]float64(nil), y...)
	floats.AddConst(-mean, yc)
	w, err := est.Fit(Z, yc)
	if err != nil {
		return nil, err
	}
	if est.Kind() == OLS {
		alpha = 0
	}
	return &Model{Kind: est.Kind(), Alpha: alpha, Weights: w, Bias: mean, Standardizer: S}, nil
}

// Predict returns the predictions of M for each row of X.
func Predict(M *Model, X [][]float64) ([]float64, error) {
	if M == nil || M.Standardizer == nil {
		return nil, fmt.Errorf("regress: untrained model")
	}
	if len(X) == 0 {
		return []float64{}, nil
	}
	if _, p, err := dims(X); err != nil {
		return nil, err
	} else if p != len(M.Weights) || p != M.Standardizer.Len() {
		return nil, scatter.DimensionMismatchError("%d features, the model expects %d", p, len(M.Weights))
	}
	ret := make([]float64, len(X))
	z := make([]float64, len(M.Weights))
	for i, row := range X {
		z = M.Standardizer.TransformRow(z, row)
		ret[i] = M.Bias + floats.Dot(M.Weights, z)
	}
	return ret, nil
}

// Predict returns the predictions of M for each row of X.
func (M *Model) Predict(X [][]float64) ([]float64, error) { return Predict(M, X) }

func checkXY(X [][]float64, y []float64) error {
	if _, _, err := dims(X); err != nil {
		return err
	}
	if len(X) != len(y) {
		return scatter.DimensionMismatchError("%d samples but %d targets", len(X), len(y))
	}
	for i, t := range y {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("regress: target %d is not finite", i)
		}
	}
	for i, row := range X {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("regress: feature %d of sample %d is not finite", j, i)
			}
		}
	}
	return nil
}

// MAE returns the mean absolute error of pred with respect to y.
func MAE(pred, y []float64) float64 {
	var s float64
	for i, p := range pred {
		s += math.Abs(p - y[i])
	}
	return s / float64(len(pred))
}

// RMSE returns the root mean squared error of pred with respect to y.
func RMSE(pred, y []float64) float64 {
	return floats.Distance(pred, y, 2) / math.Sqrt(float64(len(pred)))
}
