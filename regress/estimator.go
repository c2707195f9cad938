/*
 * estimator.go, part of goScatter.
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
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	scatter "github.com/rmera/goscatter"
)

// Kind is the kind of linear model.
type Kind string

const (
	OLS   Kind = "ols"
	Ridge Kind = "ridge"
	Lasso Kind = "lasso"
)

// ParseKind returns the Kind for a name, case insensitive.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case OLS, Ridge, Lasso:
		return k, nil
	case "linear":
		return OLS, nil
	}
	return "", scatter.InvalidConfigError("unknown model kind %q", name)
}

// Regularized returns true if the kind uses a regularization strength.
func (k Kind) Regularized() bool { return k == Ridge || k == Lasso }

// Hyperparams are the parameters of an estimator. MaxIter and Tol are only
// used by lasso; zero values mean the defaults.
type Hyperparams struct {
	Alpha   float64
	MaxIter int
	Tol     float64
}

const (
	defaultMaxIter = 10000
	defaultTol     = 1e-8
	rankCutoff     = 1e-12
)

// Estimator fits the weights of a linear model without intercept, for a
// standardized X and centered y.
type Estimator interface {
	Kind() Kind
	Fit(X *mat.Dense, y []float64) ([]float64, error)
}

// NewEstimator returns the estimator for kind. Alpha must be non-negative, and
// positive for ridge and lasso.
func NewEstimator(kind Kind, hp Hyperparams) (Estimator, error) {
	if hp.Alpha < 0 || math.IsNaN(hp.Alpha) || math.IsInf(hp.Alpha, 0) {
		return nil, scatter.InvalidConfigError("regularization strength must be finite and non-negative, got %g", hp.Alpha)
	}
	if kind.Regularized() && hp.Alpha == 0 {
		return nil, scatter.InvalidConfigError("%s needs a positive regularization strength", kind)
	}
	switch kind {
	case OLS:
		return ols{}, nil
	case Ridge:
		return ridge{alpha: hp.Alpha}, nil
	case Lasso:
		l := lasso{alpha: hp.Alpha, maxIter: hp.MaxIter, tol: hp.Tol}
		if l.maxIter <= 0 {
			l.maxIter = defaultMaxIter
		}
		if l.tol <= 0 {
			l.tol = defaultTol
		}
		return l, nil
	}
	return nil, scatter.InvalidConfigError("unknown model kind %q", kind)
}

// ols is minimum-norm least squares through the singular value decomposition.
type ols struct{}

func (ols) Kind() Kind { return OLS }

func (ols) Fit(X *mat.Dense, y []float64) ([]float64, error) {
	_, p := X.Dims()
	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, fmt.Errorf("regress: SVD factorization failed")
	}
	rank := svd.Rank(rankCutoff)
	if rank == 0 {
		return make([]float64, p), nil
	}
	w := mat.NewVecDense(p, nil)
	svd.SolveVecTo(w, mat.NewVecDense(len(y), y), rank)
	return w.RawVector().Data, nil
}

// ridge solves (XᵀX + αI)w = Xᵀy with a Cholesky factorization.
type ridge struct {
	alpha float64
}

func (ridge) Kind() Kind { return Ridge }

func (r ridge) Fit(X *mat.Dense, y []float64) ([]float64, error) {
	_, p := X.Dims()
	var A mat.SymDense
	A.SymOuterK(1, X.T())
	for i := 0; i < p; i++ {
		A.SetSym(i, i, A.At(i, i)+r.alpha)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(&A); !ok {
		return nil, fmt.Errorf("regress: ridge system is not positive definite")
	}
	var b mat.VecDense
	b.MulVec(X.T(), mat.NewVecDense(len(y), y))
	w := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(w, &b); err != nil {
		return nil, fmt.Errorf("regress: solving ridge system: %w", err)
	}
	return w.RawVector().Data, nil
}

// lasso minimizes (1/2n)‖y−Xw‖² + α‖w‖₁ by cyclic coordinate descent.
type lasso struct {
	alpha   float64
	maxIter int
	tol     float64
}

func (lasso) Kind() Kind { return Lasso }

func (l lasso) Fit(X *mat.Dense, y []float64) ([]float64, error) {
	n, p := X.Dims()
	nf := float64(n)
	cols := make([][]float64, p)
	sqnorm := make([]float64, p)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
		sqnorm[j] = floats.Dot(cols[j], cols[j]) / nf
	}
	w := make([]float64, p)
	resid := append([]float64(nil), y...)
	for iter := 0; iter < l.maxIter; iter++ {
		maxDelta := 0.0
		for j, col := range cols {
			if sqnorm[j] == 0 {
				continue
			}
			rho := floats.Dot(col, resid)/nf + sqnorm[j]*w[j]
			nw := softThreshold(rho, l.alpha) / sqnorm[j]
			if d := nw - w[j]; d != 0 {
				floats.AddScaled(resid, -d, col)
				maxDelta = math.Max(maxDelta, math.Abs(d))
				w[j] = nw
			}
		}
		if maxDelta < l.tol {
			return w, nil
		}
	}
	return w, nil
}

func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	}
	return 0
}
