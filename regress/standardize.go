/*
 * standardize.go, part of goScatter.
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
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	scatter "github.com/rmera/goscatter"
)

// minScale is the smallest standard deviation a column can have before it is
// treated as constant.
const minScale = 1e-12

// Standardizer centers each column on its mean and divides it by its
// population standard deviation. Constant columns get a scale of 1.
type Standardizer struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitStandardizer computes the column statistics of X.
func FitStandardizer(X [][]float64) (*Standardizer, error) {
	n, p, err := dims(X)
	if err != nil {
		return nil, err
	}
	S := &Standardizer{Mean: make([]float64, p), Scale: make([]float64, p)}
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std < minScale {
			std = 1
		}
		S.Mean[j], S.Scale[j] = mean, std
	}
	return S, nil
}

// Len returns the number of columns the standardizer was fitted on.
func (S *Standardizer) Len() int { return len(S.Mean) }

// TransformRow puts in dst, allocated if needed, the standardized row.
func (S *Standardizer) TransformRow(dst, row []float64) []float64 {
	if len(dst) != len(row) {
		dst = make([]float64, len(row))
	}
	for j, v := range row {
		dst[j] = (v - S.Mean[j]) / S.Scale[j]
	}
	return dst
}

// Transform returns the standardized X as a Dense matrix.
func (S *Standardizer) Transform(X [][]float64) (*mat.Dense, error) {
	n, p, err := dims(X)
	if err != nil {
		return nil, err
	}
	if p != S.Len() {
		return nil, scatter.DimensionMismatchError("%d features, the standardizer expects %d", p, S.Len())
	}
	Z := mat.NewDense(n, p, nil)
	for i, row := range X {
		Z.SetRow(i, S.TransformRow(nil, row))
	}
	return Z, nil
}

// dims returns the rows and columns of X, or a DimensionMismatchError if X is empty
// or ragged.
func dims(X [][]float64) (int, int, error) {
	if len(X) == 0 {
		return 0, 0, scatter.DimensionMismatchError("no samples")
	}
	p := len(X[0])
	if p == 0 {
		return 0, 0, scatter.DimensionMismatchError("samples have no features")
	}
	for i, row := range X {
		if len(row) != p {
			return 0, 0, scatter.DimensionMismatchError("sample %d has %d features, expected %d", i, len(row), p)
		}
	}
	return len(X), p, nil
}
