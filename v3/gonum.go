/*
 * gonum.go, part of goScatter.
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

//gonum.go contains what is needed for handling the gonum/mat types.
//All the *Vec functions operate on/produce row vectors, i.e. the
//cartesian coordinates of a point in 3D space.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space. It embeds a gonum Dense, so it
// can be used wherever a mat.Matrix is expected.
// Within the package it is understood that a "vector" is a row vector.
type Matrix struct {
	*mat.Dense
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
// data is used as backing storage, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d or empty", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// Mul wraps mat.Dense.Mul to take care of the case when one of the
// arguments is also the receiver. gonum would compare the Dense in F against
// the Matrix in A and would not know that internally F.Dense==A.Dense.
func (F *Matrix) Mul(A, B mat.Matrix) {
	if A, ok := A.(*Matrix); ok {
		if F == A {
			tmp := mat.DenseCopyOf(A.Dense)
			F.Dense.Mul(tmp, B)
			return
		}
		F.Dense.Mul(A.Dense, B)
		return
	}
	if B, ok := B.(*Matrix); ok {
		if F == B {
			tmp := mat.DenseCopyOf(B.Dense)
			F.Dense.Mul(A, tmp)
			return
		}
		F.Dense.Mul(A, B.Dense)
		return
	}
	F.Dense.Mul(A, B)
}

// Scale wraps mat.Dense.Scale. As with Mul, gonum cannot tell that a Matrix
// argument shares its Dense with the receiver, so the Dense is passed instead.
func (F *Matrix) Scale(f float64, A mat.Matrix) {
	if A, ok := A.(*Matrix); ok {
		F.Dense.Scale(f, A.Dense)
		return
	}
	F.Dense.Scale(f, A)
}

//Errors

// Error is the error type of the package. It mirrors scatter.Error, declared
// again here to avoid a circular import.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("goScatter/v3: A v3.Matrix should have 3 columns")
	ErrShape           = PanicMsg("goScatter/v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("goScatter/v3: index out of range")
)
