/*
 * geometric.go, part of goScatter.
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

package scatter

import (
	"math"

	"github.com/rmera/goscatter/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// WeightedCenter returns the weighted center of the vectors in geometry as a 1x3 matrix.
// If weights is nil, it calculates the geometric center.
func WeightedCenter(geometry *v3.Matrix, weights []float64) (*v3.Matrix, error) {
	if geometry == nil {
		return nil, InvalidMoleculeError("nil matrix to get the center of")
	}
	gr := geometry.NVecs()
	if weights == nil {
		weights = make([]float64, gr)
		floats.AddConst(1, weights)
	}
	if len(weights) != gr {
		return nil, DimensionMismatchError("%d weights for %d vectors", len(weights), gr)
	}
	total := floats.Sum(weights)
	if total == 0 {
		return nil, InvalidMoleculeError("weights add up to zero")
	}
	w := mat.NewDense(1, gr, append([]float64(nil), weights...))
	ref := v3.Zeros(1)
	ref.Mul(w, geometry)
	ref.Scale(1/total, ref)
	return ref, nil
}

// GeometricCenter returns the average position of the atoms.
func (M *Molecule) GeometricCenter() *v3.Matrix {
	c, _ := WeightedCenter(M.coords, nil)
	return c
}

// CenterOfCharge returns the center of nuclear charge. For a molecule where every
// charge is zero it returns the geometric center.
func (M *Molecule) CenterOfCharge() *v3.Matrix {
	c, err := WeightedCenter(M.coords, M.charges)
	if err != nil {
		return M.GeometricCenter()
	}
	return c
}

// CenterOfMass returns the center of mass, or an error if the mass of any atom
// is not known.
func (M *Molecule) CenterOfMass() (*v3.Matrix, error) {
	masses := make([]float64, M.Len())
	for i, q := range M.charges {
		m, ok := Mass(q)
		if !ok {
			return nil, InvalidMoleculeError("molecule %q: no mass for atom %d (charge %g)", M.id, i, q)
		}
		masses[i] = m
	}
	return WeightedCenter(M.coords, masses)
}

// Translated returns a copy of the molecule with every atom displaced by vec, a 1x3 matrix.
func (M *Molecule) Translated(vec *v3.Matrix) *Molecule {
	c := v3.Zeros(M.Len())
	c.AddVec(M.coords, vec)
	return M.withCoords(c)
}

// Centered returns a copy of the molecule translated so center is at the origin.
func (M *Molecule) Centered(center *v3.Matrix) *Molecule {
	c := v3.Zeros(M.Len())
	c.SubVec(M.coords, center)
	return M.withCoords(c)
}

// Rotated returns a copy of the molecule with every position p replaced by rot·p.
// rot must be a 3x3 matrix.
func (M *Molecule) Rotated(rot mat.Matrix) *Molecule {
	if r, c := rot.Dims(); r != 3 || c != 3 {
		panic(v3.ErrShape)
	}
	c := v3.Zeros(M.Len())
	c.Mul(M.coords, rot.T())
	return M.withCoords(c)
}

// Scaled returns a copy of the molecule with all positions multiplied by factor.
func (M *Molecule) Scaled(factor float64) *Molecule {
	c := v3.Zeros(M.Len())
	c.Scale(factor, M.coords)
	return M.withCoords(c)
}

// RotationMatrix returns the 3x3 matrix for a rotation of angle radians around axis,
// following the right-hand rule (Rodrigues formula).
func RotationMatrix(axis []float64, angle float64) (*mat.Dense, error) {
	if len(axis) != 3 {
		return nil, DimensionMismatchError("rotation axis has %d components", len(axis))
	}
	n := floats.Norm(axis, 2)
	if n == 0 {
		return nil, InvalidConfigError("zero rotation axis")
	}
	x, y, z := axis[0]/n, axis[1]/n, axis[2]/n
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return mat.NewDense(3, 3, []float64{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c,
	}), nil
}

// MinDistance returns the smallest distance between two atoms of the same molecule,
// over all the given molecules. It returns an error if no molecule has two atoms.
func MinDistance(mols ...*Molecule) (float64, error) {
	min := math.Inf(1)
	for _, m := range mols {
		for i := 0; i < m.Len(); i++ {
			for j := i + 1; j < m.Len(); j++ {
				if d := m.coords.Dist(i, m.coords, j); d < min {
					min = d
				}
			}
		}
	}
	if math.IsInf(min, 1) {
		return 0, InvalidMoleculeError("no molecule with at least two atoms")
	}
	return min, nil
}
