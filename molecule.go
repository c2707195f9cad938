/*
 * molecule.go, part of goScatter.
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
)

// Molecule is an immutable set of point charges: the positions of the atoms
// and their nuclear charges, plus an optional identifier and element symbols.
// Molecule methods never modify the receiver; accessors return copies.
type Molecule struct {
	id      string
	coords  *v3.Matrix
	charges []float64
	symbols []string
}

// NewMolecule returns a Molecule with copies of coords and charges. symbols is optional;
// when given it must have one element per atom. It returns an InvalidMoleculeError if
// the molecule is empty, coordinates and charges disagree in length, or any value is
// not finite, or any charge is negative.
func NewMolecule(id string, coords *v3.Matrix, charges []float64, symbols ...[]string) (*Molecule, error) {
	if coords == nil {
		return nil, InvalidMoleculeError("molecule %q has no coordinates", id)
	}
	m := &Molecule{id: id, coords: v3.Zeros(coords.NVecs()), charges: make([]float64, len(charges))}
	m.coords.Copy(coords)
	copy(m.charges, charges)
	if len(symbols) > 0 && symbols[0] != nil {
		m.symbols = append([]string(nil), symbols[0]...)
	}
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// MoleculeFromSlices builds a Molecule from a slice of positions and a slice of charges.
func MoleculeFromSlices(id string, positions [][]float64, charges []float64) (*Molecule, error) {
	if len(positions) == 0 {
		return nil, InvalidMoleculeError("molecule %q has no atoms", id)
	}
	data := make([]float64, 0, 3*len(positions))
	for i, p := range positions {
		if len(p) != 3 {
			return nil, InvalidMoleculeError("molecule %q: atom %d has %d coordinates", id, i, len(p))
		}
		data = append(data, p...)
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, InvalidMoleculeError("molecule %q: %v", id, err)
	}
	return NewMolecule(id, coords, charges)
}

// Check returns an InvalidMoleculeError if the molecule breaks one of the
// invariants NewMolecule enforces, nil otherwise.
func (M *Molecule) Check() error {
	if M.coords == nil || len(M.charges) == 0 {
		return InvalidMoleculeError("molecule %q has no atoms", M.id)
	}
	if n := M.coords.NVecs(); n != len(M.charges) {
		return InvalidMoleculeError("molecule %q: %d positions but %d charges", M.id, n, len(M.charges))
	}
	if M.symbols != nil && len(M.symbols) != len(M.charges) {
		return InvalidMoleculeError("molecule %q: %d symbols but %d charges", M.id, len(M.symbols), len(M.charges))
	}
	if !M.coords.IsFinite() {
		return InvalidMoleculeError("molecule %q has non-finite coordinates", M.id)
	}
	for i, q := range M.charges {
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return InvalidMoleculeError("molecule %q: charge %d is not finite", M.id, i)
		}
		if q < 0 {
			return InvalidMoleculeError("molecule %q: charge %d is negative (%g)", M.id, i, q)
		}
	}
	return nil
}

// ID returns the identifier of the molecule, which may be empty.
func (M *Molecule) ID() string { return M.id }

// Len returns the number of atoms.
func (M *Molecule) Len() int { return len(M.charges) }

// Coords returns a copy of the coordinates.
func (M *Molecule) Coords() *v3.Matrix {
	c := v3.Zeros(M.Len())
	c.Copy(M.coords)
	return c
}

// Position returns a copy of the position of the ith atom.
func (M *Molecule) Position(i int) []float64 { return M.coords.Vec(i) }

// Charges returns a copy of the nuclear charges.
func (M *Molecule) Charges() []float64 { return append([]float64(nil), M.charges...) }

// Charge returns the nuclear charge of the ith atom.
func (M *Molecule) Charge(i int) float64 { return M.charges[i] }

// TotalCharge returns the sum of the nuclear charges.
func (M *Molecule) TotalCharge() float64 {
	var t float64
	for _, q := range M.charges {
		t += q
	}
	return t
}

// Symbol returns the element symbol of the ith atom, either the one the molecule
// was built with, or the one corresponding to its charge.
func (M *Molecule) Symbol(i int) string {
	if M.symbols != nil {
		return M.symbols[i]
	}
	return ZToSymbol(M.charges[i])
}

// Symbols returns the element symbols of all atoms.
func (M *Molecule) Symbols() []string {
	s := make([]string, M.Len())
	for i := range s {
		s[i] = M.Symbol(i)
	}
	return s
}

// withCoords returns a molecule sharing everything but the coordinates with M.
func (M *Molecule) withCoords(coords *v3.Matrix) *Molecule {
	return &Molecule{id: M.id, coords: coords, charges: M.charges, symbols: M.symbols}
}
