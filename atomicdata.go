/*
 * atomicdata.go, part of goScatter.
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
	"strings"
)

// Element symbols indexed by nuclear charge. Index 0 is a placeholder.
var zSymbol = []string{"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
}

// Standard atomic weights, indexed as zSymbol.
var zMass = []float64{0,
	1.008, 4.0026,
	6.94, 9.012, 10.81, 12.011, 14.007, 15.999, 18.998, 20.180,
	22.990, 24.305, 26.982, 28.085, 30.974, 32.06, 35.45, 39.948,
	39.098, 40.078, 44.956, 47.867, 50.942, 51.996, 54.938, 55.845, 58.933, 58.693, 63.546, 65.38, 69.723, 72.630, 74.922, 78.971, 79.904, 83.798,
	85.468, 87.62, 88.906, 91.224, 92.906, 95.95, 98, 101.07, 102.91, 106.42, 107.87, 112.41, 114.82, 118.71, 121.76, 127.60, 126.90, 131.29,
}

// Electrons in the closed shells of the noble gases.
var nobleCores = []float64{2, 10, 18, 36, 54, 86}

var symbolZ = func() map[string]int {
	m := make(map[string]int, len(zSymbol))
	for z, s := range zSymbol[1:] {
		m[strings.ToUpper(s)] = z + 1
	}
	return m
}()

// SymbolToZ returns the nuclear charge for an element symbol (case insensitive),
// and false if the symbol is unknown.
func SymbolToZ(symbol string) (float64, bool) {
	z, ok := symbolZ[strings.ToUpper(strings.TrimSpace(symbol))]
	return float64(z), ok
}

// ZToSymbol returns the element symbol for a nuclear charge, or "X"
// if charge is not an integer we have a symbol for.
func ZToSymbol(charge float64) string {
	z := int(math.Round(charge))
	if float64(z) != charge || z < 1 || z >= len(zSymbol) {
		return "X"
	}
	return zSymbol[z]
}

// Mass returns the standard atomic weight for a nuclear charge, and false
// if it is not known.
func Mass(charge float64) (float64, bool) {
	z := int(math.Round(charge))
	if float64(z) != charge || z < 1 || z >= len(zMass) {
		return 0, false
	}
	return zMass[z], true
}

// Valence returns the number of valence electrons of a neutral atom with the given
// nuclear charge: the charge minus that of the largest noble-gas core below it.
func Valence(charge float64) float64 {
	core := 0.0
	for _, c := range nobleCores {
		if c >= charge {
			break
		}
		core = c
	}
	return charge - core
}

// Core returns the number of core electrons of a neutral atom with the given charge.
func Core(charge float64) float64 {
	return charge - Valence(charge)
}
