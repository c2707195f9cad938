/*
 * options.go, part of goScatter.
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

package harmonic

import (
	"math"

	scatter "github.com/rmera/goscatter"
)

// Options contains the options for the scattering transform.
type Options struct {
	maxOrder       int
	integralPowers []float64
}

// DefaultOptions returns the default options: coefficients up to order 2,
// integrated with the power 1.
func DefaultOptions() *Options {
	r := new(Options)
	r.maxOrder = 2
	r.integralPowers = []float64{1}
	return r
}

// MaxOrder returns the highest scattering order computed,
// and sets it to a new value, if given.
func (O *Options) MaxOrder(n ...int) int {
	if len(n) > 0 {
		O.maxOrder = n[0]
	}
	return O.maxOrder
}

// IntegralPowers returns the powers q with which the responses are integrated
// (each coefficient is the sum of |U|^q over the grid), and sets them to new
// values, if given.
func (O *Options) IntegralPowers(q ...[]float64) []float64 {
	if len(q) > 0 && len(q[0]) > 0 {
		O.integralPowers = append([]float64(nil), q[0]...)
	}
	return O.integralPowers
}

// Check returns an InvalidConfigError if the options cannot be used.
func (O *Options) Check() error {
	if O.maxOrder < 0 || O.maxOrder > 2 {
		return scatter.InvalidConfigError("maximum scattering order must be 0, 1 or 2, got %d", O.maxOrder)
	}
	if len(O.integralPowers) == 0 {
		return scatter.InvalidConfigError("no integral powers")
	}
	for _, q := range O.integralPowers {
		if !(q > 0) || math.IsInf(q, 0) {
			return scatter.InvalidConfigError("integral powers must be positive and finite, got %g", q)
		}
	}
	return nil
}
