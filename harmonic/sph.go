/*
 * sph.go, part of goScatter.
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

import "math"

// RealSphericalHarmonics puts in dst, which is allocated if nil or too short, the
// 2l+1 real orthonormal spherical harmonics of degree l at the direction of
// (x,y,z), ordered from m=-l to m=l. The zero vector is taken as the z axis.
// Negative m are the sine harmonics, positive m the cosine ones.
func RealSphericalHarmonics(l int, x, y, z float64, dst []float64) []float64 {
	if l < 0 {
		panic("harmonic: negative degree")
	}
	if len(dst) < 2*l+1 {
		dst = make([]float64, 2*l+1)
	}
	dst = dst[:2*l+1]
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		x, y, z, r = 0, 0, 1, 1
	}
	ct := z / r
	phi := math.Atan2(y, x)
	for m := 0; m <= l; m++ {
		k := math.Sqrt(float64(2*l+1) / (4 * math.Pi) * factorialRatio(l-m, l+m))
		p := assocLegendre(l, m, ct)
		if m == 0 {
			dst[l] = k * p
			continue
		}
		fm := float64(m)
		dst[l+m] = math.Sqrt2 * k * p * math.Cos(fm*phi)
		dst[l-m] = math.Sqrt2 * k * p * math.Sin(fm*phi)
	}
	return dst
}

// assocLegendre returns the associated Legendre function P_l^m(x), for 0<=m<=l,
// without the Condon-Shortley phase.
func assocLegendre(l, m int, x float64) float64 {
	pmm := doubleFactorial(2*m-1) * math.Pow(1-x*x, float64(m)/2)
	if l == m {
		return pmm
	}
	pm1 := x * float64(2*m+1) * pmm
	if l == m+1 {
		return pm1
	}
	var pl float64
	for ll := m + 2; ll <= l; ll++ {
		pl = (x*float64(2*ll-1)*pm1 - float64(ll+m-1)*pmm) / float64(ll-m)
		pmm, pm1 = pm1, pl
	}
	return pl
}

// doubleFactorial returns n!!, with (-1)!! = 0!! = 1.
func doubleFactorial(n int) float64 {
	r := 1.0
	for ; n > 1; n -= 2 {
		r *= float64(n)
	}
	return r
}

func factorial(n int) float64 {
	r := 1.0
	for i := 2; i <= n; i++ {
		r *= float64(i)
	}
	return r
}

// factorialRatio returns a!/b! for b >= a.
func factorialRatio(a, b int) float64 {
	r := 1.0
	for i := a + 1; i <= b; i++ {
		r /= float64(i)
	}
	return r
}

// waveletNorm returns the normalization constant of the solid harmonic wavelets of degree l.
func waveletNorm(l int) float64 {
	c := math.Pow(2*math.Pi, 1.5)
	if l%2 == 0 {
		return c / (2 * math.Pi * math.Sqrt(float64(l)+0.5) * doubleFactorial(l+1))
	}
	return c / (math.Pow(2, float64(l+3)/2) * math.Sqrt(math.Pi*float64(2*l+1)) * factorial((l+1)/2))
}
