/*
 * bank.go, part of goScatter.
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
	"sync"

	scatter "github.com/rmera/goscatter"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// FilterBank holds the frequency-domain solid harmonic wavelets for scales
// j in [0,J) and degrees l in [0,L], 2l+1 filters per (j,l), each sampled on a
// gridSize³ grid in FFT order. A FilterBank is never modified after
// BuildFilterBank returns it, so it can be shared between goroutines.
type FilterBank struct {
	j, l    int
	size    int
	sigma0  float64
	filters [][][][]float64 //[j][l][m+l]
}

// BuildFilterBank returns the bank for J scales, degrees up to L and the given grid
// size. The optional sigma0 is the width, in grid units, of the finest wavelet
// (default 1); the wavelet at scale j has width sigma0·2^j.
func BuildFilterBank(J, L, gridSize int, sigma0 ...float64) (*FilterBank, error) {
	s0 := 1.0
	if len(sigma0) > 0 {
		s0 = sigma0[0]
	}
	switch {
	case J < 1:
		return nil, scatter.InvalidConfigError("number of scales J must be at least 1, got %d", J)
	case L < 0:
		return nil, scatter.InvalidConfigError("maximum degree L must be non-negative, got %d", L)
	case gridSize < 1:
		return nil, scatter.InvalidConfigError("grid size must be positive, got %d", gridSize)
	case !(s0 > 0) || math.IsInf(s0, 0):
		return nil, scatter.InvalidConfigError("sigma0 must be positive and finite, got %g", s0)
	}
	B := &FilterBank{j: J, l: L, size: gridSize, sigma0: s0}
	n3 := gridSize * gridSize * gridSize
	B.filters = make([][][][]float64, J)
	for j := range B.filters {
		B.filters[j] = make([][][]float64, L+1)
		for l := range B.filters[j] {
			B.filters[j][l] = make([][]float64, 2*l+1)
			for m := range B.filters[j][l] {
				B.filters[j][l][m] = make([]float64, n3)
			}
		}
	}
	plan := fourier.NewCmplxFFT(gridSize)
	freqs := make([]float64, gridSize)
	for i := range freqs {
		freqs[i] = angularFreq(plan, i)
	}
	norms := make([]float64, L+1)
	for l := range norms {
		norms[l] = waveletNorm(l)
	}
	sigmas := make([]float64, J)
	for j := range sigmas {
		sigmas[j] = B.Sigma(j)
	}
	ylm := make([][]float64, L+1)
	idx := 0
	for _, kx := range freqs {
		for _, ky := range freqs {
			for _, kz := range freqs {
				k := math.Sqrt(kx*kx + ky*ky + kz*kz)
				for l := range ylm {
					ylm[l] = RealSphericalHarmonics(l, kx, ky, kz, ylm[l])
				}
				for j, s := range sigmas {
					sk := s * k
					gauss := math.Exp(-sk * sk / 2)
					radial := gauss
					for l, y := range ylm {
						if l > 0 {
							radial *= sk
						}
						for m, v := range y {
							B.filters[j][l][m][idx] = norms[l] * radial * v
						}
					}
				}
				idx++
			}
		}
	}
	return B, nil
}

// J returns the number of scales.
func (B *FilterBank) J() int { return B.j }

// L returns the maximum degree.
func (B *FilterBank) L() int { return B.l }

// GridSize returns the number of grid points per axis the filters are sampled on.
func (B *FilterBank) GridSize() int { return B.size }

// Sigma0 returns the width of the finest wavelet, in grid units.
func (B *FilterBank) Sigma0() float64 { return B.sigma0 }

// Sigma returns the width of the wavelets at scale j, in grid units.
func (B *FilterBank) Sigma(j int) float64 { return B.sigma0 * math.Pow(2, float64(j)) }

// Filter returns the frequency-domain filter for scale j, degree l and order m,
// -l <= m <= l. The slice must not be modified.
func (B *FilterBank) Filter(j, l, m int) []float64 {
	return B.filters[j][l][m+l]
}

// Equal returns true if both banks have the same parameters and bit-identical filters.
func (B *FilterBank) Equal(o *FilterBank) bool {
	if B.j != o.j || B.l != o.l || B.size != o.size || B.sigma0 != o.sigma0 {
		return false
	}
	for j := range B.filters {
		for l := range B.filters[j] {
			for m := range B.filters[j][l] {
				if !floats.Equal(B.filters[j][l][m], o.filters[j][l][m]) {
					return false
				}
			}
		}
	}
	return true
}

// LazyBank builds its FilterBank the first time it is requested, once, no matter
// how many goroutines ask for it.
type LazyBank struct {
	j, l, size int
	sigma0     float64
	once       sync.Once
	bank       *FilterBank
	err        error
}

// NewLazyBank returns a LazyBank for the parameters of BuildFilterBank.
func NewLazyBank(J, L, gridSize int, sigma0 float64) *LazyBank {
	return &LazyBank{j: J, l: L, size: gridSize, sigma0: sigma0}
}

// Get returns the bank, building it on the first call. The error of the build, if
// any, is returned by every call.
func (B *LazyBank) Get() (*FilterBank, error) {
	B.once.Do(func() {
		B.bank, B.err = BuildFilterBank(B.j, B.l, B.size, B.sigma0)
	})
	return B.bank, B.err
}
