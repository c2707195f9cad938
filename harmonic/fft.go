/*
 * fft.go, part of goScatter.
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
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// fft3 performs 3D discrete Fourier transforms of n³ row-major complex grids
// as 1D transforms along each axis. A fft3 holds work buffers, so it must
// not be shared between goroutines.
type fft3 struct {
	n    int
	plan *fourier.CmplxFFT
	line []complex128
}

func newFFT3(n int) *fft3 {
	return &fft3{n: n, plan: fourier.NewCmplxFFT(n), line: make([]complex128, n)}
}

// forward replaces data by its (unnormalized) Fourier coefficients.
func (f *fft3) forward(data []complex128) {
	f.apply(data, f.plan.Coefficients)
}

// inverse replaces the coefficients in data by the sequence they represent,
// so inverse(forward(x)) == x.
func (f *fft3) inverse(data []complex128) {
	f.apply(data, f.plan.Sequence)
	cmplxRealScale(data, 1/float64(len(data)))
}

func (f *fft3) apply(data []complex128, transform func(dst, src []complex128) []complex128) {
	n := f.n
	if len(data) != n*n*n {
		panic(fmt.Sprintf("3D FFT: data has %d elements, expected %d", len(data), n*n*n))
	}
	//z, contiguous
	for start := 0; start < len(data); start += n {
		l := data[start : start+n]
		transform(l, l)
	}
	//y and x
	for _, stride := range []int{n, n * n} {
		for base := 0; base < len(data); base++ {
			if (base/stride)%n != 0 {
				continue
			}
			for i := range f.line {
				f.line[i] = data[base+i*stride]
			}
			transform(f.line, f.line)
			for i, v := range f.line {
				data[base+i*stride] = v
			}
		}
	}
}

// angularFreq returns 2π times the frequency of FFT coefficient i of an n-point transform.
func angularFreq(plan *fourier.CmplxFFT, i int) float64 {
	return 2 * math.Pi * plan.Freq(i)
}

func cmplxMul(dst, a []complex128, b []float64) {
	if len(dst) != len(a) || len(a) != len(b) {
		panic(fmt.Sprintf("complex multiplication of slices: all slices should have the same len %d, %d, %d", len(dst), len(a), len(b)))
	}
	for i, v := range b {
		dst[i] = a[i] * complex(v, 0)
	}
}

func cmplxRealScale(dst []complex128, sc float64) []complex128 {
	for i, v := range dst {
		dst[i] = v * complex(sc, 0)
	}
	return dst
}

func toComplex(dst []complex128, src []float64) []complex128 {
	if len(dst) != len(src) {
		dst = make([]complex128, len(src))
	}
	for i, v := range src {
		dst[i] = complex(v, 0)
	}
	return dst
}
