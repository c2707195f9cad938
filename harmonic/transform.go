/*
 * transform.go, part of goScatter.
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

// Package harmonic computes 3D solid harmonic wavelet scattering coefficients
// of fields sampled on cubic grids. The coefficients are invariant to rotations
// of the field and, since they are integrals over the whole grid, to translations
// that keep it inside the grid.
package harmonic

import (
	"fmt"
	"math"
	"sort"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/density"
)

// Key identifies one scattering coefficient. For order 0 only Channel and Power
// are meaningful; for order 1, J2 is always 0. Power is an index into the
// integral powers of the Options used.
type Key struct {
	Order   int
	Channel int
	J1      int
	J2      int
	L       int
	Power   int
}

// Less orders keys by order, channel, first scale, second scale, degree and power.
func (k Key) Less(o Key) bool {
	a := [6]int{k.Order, k.Channel, k.J1, k.J2, k.L, k.Power}
	b := [6]int{o.Order, o.Channel, o.J1, o.J2, o.L, o.Power}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (k Key) String() string {
	switch k.Order {
	case 0:
		return fmt.Sprintf("o0/c%d/q%d", k.Channel, k.Power)
	case 1:
		return fmt.Sprintf("o1/c%d/j%d/l%d/q%d", k.Channel, k.J1, k.L, k.Power)
	default:
		return fmt.Sprintf("o2/c%d/j%d/j%d/l%d/q%d", k.Channel, k.J1, k.J2, k.L, k.Power)
	}
}

// Keys returns, in canonical order, the keys of the coefficients of a field with
// the given number of channels, for J scales, degrees up to L, and nPowers
// integral powers.
func Keys(channels, J, L, maxOrder, nPowers int) []Key {
	var keys []Key
	for c := 0; c < channels; c++ {
		for q := 0; q < nPowers; q++ {
			keys = append(keys, Key{Order: 0, Channel: c, Power: q})
		}
	}
	if maxOrder >= 1 {
		for c := 0; c < channels; c++ {
			for j := 0; j < J; j++ {
				for l := 0; l <= L; l++ {
					for q := 0; q < nPowers; q++ {
						keys = append(keys, Key{Order: 1, Channel: c, J1: j, L: l, Power: q})
					}
				}
			}
		}
	}
	if maxOrder >= 2 {
		for c := 0; c < channels; c++ {
			for j1 := 0; j1 < J; j1++ {
				for j2 := j1 + 1; j2 < J; j2++ {
					for l := 0; l <= L; l++ {
						for q := 0; q < nPowers; q++ {
							keys = append(keys, Key{Order: 2, Channel: c, J1: j1, J2: j2, L: l, Power: q})
						}
					}
				}
			}
		}
	}
	return keys
}

// NumCoefficients returns the number of coefficients Transform produces.
func NumCoefficients(channels, J, L, maxOrder, nPowers int) int {
	per := 1
	if maxOrder >= 1 {
		per += J * (L + 1)
	}
	if maxOrder >= 2 {
		per += J * (J - 1) / 2 * (L + 1)
	}
	return channels * nPowers * per
}

// Coefficients is the ordered set of scattering coefficients of one field.
type Coefficients struct {
	Keys   []Key
	Values []float64
	Powers []float64
}

// Len returns the number of coefficients.
func (C *Coefficients) Len() int { return len(C.Values) }

// Get returns the value for key k, and false if C has no such key.
func (C *Coefficients) Get(k Key) (float64, bool) {
	i := sort.Search(len(C.Keys), func(i int) bool { return !C.Keys[i].Less(k) })
	if i < len(C.Keys) && C.Keys[i] == k {
		return C.Values[i], true
	}
	return 0, false
}

// Transform returns the scattering coefficients of every channel of field, computed
// with bank. With options O (DefaultOptions if nil), for each channel f and power q:
// the order 0 coefficient is the sum of |f|^q, the order 1 coefficient for (j,l) is
// the sum of U1^q, with U1 = sqrt(Σ_m |f*ψ_{j,l,m}|²), and the order 2 coefficient
// for j1<j2 and l is the sum of U2^q, with U2 = sqrt(Σ_m |U1_{j1,l}*ψ_{j2,l,m}|²).
// Transform does not modify field or bank, and can be called concurrently.
func Transform(field *density.Field, bank *FilterBank, O *Options) (*Coefficients, error) {
	if O == nil {
		O = DefaultOptions()
	}
	if err := O.Check(); err != nil {
		return nil, err
	}
	if bank == nil {
		return nil, scatter.InvalidConfigError("nil filter bank")
	}
	if err := field.Check(); err != nil {
		return nil, err
	}
	if field.Size != bank.GridSize() {
		return nil, scatter.ShapeMismatchError("field grid size %d, filter bank grid size %d", field.Size, bank.GridSize())
	}
	powers := O.IntegralPowers()
	maxOrder := O.MaxOrder()
	keys := Keys(field.NChannels(), bank.J(), bank.L(), maxOrder, len(powers))
	C := &Coefficients{Keys: keys, Values: make([]float64, len(keys)), Powers: append([]float64(nil), powers...)}
	index := make(map[Key]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	w := newWorkspace(bank.GridSize())
	for c := range field.Data {
		w.channel(c, field.Channel(c), bank, maxOrder, powers, func(k Key, v float64) {
			C.Values[index[k]] = v
		})
	}
	return C, nil
}

// workspace holds the buffers for the transform of one channel.
type workspace struct {
	fft   *fft3
	spec  []complex128
	conv  []complex128
	modsq []float64
	first [][]float64 //U1 fields for [j*(L+1)+l]
}

func newWorkspace(n int) *workspace {
	n3 := n * n * n
	return &workspace{
		fft:   newFFT3(n),
		spec:  make([]complex128, n3),
		conv:  make([]complex128, n3),
		modsq: make([]float64, n3),
	}
}

func (w *workspace) channel(c int, f []float64, bank *FilterBank, maxOrder int, powers []float64, set func(Key, float64)) {
	for q, p := range powers {
		set(Key{Order: 0, Channel: c, Power: q}, integral(f, p))
	}
	if maxOrder < 1 {
		return
	}
	J, L := bank.J(), bank.L()
	w.spec = toComplex(w.spec, f)
	w.fft.forward(w.spec)
	if maxOrder >= 2 {
		w.first = make([][]float64, J*(L+1))
	}
	for j := 0; j < J; j++ {
		for l := 0; l <= L; l++ {
			u1 := w.modulus(w.spec, bank, j, l)
			for q, p := range powers {
				set(Key{Order: 1, Channel: c, J1: j, L: l, Power: q}, integral(u1, p))
			}
			if maxOrder >= 2 {
				w.first[j*(L+1)+l] = u1
			}
		}
	}
	if maxOrder < 2 {
		return
	}
	for j1 := 0; j1 < J; j1++ {
		for l := 0; l <= L; l++ {
			w.spec = toComplex(w.spec, w.first[j1*(L+1)+l])
			w.fft.forward(w.spec)
			for j2 := j1 + 1; j2 < J; j2++ {
				u2 := w.modulus(w.spec, bank, j2, l)
				for q, p := range powers {
					set(Key{Order: 2, Channel: c, J1: j1, J2: j2, L: l, Power: q}, integral(u2, p))
				}
			}
		}
	}
	w.first = nil
}

// modulus returns sqrt(Σ_m |x*ψ_{j,l,m}|²), for a field x given by its Fourier
// coefficients spec.
func (w *workspace) modulus(spec []complex128, bank *FilterBank, j, l int) []float64 {
	for i := range w.modsq {
		w.modsq[i] = 0
	}
	for m := -l; m <= l; m++ {
		cmplxMul(w.conv, spec, bank.Filter(j, l, m))
		w.fft.inverse(w.conv)
		for i, v := range w.conv {
			w.modsq[i] += real(v)*real(v) + imag(v)*imag(v)
		}
	}
	u := make([]float64, len(w.modsq))
	for i, v := range w.modsq {
		u[i] = math.Sqrt(v)
	}
	return u
}

// integral returns the sum of |x|^p.
func integral(x []float64, p float64) float64 {
	var s float64
	switch p {
	case 1:
		for _, v := range x {
			s += math.Abs(v)
		}
	case 2:
		for _, v := range x {
			s += v * v
		}
	default:
		for _, v := range x {
			s += math.Pow(math.Abs(v), p)
		}
	}
	return s
}
