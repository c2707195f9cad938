/*
 * assemble.go, part of goScatter.
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

// Package features turns scattering coefficients into fixed-order feature
// vectors and stores sets of them as compressed feature matrices.
package features

import (
	"math"
	"strings"
	"sync"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/harmonic"
)

// LogScale returns sign(c)·log(1+|c|).
func LogScale(c float64) float64 {
	return math.Copysign(math.Log1p(math.Abs(c)), c)
}

// InverseLogScale returns sign(x)·(exp(|x|)-1), the inverse of LogScale.
func InverseLogScale(x float64) float64 {
	return math.Copysign(math.Expm1(math.Abs(x)), x)
}

// Assemble returns the values of coeffs as a feature vector, in the canonical key order
// (order, channel, first scale, second scale, degree, power), log-scaled if useLogScale
// is true. It returns an InconsistentKeysError if coeffs is not in canonical order.
func Assemble(coeffs *harmonic.Coefficients, useLogScale bool) ([]float64, error) {
	if coeffs == nil {
		return nil, scatter.InconsistentKeysError("nil coefficients")
	}
	if len(coeffs.Keys) != len(coeffs.Values) {
		return nil, scatter.InconsistentKeysError("%d keys for %d values", len(coeffs.Keys), len(coeffs.Values))
	}
	for i := 1; i < len(coeffs.Keys); i++ {
		if !coeffs.Keys[i-1].Less(coeffs.Keys[i]) {
			return nil, scatter.InconsistentKeysError("key %v out of order", coeffs.Keys[i])
		}
	}
	ret := make([]float64, len(coeffs.Values))
	for i, v := range coeffs.Values {
		if useLogScale {
			v = LogScale(v)
		}
		ret[i] = v
	}
	return ret, nil
}

// Assembler assembles feature vectors for a whole dataset, checking that all of
// them have the key set of the first one. It is safe for concurrent use.
type Assembler struct {
	logScale bool
	mu       sync.Mutex
	ref      []harmonic.Key
}

// NewAssembler returns an Assembler with no reference key set.
func NewAssembler(useLogScale bool) *Assembler {
	return &Assembler{logScale: useLogScale}
}

// LogScale returns true if the assembler log-scales the features.
func (A *Assembler) LogScale() bool { return A.logScale }

// Assemble is like the Assemble function, but it also returns an InconsistentKeysError
// when the key set of coeffs differs from that of the first tensor assembled.
func (A *Assembler) Assemble(coeffs *harmonic.Coefficients) ([]float64, error) {
	ret, err := Assemble(coeffs, A.logScale)
	if err != nil {
		return nil, err
	}
	A.mu.Lock()
	defer A.mu.Unlock()
	if A.ref == nil {
		A.ref = append([]harmonic.Key(nil), coeffs.Keys...)
		return ret, nil
	}
	if len(A.ref) != len(coeffs.Keys) {
		return nil, scatter.InconsistentKeysError("%d coefficients, expected %d", len(coeffs.Keys), len(A.ref))
	}
	for i, k := range coeffs.Keys {
		if k != A.ref[i] {
			return nil, scatter.InconsistentKeysError("coefficient %d is %v, expected %v", i, k, A.ref[i])
		}
	}
	return ret, nil
}

// Keys returns a copy of the reference key set, nil if nothing has been assembled yet.
func (A *Assembler) Keys() []harmonic.Key {
	A.mu.Lock()
	defer A.mu.Unlock()
	if A.ref == nil {
		return nil
	}
	return append([]harmonic.Key(nil), A.ref...)
}

// Reset forgets the reference key set.
func (A *Assembler) Reset() {
	A.mu.Lock()
	A.ref = nil
	A.mu.Unlock()
}

// Names returns stable column names for the keys, such as "o1/c0/j1/l2/q0".
// If channels is given, channel indexes are replaced by channel names.
func Names(keys []harmonic.Key, channels ...[]string) []string {
	ret := make([]string, len(keys))
	for i, k := range keys {
		ret[i] = k.String()
		if len(channels) > 0 && k.Channel < len(channels[0]) {
			prefix, rest, _ := strings.Cut(ret[i], "/")
			_, rest, _ = strings.Cut(rest, "/")
			name := prefix + "/" + channels[0][k.Channel]
			if rest != "" {
				name += "/" + rest
			}
			ret[i] = name
		}
	}
	return ret
}
