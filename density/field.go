/*
 * field.go, part of goScatter.
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

package density

import (
	"math"

	"gonum.org/v1/gonum/floats"

	scatter "github.com/rmera/goscatter"
)

// Field is a set of scalar fields sampled on the same cubic grid, one per channel.
// Data[c] holds Size³ values in row-major order: x varies slowest, z fastest.
// Grid point (i,j,k) sits at ((i-Size/2)·Spacing, (j-Size/2)·Spacing, (k-Size/2)·Spacing).
type Field struct {
	Channels []string
	Size     int
	Spacing  float64
	Data     [][]float64
}

// NewField returns a zero field with one channel per name.
func NewField(names []string, size int, spacing float64) *Field {
	F := &Field{Channels: append([]string(nil), names...), Size: size, Spacing: spacing}
	F.Data = make([][]float64, len(names))
	for c := range F.Data {
		F.Data[c] = make([]float64, size*size*size)
	}
	return F
}

// NChannels returns the number of channels in the field.
func (F *Field) NChannels() int { return len(F.Data) }

// Index returns the position of grid point (i,j,k) in each channel slice.
func (F *Field) Index(i, j, k int) int {
	return (i*F.Size+j)*F.Size + k
}

// At returns the value of channel c at grid point (i,j,k).
func (F *Field) At(c, i, j, k int) float64 {
	return F.Data[c][F.Index(i, j, k)]
}

// Coordinate returns the position along one axis of the grid index i.
func (F *Field) Coordinate(i int) float64 {
	return float64(i-F.Size/2) * F.Spacing
}

// Channel returns the data of channel c. It is not a copy.
func (F *Field) Channel(c int) []float64 { return F.Data[c] }

// Integral returns the sum of channel c over the grid, which, for a molecule
// well inside the grid, is the total weight of the channel.
func (F *Field) Integral(c int) float64 {
	return floats.Sum(F.Data[c])
}

// Check returns a ShapeMismatchError if the data does not agree with the
// declared number of channels and grid size.
func (F *Field) Check() error {
	if F.Size < 1 {
		return scatter.ShapeMismatchError("field grid size %d", F.Size)
	}
	if len(F.Channels) != len(F.Data) {
		return scatter.ShapeMismatchError("field has %d channel names but %d channels", len(F.Channels), len(F.Data))
	}
	n := F.Size * F.Size * F.Size
	for c, d := range F.Data {
		if len(d) != n {
			return scatter.ShapeMismatchError("channel %d has %d values, expected %d", c, len(d), n)
		}
	}
	return nil
}

// IsFinite returns false if any value of the field is NaN or infinite.
func (F *Field) IsFinite() bool {
	for _, d := range F.Data {
		for _, v := range d {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
