/*
 * encoder.go, part of goScatter.
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

// Package density places molecules on a regular grid as sums of normalized
// Gaussians centered on the atoms, one grid per charge channel.
package density

import (
	"math"
	"strings"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/v3"
)

// Centering policies.
const (
	CenterCharge    = "charge"
	CenterMass      = "mass"
	CenterGeometric = "geometric"
	CenterNone      = "none"
)

// Encoder turns molecules into Fields. Sigma and Spacing are in the units of the
// molecule coordinates. An Encoder is not modified by Encode, so one value can be
// shared by many goroutines.
type Encoder struct {
	GridSize int
	Sigma    float64
	Spacing  float64
	Channels []scatter.Channel
	Center   string
}

// DefaultEncoder returns an Encoder with unit spacing, the full and valence
// channels, and centering on the nuclear charge.
func DefaultEncoder(gridSize int, sigma float64) *Encoder {
	return &Encoder{
		GridSize: gridSize,
		Sigma:    sigma,
		Spacing:  1,
		Channels: scatter.DefaultChannels(),
		Center:   CenterCharge,
	}
}

// Check returns an InvalidConfigError if the encoder cannot be used.
func (E *Encoder) Check() error {
	switch {
	case E.GridSize < 1:
		return scatter.InvalidConfigError("grid size must be positive, got %d", E.GridSize)
	case !(E.Sigma > 0) || math.IsInf(E.Sigma, 0):
		return scatter.InvalidConfigError("sigma must be positive and finite, got %g", E.Sigma)
	case !(E.Spacing > 0) || math.IsInf(E.Spacing, 0):
		return scatter.InvalidConfigError("grid spacing must be positive and finite, got %g", E.Spacing)
	case len(E.Channels) == 0:
		return scatter.InvalidConfigError("no charge channels")
	}
	switch strings.ToLower(E.Center) {
	case CenterCharge, CenterMass, CenterGeometric, CenterNone, "":
	default:
		return scatter.InvalidConfigError("unknown centering policy %q", E.Center)
	}
	return nil
}

// Encode returns the field of mol on a gridSize³ grid of unit spacing, with one
// channel per element of channels and Gaussians of width sigma. The molecule is
// centered on its nuclear charge first.
func Encode(mol *scatter.Molecule, gridSize int, channels []scatter.Channel, sigma float64) (*Field, error) {
	E := &Encoder{GridSize: gridSize, Sigma: sigma, Spacing: 1, Channels: channels, Center: CenterCharge}
	return E.Encode(mol)
}

// Encode returns the field of mol. Each atom adds w·g(x) to every channel where its
// weight w is not zero, where g is a normalized 3D Gaussian of width Sigma centered
// on the atom. Values are non-negative and each channel sums to approximately its
// total weight. It returns an InvalidConfigError for a bad Encoder and an
// InvalidMoleculeError for a bad molecule.
func (E *Encoder) Encode(mol *scatter.Molecule) (*Field, error) {
	if err := E.Check(); err != nil {
		return nil, err
	}
	if mol == nil {
		return nil, scatter.InvalidMoleculeError("nil molecule")
	}
	if err := mol.Check(); err != nil {
		return nil, err
	}
	coords, err := E.centered(mol)
	if err != nil {
		return nil, err
	}
	n := E.GridSize
	F := NewField(scatter.ChannelNames(E.Channels), n, E.Spacing)
	sigma := E.Sigma / E.Spacing
	norm := 1 / (math.Pow(2*math.Pi, 1.5) * sigma * sigma * sigma)
	gx := make([]float64, n)
	gy := make([]float64, n)
	gz := make([]float64, n)
	weights := make([]float64, len(E.Channels))
	for a := 0; a < mol.Len(); a++ {
		q := mol.Charge(a)
		contributes := false
		for c, ch := range E.Channels {
			weights[c] = ch.Weight(q)
			if weights[c] != 0 {
				contributes = true
			}
		}
		if !contributes {
			continue
		}
		p := coords.Vec(a)
		gaussian1D(gx, p[0]/E.Spacing, sigma)
		gaussian1D(gy, p[1]/E.Spacing, sigma)
		gaussian1D(gz, p[2]/E.Spacing, sigma)
		for c, w := range weights {
			if w == 0 {
				continue
			}
			addSeparable(F.Data[c], gx, gy, gz, w*norm)
		}
	}
	return F, nil
}

func (E *Encoder) centered(mol *scatter.Molecule) (*v3.Matrix, error) {
	switch strings.ToLower(E.Center) {
	case CenterNone:
		return mol.Coords(), nil
	case CenterGeometric:
		return mol.Centered(mol.GeometricCenter()).Coords(), nil
	case CenterMass:
		com, err := mol.CenterOfMass()
		if err != nil {
			return nil, err
		}
		return mol.Centered(com).Coords(), nil
	default:
		return mol.Centered(mol.CenterOfCharge()).Coords(), nil
	}
}

// gaussian1D fills dst with exp(-(i-n/2-x)²/(2σ²)), for a position x in grid units.
func gaussian1D(dst []float64, x, sigma float64) {
	half := len(dst) / 2
	den := 2 * sigma * sigma
	for i := range dst {
		d := float64(i-half) - x
		dst[i] = math.Exp(-d * d / den)
	}
}

// addSeparable adds scale·gx[i]·gy[j]·gz[k] to every point (i,j,k) of data.
func addSeparable(data, gx, gy, gz []float64, scale float64) {
	n := len(gx)
	for i, x := range gx {
		xv := scale * x
		if xv == 0 {
			continue
		}
		for j, y := range gy {
			xy := xv * y
			if xy == 0 {
				continue
			}
			row := data[(i*n+j)*n : (i*n+j+1)*n]
			for k, z := range gz {
				row[k] += xy * z
			}
		}
	}
}

// PositionScale returns the factor by which all the positions in mols must be
// multiplied so that, for Gaussians of width sigma, the two closest atoms in the
// dataset overlap by precision, a number in (0,1).
func PositionScale(mols []*scatter.Molecule, sigma, precision float64) (float64, error) {
	if !(precision > 0 && precision < 1) {
		return 0, scatter.InvalidConfigError("overlap precision must be in (0,1), got %g", precision)
	}
	if !(sigma > 0) {
		return 0, scatter.InvalidConfigError("sigma must be positive, got %g", sigma)
	}
	min, err := scatter.MinDistance(mols...)
	if err != nil {
		return 0, err
	}
	if min == 0 {
		return 0, scatter.InvalidMoleculeError("two atoms share the same position")
	}
	return sigma * math.Sqrt(-8*math.Log(precision)) / min, nil
}
