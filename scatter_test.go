package scatter

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rmera/goscatter/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func water(Te *testing.T) *Molecule {
	mol, err := MoleculeFromSlices("water", [][]float64{
		{0, 0, 0.1173},
		{0, 0.7572, -0.4692},
		{0, -0.7572, -0.4692},
	}, []float64{8, 1, 1})
	require.NoError(Te, err)
	return mol
}

func TestMoleculeInvariants(Te *testing.T) {
	_, err := MoleculeFromSlices("bad", [][]float64{{0, 0, 0}, {1, 0, 0}}, []float64{6})
	assert.True(Te, errors.Is(err, ErrInvalidMolecule))

	_, err = MoleculeFromSlices("empty", nil, nil)
	assert.ErrorIs(Te, err, ErrInvalidMolecule)

	_, err = MoleculeFromSlices("nan", [][]float64{{math.NaN(), 0, 0}}, []float64{6})
	assert.ErrorIs(Te, err, ErrInvalidMolecule)

	_, err = MoleculeFromSlices("neg", [][]float64{{0, 0, 0}}, []float64{-1})
	assert.ErrorIs(Te, err, ErrInvalidMolecule)

	_, err = MoleculeFromSlices("inf", [][]float64{{0, 0, 0}}, []float64{math.Inf(1)})
	assert.ErrorIs(Te, err, ErrInvalidMolecule)

	mol := water(Te)
	assert.Equal(Te, 3, mol.Len())
	assert.Equal(Te, 10.0, mol.TotalCharge())
	assert.Equal(Te, []string{"O", "H", "H"}, mol.Symbols())
	q := mol.Charges()
	q[0] = 100
	assert.Equal(Te, 8.0, mol.Charge(0), "accessors must return copies")
}

func TestErrorDecoration(Te *testing.T) {
	err := InvalidConfigError("grid size %d", -1)
	assert.True(Te, err.Critical())
	wrapped := DecorateError(err, "Encode")
	assert.ErrorIs(Te, wrapped, ErrInvalidConfig)
	assert.Equal(Te, []string{"Encode"}, err.Decorate(""))
	assert.Contains(Te, wrapped.Error(), "grid size -1")
	assert.Contains(Te, wrapped.Error(), "Encode")
	plain := DecorateError(errors.New("boom"), "Run")
	assert.EqualError(Te, plain, "Run: boom")
	assert.Nil(Te, DecorateError(nil, "Run"))
}

func TestValenceCore(Te *testing.T) {
	for _, c := range []struct{ z, valence float64 }{
		{1, 1}, {2, 2}, {6, 4}, {7, 5}, {8, 6}, {10, 8}, {16, 6}, {17, 7},
	} {
		assert.Equal(Te, c.valence, Valence(c.z), "Z=%g", c.z)
		assert.Equal(Te, c.z-c.valence, Core(c.z), "Z=%g", c.z)
	}
	z, ok := SymbolToZ("cl")
	assert.True(Te, ok)
	assert.Equal(Te, 17.0, z)
	assert.Equal(Te, "S", ZToSymbol(16))
	assert.Equal(Te, "X", ZToSymbol(6.5))
	_, ok = Mass(200)
	assert.False(Te, ok)
}

func TestChannels(Te *testing.T) {
	chans, err := ParseChannels("full,valence", "core", "count", "element:H", "element:8")
	require.NoError(Te, err)
	require.Len(Te, chans, 6)
	assert.Equal(Te, []string{"full", "valence", "core", "count", "element:1", "element:8"}, ChannelNames(chans))
	assert.Equal(Te, 6.0, chans[0].Weight(6))
	assert.Equal(Te, 4.0, chans[1].Weight(6))
	assert.Equal(Te, 2.0, chans[2].Weight(6))
	assert.Equal(Te, 0.0, chans[2].Weight(1))
	assert.Equal(Te, 1.0, chans[3].Weight(6))
	assert.Equal(Te, 1.0, chans[4].Weight(1))
	assert.Equal(Te, 0.0, chans[4].Weight(6))

	_, err = ParseChannels("full,bogus")
	assert.ErrorIs(Te, err, ErrInvalidConfig)
	_, err = ParseChannels("full", "full")
	assert.ErrorIs(Te, err, ErrInvalidConfig)
	_, err = ParseChannels("")
	assert.ErrorIs(Te, err, ErrInvalidConfig)
}

const twoFrames = `3
id=w1 energy=-76.4
O 0.0 0.0 0.1173
H 0.0 0.7572 -0.4692
1 0.0 -0.7572 -0.4692

2
-1.5 some comment
C 0 0 0
H 1.5 0 0
`

func TestReadXYZ(Te *testing.T) {
	mols, targets, err := ReadXYZ(strings.NewReader(twoFrames), "")
	require.NoError(Te, err)
	require.Len(Te, mols, 2)
	assert.Equal(Te, "w1", mols[0].ID())
	assert.Equal(Te, "1", mols[1].ID())
	assert.Equal(Te, []float64{8, 1, 1}, mols[0].Charges())
	assert.Equal(Te, []float64{-76.4, -1.5}, targets)
	assert.InDelta(Te, 1.5, mols[1].Position(1)[0], 1e-12)

	_, targets, err = ReadXYZ(strings.NewReader(twoFrames), "homo")
	require.NoError(Te, err)
	assert.True(Te, math.IsNaN(targets[0]))

	_, _, err = ReadXYZ(strings.NewReader("2\n\nC 0 0 0\n"), "")
	assert.Error(Te, err)
	_, _, err = ReadXYZ(strings.NewReader("1\n\nQq 0 0 0\n"), "")
	assert.Error(Te, err)
}

func TestWriteXYZRoundTrip(Te *testing.T) {
	mol := water(Te)
	var buf bytes.Buffer
	require.NoError(Te, WriteXYZ(&buf, mol, -76.4))
	mols, targets, err := ReadXYZ(&buf, "")
	require.NoError(Te, err)
	require.Len(Te, mols, 1)
	assert.Equal(Te, "water", mols[0].ID())
	assert.Equal(Te, -76.4, targets[0])
	for i := 0; i < mol.Len(); i++ {
		assert.InDeltaSlice(Te, mol.Position(i), mols[0].Position(i), 1e-6)
	}
}

func TestGeometry(Te *testing.T) {
	mol := water(Te)
	coc := mol.CenterOfCharge()
	centered := mol.Centered(coc)
	zero := centered.CenterOfCharge()
	assert.InDeltaSlice(Te, []float64{0, 0, 0}, zero.Vec(0), 1e-12)
	_, err := mol.CenterOfMass()
	require.NoError(Te, err)

	shift, _ := v3.NewMatrix([]float64{1, 2, 3})
	moved := mol.Translated(shift)
	assert.InDeltaSlice(Te, []float64{1, 2, 3.1173}, moved.Position(0), 1e-12)
	assert.InDeltaSlice(Te, []float64{0, 0, 0.1173}, mol.Position(0), 1e-12, "original unchanged")

	rot, err := RotationMatrix([]float64{0, 0, 1}, math.Pi/2)
	require.NoError(Te, err)
	x, err := MoleculeFromSlices("x", [][]float64{{1, 0, 0}}, []float64{1})
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{0, 1, 0}, x.Rotated(rot).Position(0), 1e-12)
	var rtr mat.Dense
	rtr.Mul(rot.T(), rot)
	assert.True(Te, mat.EqualApprox(&rtr, eye3(), 1e-12))

	d, err := MinDistance(mol)
	require.NoError(Te, err)
	assert.InDelta(Te, math.Hypot(0.7572, 0.1173+0.4692), d, 1e-12)
	d2, err := MinDistance(mol.Scaled(2))
	require.NoError(Te, err)
	assert.InDelta(Te, 2*d, d2, 1e-12)
	_, err = MinDistance(x)
	assert.ErrorIs(Te, err, ErrInvalidMolecule)
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func TestWeightedCenter(Te *testing.T) {
	mol, err := MoleculeFromSlices("CH", [][]float64{{0, 0, 0}, {1.5, 0, 0}}, []float64{6, 1})
	require.NoError(Te, err)
	var coc, geo *v3.Matrix
	require.NotPanics(Te, func() {
		coc = mol.CenterOfCharge()
		geo = mol.GeometricCenter()
	})
	assert.InDeltaSlice(Te, []float64{1.5 / 7, 0, 0}, coc.Vec(0), 1e-12)
	assert.InDeltaSlice(Te, []float64{0.75, 0, 0}, geo.Vec(0), 1e-12)
	com, err := mol.CenterOfMass()
	require.NoError(Te, err)
	mc, _ := Mass(6)
	mh, _ := Mass(1)
	assert.InDelta(Te, 1.5*mh/(mc+mh), com.At(0, 0), 1e-12)

	_, err = WeightedCenter(mol.Coords(), []float64{1})
	assert.ErrorIs(Te, err, ErrDimensionMismatch)
	_, err = WeightedCenter(mol.Coords(), []float64{1, -1})
	assert.ErrorIs(Te, err, ErrInvalidMolecule)
}
