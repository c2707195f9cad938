package harmonic

import (
	"math"
	"math/cmplx"
	"math/rand"
	"sync"
	"testing"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/density"
	"github.com/rmera/goscatter/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestAdditionTheorem(Te *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for l := 0; l <= 6; l++ {
		for trial := 0; trial < 20; trial++ {
			x, y, z := rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64()
			ylm := RealSphericalHarmonics(l, x, y, z, nil)
			require.Len(Te, ylm, 2*l+1)
			assert.InDelta(Te, float64(2*l+1)/(4*math.Pi), floats.Dot(ylm, ylm), 1e-12, "l=%d", l)
		}
	}
	// At the origin the z axis is used.
	pole := RealSphericalHarmonics(1, 0, 0, 1, nil)
	assert.Equal(Te, pole, RealSphericalHarmonics(1, 0, 0, 0, nil))
	assert.InDelta(Te, math.Sqrt(3/(4*math.Pi)), pole[1], 1e-12)
}

func TestWaveletNorm(Te *testing.T) {
	assert.InDelta(Te, math.Sqrt(4*math.Pi), waveletNorm(0), 1e-12)
	for l := 1; l < 6; l++ {
		assert.Greater(Te, waveletNorm(l), 0.0)
	}
	assert.Equal(Te, 15.0, doubleFactorial(5))
	assert.Equal(Te, 1.0, doubleFactorial(-1))
	assert.Equal(Te, 120.0, factorial(5))
}

func TestFFTRoundTrip(Te *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for _, n := range []int{1, 4, 5, 9} {
		data := make([]complex128, n*n*n)
		for i := range data {
			data[i] = complex(rnd.Float64(), rnd.Float64())
		}
		orig := append([]complex128(nil), data...)
		f := newFFT3(n)
		f.forward(data)
		f.inverse(data)
		for i := range data {
			require.InDelta(Te, 0, cmplx.Abs(data[i]-orig[i]), 1e-12, "n=%d", n)
		}
	}
}

func TestFFTAgainstDFT(Te *testing.T) {
	const n = 3
	rnd := rand.New(rand.NewSource(3))
	data := make([]complex128, n*n*n)
	for i := range data {
		data[i] = complex(rnd.Float64(), 0)
	}
	got := append([]complex128(nil), data...)
	newFFT3(n).forward(got)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			for c := 0; c < n; c++ {
				var want complex128
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						for k := 0; k < n; k++ {
							ph := -2 * math.Pi * float64(a*i+b*j+c*k) / n
							want += data[(i*n+j)*n+k] * cmplx.Exp(complex(0, ph))
						}
					}
				}
				assert.InDelta(Te, 0, cmplx.Abs(want-got[(a*n+b)*n+c]), 1e-12)
			}
		}
	}
}

func TestFilterBank(Te *testing.T) {
	B, err := BuildFilterBank(2, 2, 8)
	require.NoError(Te, err)
	assert.Equal(Te, 2, B.J())
	assert.Equal(Te, 2, B.L())
	assert.Equal(Te, 8, B.GridSize())
	assert.Equal(Te, 1.0, B.Sigma0())
	assert.Equal(Te, 2.0, B.Sigma(1))
	// Degree 0 is a unit-gain low pass, the rest vanish at zero frequency.
	assert.InDelta(Te, 1.0, B.Filter(0, 0, 0)[0], 1e-14)
	assert.Equal(Te, 0.0, B.Filter(1, 2, -1)[0])
	assert.Len(Te, B.Filter(1, 2, 2), 8*8*8)

	B2, err := BuildFilterBank(2, 2, 8, 1)
	require.NoError(Te, err)
	assert.True(Te, B.Equal(B2), "bank construction must be deterministic")
	B3, err := BuildFilterBank(2, 2, 8, 0.5)
	require.NoError(Te, err)
	assert.False(Te, B.Equal(B3))

	for _, c := range []struct{ j, l, n int }{{0, 1, 8}, {2, -1, 8}, {2, 1, 0}} {
		_, err = BuildFilterBank(c.j, c.l, c.n)
		assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)
	}
	_, err = BuildFilterBank(2, 1, 8, -1)
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)
}

func TestLazyBank(Te *testing.T) {
	lb := NewLazyBank(2, 1, 6, 1)
	banks := make([]*FilterBank, 8)
	var wg sync.WaitGroup
	for i := range banks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := lb.Get()
			assert.NoError(Te, err)
			banks[i] = b
		}(i)
	}
	wg.Wait()
	for _, b := range banks {
		assert.Same(Te, banks[0], b)
	}
	_, err := NewLazyBank(0, 1, 6, 1).Get()
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)
}

func TestKeys(Te *testing.T) {
	for _, c := range []struct{ ch, j, l, order, p int }{
		{2, 2, 1, 2, 1}, {1, 3, 2, 2, 3}, {3, 4, 0, 1, 2}, {1, 1, 3, 2, 1}, {2, 3, 2, 0, 2},
	} {
		keys := Keys(c.ch, c.j, c.l, c.order, c.p)
		assert.Len(Te, keys, NumCoefficients(c.ch, c.j, c.l, c.order, c.p))
		for i := 1; i < len(keys); i++ {
			require.True(Te, keys[i-1].Less(keys[i]), "%v before %v", keys[i-1], keys[i])
		}
	}
	assert.Equal(Te, 14, NumCoefficients(2, 2, 1, 2, 1))
	assert.Equal(Te, "o2/c1/j0/j2/l1/q0", Key{Order: 2, Channel: 1, J2: 2, L: 1}.String())
	assert.Equal(Te, "o1/c0/j1/l2/q1", Key{Order: 1, J1: 1, L: 2, Power: 1}.String())
}

func molecule(Te *testing.T) *scatter.Molecule {
	mol, err := scatter.MoleculeFromSlices("test", [][]float64{
		{0, 0, 0}, {1.2, 0.3, 0}, {-0.5, 0.9, 0.4},
	}, []float64{6, 8, 1})
	require.NoError(Te, err)
	return mol
}

func TestTransformScenario(Te *testing.T) {
	mol, err := scatter.MoleculeFromSlices("CH", [][]float64{{0, 0, 0}, {1.5, 0, 0}}, []float64{6, 1})
	require.NoError(Te, err)
	F, err := density.Encode(mol, 16, scatter.DefaultChannels(), 0.5)
	require.NoError(Te, err)
	B, err := BuildFilterBank(2, 1, 16)
	require.NoError(Te, err)
	C, err := Transform(F, B, nil)
	require.NoError(Te, err)
	require.Equal(Te, 14, C.Len())
	for i, v := range C.Values {
		assert.False(Te, math.IsNaN(v) || math.IsInf(v, 0), C.Keys[i].String())
		assert.GreaterOrEqual(Te, v, 0.0)
	}
	v, ok := C.Get(Key{Order: 0, Channel: 1})
	require.True(Te, ok)
	assert.InDelta(Te, F.Integral(1), v, 1e-9)
	_, ok = C.Get(Key{Order: 2, Channel: 0, J1: 1, J2: 0})
	assert.False(Te, ok)

	// Deterministic.
	C2, err := Transform(F, B, nil)
	require.NoError(Te, err)
	assert.Equal(Te, C.Values, C2.Values)

	O := DefaultOptions()
	O.MaxOrder(1)
	O.IntegralPowers([]float64{0.5, 1, 2})
	C3, err := Transform(F, B, O)
	require.NoError(Te, err)
	assert.Equal(Te, NumCoefficients(2, 2, 1, 1, 3), C3.Len())
	assert.Equal(Te, []float64{0.5, 1, 2}, C3.Powers)
	for i, k := range C3.Keys {
		if k.Power == 1 {
			k.Power = 0
			v, ok := C.Get(k)
			require.True(Te, ok)
			assert.InDelta(Te, v, C3.Values[i], 1e-12*math.Max(1, v))
		}
	}
}

func TestTransformErrors(Te *testing.T) {
	F, err := density.Encode(molecule(Te), 8, scatter.DefaultChannels(), 1)
	require.NoError(Te, err)
	B, err := BuildFilterBank(2, 1, 10)
	require.NoError(Te, err)
	_, err = Transform(F, B, nil)
	assert.ErrorIs(Te, err, scatter.ErrShapeMismatch)

	B, err = BuildFilterBank(2, 1, 8)
	require.NoError(Te, err)
	O := DefaultOptions()
	O.MaxOrder(3)
	_, err = Transform(F, B, O)
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)
	O = DefaultOptions()
	O.IntegralPowers([]float64{1, -2})
	_, err = Transform(F, B, O)
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)

	F.Data[1] = F.Data[1][:7]
	_, err = Transform(F, B, nil)
	assert.ErrorIs(Te, err, scatter.ErrShapeMismatch)
}

func relErr(a, b []float64) float64 {
	return floats.Distance(a, b, 2) / floats.Norm(a, 2)
}

func transformOf(Te *testing.T, mol *scatter.Molecule, E *density.Encoder, B *FilterBank) []float64 {
	F, err := E.Encode(mol)
	require.NoError(Te, err)
	C, err := Transform(F, B, nil)
	require.NoError(Te, err)
	return C.Values
}

func TestLatticeRotationInvariance(Te *testing.T) {
	mol := molecule(Te)
	E := &density.Encoder{GridSize: 17, Sigma: 1, Spacing: 1, Channels: scatter.DefaultChannels(), Center: density.CenterCharge}
	B, err := BuildFilterBank(3, 2, 17)
	require.NoError(Te, err)
	ref := transformOf(Te, mol, E, B)
	rotations := []*mat.Dense{
		mat.NewDense(3, 3, []float64{0, -1, 0, 1, 0, 0, 0, 0, 1}),  //90° around z
		mat.NewDense(3, 3, []float64{1, 0, 0, 0, 0, -1, 0, 1, 0}),  //90° around x
		mat.NewDense(3, 3, []float64{0, 0, 1, 1, 0, 0, 0, 1, 0}),   //axis permutation
		mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -1, 0, 0, 0, 1}), //180° around z
	}
	for r, rot := range rotations {
		got := transformOf(Te, mol.Rotated(rot), E, B)
		for i := range ref {
			assert.InDelta(Te, ref[i], got[i], 1e-9*math.Max(1, math.Abs(ref[i])), "rotation %d coefficient %d", r, i)
		}
	}
}

func TestArbitraryRotationInvariance(Te *testing.T) {
	if testing.Short() {
		Te.Skip("large grid")
	}
	mol := molecule(Te)
	E := &density.Encoder{GridSize: 45, Sigma: 2, Spacing: 1, Channels: []scatter.Channel{scatter.FullChannel()}, Center: density.CenterCharge}
	B, err := BuildFilterBank(2, 2, 45)
	require.NoError(Te, err)
	ref := transformOf(Te, mol, E, B)
	rot, err := scatter.RotationMatrix([]float64{1, 2, -0.5}, 0.7)
	require.NoError(Te, err)
	got := transformOf(Te, mol.Rotated(rot), E, B)
	assert.Less(Te, relErr(ref, got), 1e-3)
	for i := range ref {
		assert.InDelta(Te, ref[i], got[i], 1e-3*math.Abs(ref[i]), "coefficient %d", i)
	}
}

func TestTranslationInvariance(Te *testing.T) {
	mol := molecule(Te)
	E := &density.Encoder{GridSize: 25, Sigma: 0.8, Spacing: 1, Channels: scatter.DefaultChannels(), Center: density.CenterNone}
	B, err := BuildFilterBank(2, 2, 25)
	require.NoError(Te, err)
	ref := transformOf(Te, mol, E, B)
	shift, _ := v3.NewMatrix([]float64{2, -1, 3})
	got := transformOf(Te, mol.Translated(shift), E, B)
	for i := range ref {
		assert.InDelta(Te, ref[i], got[i], 1e-8*math.Max(1, math.Abs(ref[i])), "coefficient %d", i)
	}
	// With centering, any translation gives the same field.
	E.Center = density.CenterCharge
	ref = transformOf(Te, mol, E, B)
	shift, _ = v3.NewMatrix([]float64{0.37, -1.91, 2.2})
	got = transformOf(Te, mol.Translated(shift), E, B)
	assert.InDeltaSlice(Te, ref, got, 1e-9*floats.Max(ref))
}
