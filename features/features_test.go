package features

import (
	"bytes"
	"math"
	"path/filepath"
	"sync"
	"testing"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/harmonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coefficients(channels int) *harmonic.Coefficients {
	keys := harmonic.Keys(channels, 2, 1, 2, 1)
	C := &harmonic.Coefficients{Keys: keys, Values: make([]float64, len(keys)), Powers: []float64{1}}
	for i := range C.Values {
		C.Values[i] = float64(i*i) - 3
	}
	return C
}

func TestLogScale(Te *testing.T) {
	for _, c := range []float64{0, 1e-12, 0.5, 3, -7.25, 1e6, -1e-3} {
		assert.InDelta(Te, c, InverseLogScale(LogScale(c)), 1e-9*math.Max(1, math.Abs(c)))
		assert.Equal(Te, math.Signbit(c), math.Signbit(LogScale(c)))
	}
	assert.Equal(Te, 0.0, LogScale(0))
	assert.InDelta(Te, math.Log(2), LogScale(1), 1e-15)
}

func TestAssemble(Te *testing.T) {
	C := coefficients(2)
	v, err := Assemble(C, false)
	require.NoError(Te, err)
	assert.Equal(Te, C.Values, v)
	v[0] = 1000
	assert.NotEqual(Te, 1000.0, C.Values[0], "Assemble must copy")

	lv, err := Assemble(C, true)
	require.NoError(Te, err)
	for i := range lv {
		assert.InDelta(Te, LogScale(C.Values[i]), lv[i], 1e-15)
	}

	C.Keys[1], C.Keys[2] = C.Keys[2], C.Keys[1]
	_, err = Assemble(C, false)
	assert.ErrorIs(Te, err, scatter.ErrInconsistentKeys)
	_, err = Assemble(nil, false)
	assert.ErrorIs(Te, err, scatter.ErrInconsistentKeys)
}

func TestAssemblerConsistency(Te *testing.T) {
	A := NewAssembler(true)
	assert.Nil(Te, A.Keys())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := A.Assemble(coefficients(2))
			assert.NoError(Te, err)
		}()
	}
	wg.Wait()
	assert.Equal(Te, harmonic.Keys(2, 2, 1, 2, 1), A.Keys())
	_, err := A.Assemble(coefficients(3))
	assert.ErrorIs(Te, err, scatter.ErrInconsistentKeys)
	other := coefficients(2)
	other.Keys[len(other.Keys)-1].L = 5
	_, err = A.Assemble(other)
	assert.ErrorIs(Te, err, scatter.ErrInconsistentKeys)
	A.Reset()
	_, err = A.Assemble(coefficients(3))
	assert.NoError(Te, err)
}

func TestNames(Te *testing.T) {
	keys := harmonic.Keys(2, 2, 1, 2, 1)
	names := Names(keys)
	assert.Equal(Te, "o0/c0/q0", names[0])
	assert.Equal(Te, "o2/c1/j0/j1/l1/q0", names[len(names)-1])
	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(Te, seen[n], n)
		seen[n] = true
	}
	named := Names(keys, []string{"full", "valence"})
	assert.Equal(Te, "o0/full/q0", named[0])
	assert.Equal(Te, "o2/valence/j0/j1/l1/q0", named[len(named)-1])
}

func sampleMatrix() *Matrix {
	return &Matrix{
		Names:   []string{"o0/c0/q0", "o1/c0/j0/l0/q0"},
		IDs:     []string{"a", "b", "c"},
		Rows:    [][]float64{{1, 2}, {math.Pi, -1e-300}, {0, 1e300}},
		Targets: []float64{-1.5, math.NaN(), 3},
		Meta:    map[string]string{"grid_size": "16", "channels": "full,valence"},
	}
}

func TestMatrixRoundTrip(Te *testing.T) {
	M := sampleMatrix()
	var buf bytes.Buffer
	require.NoError(Te, WriteMatrix(&buf, M))
	R, err := ReadMatrix(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, M.Names, R.Names)
	assert.Equal(Te, M.IDs, R.IDs)
	assert.Equal(Te, M.Rows, R.Rows)
	assert.Equal(Te, M.Meta, R.Meta)
	assert.Equal(Te, -1.5, R.Targets[0])
	assert.True(Te, math.IsNaN(R.Targets[1]))
	assert.Equal(Te, []int{0, 2}, R.Labeled())
	S := R.Subset(R.Labeled())
	r, c := S.Dims()
	assert.Equal(Te, 2, r)
	assert.Equal(Te, 2, c)
	assert.Equal(Te, []string{"a", "c"}, S.IDs)

	name := filepath.Join(Te.TempDir(), "features.zst")
	require.NoError(Te, SaveMatrix(name, M, 3))
	L, err := LoadMatrix(name)
	require.NoError(Te, err)
	assert.Equal(Te, M.Rows, L.Rows)
}

func TestMatrixErrors(Te *testing.T) {
	M := sampleMatrix()
	M.Rows[1] = M.Rows[1][:1]
	assert.ErrorIs(Te, WriteMatrix(&bytes.Buffer{}, M), scatter.ErrDimensionMismatch)
	M = sampleMatrix()
	M.Targets = M.Targets[:2]
	assert.ErrorIs(Te, M.Check(), scatter.ErrDimensionMismatch)
	_, err := ReadMatrix(bytes.NewReader([]byte("not zstd at all")))
	assert.Error(Te, err)
	_, err = LoadMatrix(filepath.Join(Te.TempDir(), "missing.zst"))
	assert.Error(Te, err)
}
