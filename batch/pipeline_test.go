package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/density"
	"github.com/rmera/goscatter/features"
	"github.com/rmera/goscatter/harmonic"
	"github.com/rmera/goscatter/internal/metrics"
	"github.com/rmera/goscatter/regress"
)

// diatomics returns n C-H molecules with bond lengths from 1.0 to 1.0+0.1(n-1).
func diatomics(Te *testing.T, n int) []*scatter.Molecule {
	mols := make([]*scatter.Molecule, n)
	for i := range mols {
		var err error
		d := 1.0 + 0.1*float64(i)
		mols[i], err = scatter.MoleculeFromSlices(fmt.Sprintf("ch%d", i), [][]float64{{0, 0, 0}, {d, 0.05 * float64(i), 0}}, []float64{6, 1})
		require.NoError(Te, err)
	}
	return mols
}

func newPipeline() *Pipeline {
	return &Pipeline{
		Encoder:   density.DefaultEncoder(16, 0.5),
		Bank:      harmonic.NewLazyBank(2, 1, 16, 1),
		Assembler: features.NewAssembler(true),
		Workers:   3,
		BatchSize: 4,
	}
}

func TestPipelineScenario(Te *testing.T) {
	mols := diatomics(Te, 10)
	P := newPipeline()
	P.Metrics = metrics.New()
	R, err := P.Run(context.Background(), mols)
	require.NoError(Te, err)
	require.Empty(Te, R.Failures)
	require.Len(Te, R.Keys, 14)
	for i, row := range R.Features {
		require.Len(Te, row, 14, "row %d", i)
	}
	assert.Equal(Te, 10.0, testutil.ToFloat64(P.Metrics.MoleculesTotal.WithLabelValues(metrics.StatusOK)))

	// A target that is linear in the features is fitted exactly.
	y := make([]float64, len(mols))
	scale := 0.0
	for i, row := range R.Features {
		for k, v := range row {
			y[i] += float64(k+1) * v
		}
		scale = math.Max(scale, math.Abs(y[i]))
	}
	M, err := R.Matrix(mols, y, scatter.ChannelNames(P.Encoder.Channels))
	require.NoError(Te, err)
	assert.Equal(Te, "o0/full/q0", M.Names[0])
	assert.Equal(Te, "ch3", M.IDs[3])
	model, err := regress.Fit(M.Rows, M.Targets, regress.OLS, regress.Hyperparams{})
	require.NoError(Te, err)
	pred, err := model.Predict(M.Rows)
	require.NoError(Te, err)
	assert.Less(Te, regress.RMSE(pred, y), 1e-6*scale)
}

func TestPipelineOrdering(Te *testing.T) {
	mols := diatomics(Te, 7)
	P := newPipeline()
	P.BatchSize = 3
	P.Workers = 2
	R, err := P.Run(context.Background(), mols)
	require.NoError(Te, err)

	bank, err := P.Bank.Get()
	require.NoError(Te, err)
	for i, mol := range mols {
		F, err := P.Encoder.Encode(mol)
		require.NoError(Te, err)
		C, err := harmonic.Transform(F, bank, nil)
		require.NoError(Te, err)
		want, err := features.Assemble(C, true)
		require.NoError(Te, err)
		assert.Equal(Te, want, R.Features[i], "molecule %d", i)
	}
}

// oxygenBomb is a channel that panics on oxygen atoms.
type oxygenBomb struct{}

func (oxygenBomb) Name() string { return "bomb" }

func (oxygenBomb) Weight(charge float64) float64 {
	if charge == 8 {
		panic("oxygen")
	}
	return charge
}

func TestPipelinePanicIsolation(Te *testing.T) {
	mols := diatomics(Te, 4)
	co, err := scatter.MoleculeFromSlices("co", [][]float64{{0, 0, 0}, {1.13, 0, 0}}, []float64{6, 8})
	require.NoError(Te, err)
	mols[1] = co

	P := newPipeline()
	P.Encoder.Channels = []scatter.Channel{oxygenBomb{}}
	var R *Result
	require.NotPanics(Te, func() {
		R, err = P.Run(context.Background(), mols)
	})
	require.NoError(Te, err)
	require.Len(Te, R.Failures, 1)
	assert.Equal(Te, 1, R.Failures[0].Index)
	assert.Contains(Te, R.Failures[0].Error(), "oxygen")
	assert.Equal(Te, []int{0, 2, 3}, R.Succeeded())
}

func TestPipelineFailureIsolation(Te *testing.T) {
	mols := diatomics(Te, 5)
	// No tabulated mass for mercury.
	hg, err := scatter.MoleculeFromSlices("hg", [][]float64{{0, 0, 0}}, []float64{80})
	require.NoError(Te, err)
	mols[2] = hg

	P := newPipeline()
	P.Encoder.Center = density.CenterMass
	P.Metrics = metrics.New()
	R, err := P.Run(context.Background(), mols)
	require.NoError(Te, err)
	require.Len(Te, R.Failures, 1)
	f := R.Failures[0]
	assert.Equal(Te, 2, f.Index)
	assert.Equal(Te, "hg", f.ID)
	assert.True(Te, errors.Is(f, scatter.ErrInvalidMolecule))
	assert.Nil(Te, R.Features[2])
	assert.Equal(Te, []int{0, 1, 3, 4}, R.Succeeded())
	assert.Equal(Te, 1.0, testutil.ToFloat64(P.Metrics.MoleculesTotal.WithLabelValues(metrics.StatusFailed)))

	M, err := R.Matrix(mols, nil, nil)
	require.NoError(Te, err)
	assert.Equal(Te, []string{"ch0", "ch1", "ch3", "ch4"}, M.IDs)
	assert.True(Te, math.IsNaN(M.Targets[0]))
}

func TestPipelineAbortOnError(Te *testing.T) {
	mols := diatomics(Te, 4)
	mols[1] = nil
	P := newPipeline()
	P.AbortOnError = true
	R, err := P.Run(context.Background(), mols)
	require.Error(Te, err)
	assert.Nil(Te, R)
	assert.True(Te, IsMoleculeError(err))
	assert.True(Te, errors.Is(err, scatter.ErrInvalidMolecule))
}

func TestPipelineCanceled(Te *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline().Run(ctx, diatomics(Te, 3))
	assert.ErrorIs(Te, err, context.Canceled)
}

func TestPipelineConfigErrors(Te *testing.T) {
	mols := diatomics(Te, 2)
	P := newPipeline()
	P.Bank = harmonic.NewLazyBank(2, 1, 12, 1)
	_, err := P.Run(context.Background(), mols)
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)

	P = newPipeline()
	P.Bank = harmonic.NewLazyBank(0, 1, 16, 1)
	_, err = P.Run(context.Background(), mols)
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)

	P = newPipeline()
	P.Encoder = nil
	_, err = P.Run(context.Background(), mols)
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)

	P = newPipeline()
	O := harmonic.DefaultOptions()
	O.MaxOrder(3)
	P.Options = O
	_, err = P.Run(context.Background(), mols)
	assert.ErrorIs(Te, err, scatter.ErrInvalidConfig)
}
