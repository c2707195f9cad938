package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/goscatter/regress"
)

func trainedModel(Te *testing.T, kind regress.Kind, alpha float64) *regress.Model {
	X := [][]float64{{1, 2}, {2, 1}, {3, 5}, {4, 3}, {5, 8}}
	y := []float64{5, 4, 13, 10, 21}
	M, err := regress.Fit(X, y, kind, regress.Hyperparams{Alpha: alpha})
	require.NoError(Te, err)
	M.Features = []string{"o0/full/q0", "o0/valence/q0"}
	return M
}

func TestSaveLoad(Te *testing.T) {
	s, err := Open(filepath.Join(Te.TempDir(), "models.db"))
	require.NoError(Te, err)
	defer s.Close()

	M := trainedModel(Te, regress.Ridge, 0.1)
	rec, err := s.Save(M, Record{
		Name:     "qm7-ridge",
		NSamples: 5,
		CVMetric: "mae",
		CVScore:  0.25,
		TrainMAE: 0.1,
		// TrainRMSE unknown.
		TrainRMSE: math.NaN(),
		Meta:      map[string]string{"grid_size": "16"},
	})
	require.NoError(Te, err)
	assert.NotEmpty(Te, rec.ID)
	assert.Equal(Te, regress.Ridge, rec.Kind)
	assert.Equal(Te, 2, rec.NFeatures)

	got, grec, err := s.Load(rec.ID)
	require.NoError(Te, err)
	assert.Equal(Te, M.Weights, got.Weights)
	assert.Equal(Te, M.Bias, got.Bias)
	assert.Equal(Te, M.Standardizer.Mean, got.Standardizer.Mean)
	assert.Equal(Te, M.Features, got.Features)
	assert.Equal(Te, "qm7-ridge", grec.Name)
	assert.Equal(Te, 0.25, grec.CVScore)
	assert.True(Te, math.IsNaN(grec.TrainRMSE))
	assert.Equal(Te, "16", grec.Meta["grid_size"])
	assert.True(Te, rec.CreatedAt.Equal(grec.CreatedAt))

	X := [][]float64{{6, 7}}
	p1, err := M.Predict(X)
	require.NoError(Te, err)
	p2, err := got.Predict(X)
	require.NoError(Te, err)
	assert.Equal(Te, p1, p2)
}

func TestListLatestDelete(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "models.db")
	s, err := Open(path)
	require.NoError(Te, err)

	_, _, err = s.Latest()
	assert.ErrorIs(Te, err, ErrNotFound)

	first, err := s.Save(trainedModel(Te, regress.OLS, 0), Record{Name: "a"})
	require.NoError(Te, err)
	second, err := s.Save(trainedModel(Te, regress.Lasso, 0.01), Record{Name: "b"})
	require.NoError(Te, err)
	require.NoError(Te, s.Close())

	// Models survive reopening.
	s, err = Open(path)
	require.NoError(Te, err)
	defer s.Close()
	recs, err := s.List()
	require.NoError(Te, err)
	require.Len(Te, recs, 2)
	assert.Equal(Te, second.ID, recs[0].ID)
	assert.Equal(Te, first.ID, recs[1].ID)

	M, rec, err := s.Latest()
	require.NoError(Te, err)
	assert.Equal(Te, regress.Lasso, M.Kind)
	assert.Equal(Te, second.ID, rec.ID)

	require.NoError(Te, s.Delete(second.ID))
	assert.ErrorIs(Te, s.Delete(second.ID), ErrNotFound)
	_, _, err = s.Load(second.ID)
	assert.ErrorIs(Te, err, ErrNotFound)
	_, rec, err = s.Latest()
	require.NoError(Te, err)
	assert.Equal(Te, first.ID, rec.ID)
}

func TestSaveNil(Te *testing.T) {
	s, err := Open(":memory:")
	require.NoError(Te, err)
	defer s.Close()
	_, err = s.Save(nil, Record{})
	assert.Error(Te, err)
}
