package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMolecule(Te *testing.T) {
	m := New()
	m.RecordMolecule(true)
	m.RecordMolecule(true)
	m.RecordMolecule(false)
	assert.Equal(Te, 2.0, testutil.ToFloat64(m.MoleculesTotal.WithLabelValues(StatusOK)))
	assert.Equal(Te, 1.0, testutil.ToFloat64(m.MoleculesTotal.WithLabelValues(StatusFailed)))
}

func TestRecordFitAndStage(Te *testing.T) {
	m := New()
	m.RecordFit("ridge", 5)
	m.RecordFit("ridge", 0)
	assert.Equal(Te, 5.0, testutil.ToFloat64(m.FitsTotal.WithLabelValues("ridge")))

	m.ObserveStage(StageEncode, time.Now())
	m.ObserveStage(StageTransform, time.Now())
	assert.Equal(Te, 2, testutil.CollectAndCount(m.StageDuration))
}

func TestNilMetrics(Te *testing.T) {
	var m *Metrics
	assert.NotPanics(Te, func() {
		m.RecordMolecule(true)
		m.ObserveStage(StageAssemble, time.Now())
		m.RecordFit("ols", 1)
	})
	assert.NoError(Te, m.WriteTextfile(filepath.Join(Te.TempDir(), "x.prom")))
}

func TestWriteTextfile(Te *testing.T) {
	m := New()
	m.RecordMolecule(true)
	path := filepath.Join(Te.TempDir(), "goscatter.prom")
	require.NoError(Te, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(Te, err)
	assert.Contains(Te, string(data), `goscatter_molecules_total{status="ok"} 1`)
}
