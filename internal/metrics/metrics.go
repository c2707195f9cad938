// Package metrics holds the Prometheus instruments of the featurization and
// regression pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "goscatter"

// Pipeline stages timed by StageDuration.
const (
	StageEncode    = "encode"
	StageTransform = "transform"
	StageAssemble  = "assemble"
)

// Molecule outcomes counted by MoleculesTotal.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	Registry       *prometheus.Registry
	MoleculesTotal *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	FitsTotal      *prometheus.CounterVec
}

// New creates and registers the pipeline collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		MoleculesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "molecules_total",
			Help:      "Molecules processed by the batch pipeline, by outcome.",
		}, []string{"status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Per-molecule time spent in each pipeline stage.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		FitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_total",
			Help:      "Regression fits, cross-validation folds included, by model kind.",
		}, []string{"kind"}),
	}
	m.Registry.MustRegister(m.MoleculesTotal, m.StageDuration, m.FitsTotal)
	return m
}

// RecordMolecule counts one processed molecule.
func (m *Metrics) RecordMolecule(ok bool) {
	if m == nil {
		return
	}
	status := StatusOK
	if !ok {
		status = StatusFailed
	}
	m.MoleculesTotal.WithLabelValues(status).Inc()
}

// ObserveStage records the time elapsed since start for the given stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordFit adds n fits of the given model kind.
func (m *Metrics) RecordFit(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FitsTotal.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile dumps the registry in the Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(filename string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(filename, m.Registry)
}
