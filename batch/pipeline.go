/*
 * pipeline.go, part of goScatter.
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

// Package batch runs the encode, transform and assemble stages over a dataset,
// a batch of molecules at a time, with one goroutine per molecule inside a batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/density"
	"github.com/rmera/goscatter/features"
	"github.com/rmera/goscatter/harmonic"
	"github.com/rmera/goscatter/internal/logging"
	"github.com/rmera/goscatter/internal/metrics"
)

// DefaultBatchSize is used when Pipeline.BatchSize is not positive.
const DefaultBatchSize = 64

// MoleculeError reports the failure of one molecule of a batch.
type MoleculeError struct {
	Index int
	ID    string
	Err   error
}

func (err *MoleculeError) Error() string {
	return fmt.Sprintf("molecule %d (%s): %v", err.Index, err.ID, err.Err)
}

func (err *MoleculeError) Unwrap() error { return err.Err }

// Pipeline holds the stages shared by all molecules. The filter bank is built
// once, before any worker starts, and is only read afterwards. Logger and Metrics
// may be nil.
type Pipeline struct {
	Encoder      *density.Encoder
	Bank         *harmonic.LazyBank
	Options      *harmonic.Options
	Assembler    *features.Assembler
	Workers      int
	BatchSize    int
	AbortOnError bool
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Result holds one feature row per input molecule, in input order. Rows of
// failed molecules are nil and the failures are listed, by index, in Failures.
type Result struct {
	Keys     []harmonic.Key
	Features [][]float64
	Failures []*MoleculeError
}

// Succeeded returns the indexes of the molecules with a feature row.
func (R *Result) Succeeded() []int {
	ret := make([]int, 0, len(R.Features))
	for i, f := range R.Features {
		if f != nil {
			ret = append(ret, i)
		}
	}
	return ret
}

// Matrix returns a feature matrix with the successful rows. mols and targets
// must be the slices given to Run; targets may be nil. channels are used to
// name the columns.
func (R *Result) Matrix(mols []*scatter.Molecule, targets []float64, channels []string) (*features.Matrix, error) {
	if len(mols) != len(R.Features) || (targets != nil && len(targets) != len(mols)) {
		return nil, scatter.DimensionMismatchError("%d rows, %d molecules, %d targets", len(R.Features), len(mols), len(targets))
	}
	M := &features.Matrix{Names: features.Names(R.Keys, channels), Meta: map[string]string{}}
	for _, i := range R.Succeeded() {
		M.Rows = append(M.Rows, R.Features[i])
		M.IDs = append(M.IDs, molID(mols[i]))
		t := math.NaN()
		if targets != nil {
			t = targets[i]
		}
		M.Targets = append(M.Targets, t)
	}
	return M, M.Check()
}

// Check returns an InvalidConfigError if the pipeline cannot run.
func (P *Pipeline) Check() error {
	if P.Encoder == nil || P.Bank == nil || P.Assembler == nil {
		return scatter.InvalidConfigError("pipeline needs an encoder, a filter bank and an assembler")
	}
	if err := P.Encoder.Check(); err != nil {
		return err
	}
	if P.Options != nil {
		if err := P.Options.Check(); err != nil {
			return err
		}
	}
	return nil
}

// Run featurizes mols. A failing molecule does not stop the others unless
// AbortOnError is set, in which case the first failure cancels the run and is
// returned. Configuration errors, including a filter bank that cannot be built
// or does not match the encoder grid, are returned before any molecule is
// processed. Canceling ctx stops the scheduling of new molecules and Run returns
// the context error.
func (P *Pipeline) Run(ctx context.Context, mols []*scatter.Molecule) (*Result, error) {
	if err := P.Check(); err != nil {
		return nil, err
	}
	bank, err := P.Bank.Get()
	if err != nil {
		return nil, err
	}
	if bank.GridSize() != P.Encoder.GridSize {
		return nil, scatter.InvalidConfigError("filter bank grid %d does not match encoder grid %d", bank.GridSize(), P.Encoder.GridSize)
	}
	log := logging.OrNop(P.Logger)
	workers := P.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	size := P.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	R := &Result{Features: make([][]float64, len(mols))}
	errs := make([]error, len(mols))
	start := time.Now()
	for lo := 0; lo < len(mols); lo += size {
		hi := min(lo+size, len(mols))
		if err := P.runBatch(ctx, bank, mols, lo, hi, workers, R.Features, errs); err != nil {
			return nil, err
		}
		log.Debug("batch done", zap.Int("from", lo), zap.Int("to", hi))
	}
	for i, err := range errs {
		if err != nil {
			R.Failures = append(R.Failures, &MoleculeError{Index: i, ID: molID(mols[i]), Err: err})
		}
	}
	R.Keys = P.Assembler.Keys()
	log.Info("featurization finished",
		zap.Int("molecules", len(mols)),
		zap.Int("failed", len(R.Failures)),
		zap.Int("features", len(R.Keys)),
		zap.Duration("elapsed", time.Since(start)))
	return R, nil
}

// runBatch processes mols[lo:hi]. Each goroutine only writes its own rows[i]
// and errs[i].
func (P *Pipeline) runBatch(ctx context.Context, bank *harmonic.FilterBank, mols []*scatter.Molecule, lo, hi, workers int, rows [][]float64, errs []error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := lo; i < hi; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			row, err := P.featurize(bank, mols[i])
			P.Metrics.RecordMolecule(err == nil)
			if err != nil {
				errs[i] = err
				logging.OrNop(P.Logger).Warn("molecule failed", zap.Int("index", i), zap.String("id", molID(mols[i])), zap.Error(err))
				if P.AbortOnError {
					return &MoleculeError{Index: i, ID: molID(mols[i]), Err: err}
				}
				return nil
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// featurize runs the three stages on mol. A panic in any stage is returned as
// an error so that it only fails this molecule.
func (P *Pipeline) featurize(bank *harmonic.FilterBank, mol *scatter.Molecule) (row []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			row = nil
			err = fmt.Errorf("featurization panicked: %v", r)
		}
	}()
	if mol == nil {
		return nil, scatter.InvalidMoleculeError("nil molecule")
	}
	t := time.Now()
	field, err := P.Encoder.Encode(mol)
	if err != nil {
		return nil, err
	}
	P.Metrics.ObserveStage(metrics.StageEncode, t)
	t = time.Now()
	coeffs, err := harmonic.Transform(field, bank, P.Options)
	if err != nil {
		return nil, err
	}
	P.Metrics.ObserveStage(metrics.StageTransform, t)
	t = time.Now()
	row, err = P.Assembler.Assemble(coeffs)
	if err != nil {
		return nil, err
	}
	P.Metrics.ObserveStage(metrics.StageAssemble, t)
	return row, nil
}

func molID(mol *scatter.Molecule) string {
	if mol == nil {
		return ""
	}
	return mol.ID()
}

// IsMoleculeError reports whether err is, or wraps, a MoleculeError.
func IsMoleculeError(err error) bool {
	var me *MoleculeError
	return errors.As(err, &me)
}
