package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/batch"
	"github.com/rmera/goscatter/density"
	"github.com/rmera/goscatter/features"
)

func newFeaturizeCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "featurize XYZFILE...",
		Short: "Compute the scattering features of the molecules in XYZ files",
		Long: `Reads every frame of the given XYZ files, computes its scattering feature
vector, and writes all of them to a zstd-compressed feature file. The target
of each molecule is read from its comment line (key dataset.target_key).`,
		Example: `  goscatter featurize qm7.xyz -o qm7.feat.zst --grid-size 33 --j 3 --l 2`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.featurize(cmd, args, out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "features.zst", "feature file to write")
	return cmd
}

func (a *app) featurize(cmd *cobra.Command, args []string, out string) error {
	var mols []*scatter.Molecule
	var targets []float64
	for _, name := range args {
		m, t, err := scatter.ReadXYZFile(name, a.cfg.Dataset.TargetKey)
		if err != nil {
			return err
		}
		mols = append(mols, m...)
		targets = append(targets, t...)
	}
	a.log.Info("read molecules", zap.Int("molecules", len(mols)), zap.Strings("files", args))

	meta := a.cfg.Meta()
	if p := a.cfg.Encoding.OverlapPrecision; p > 0 {
		scale, err := density.PositionScale(mols, a.cfg.Encoding.Sigma, p)
		if err != nil {
			return err
		}
		for i, m := range mols {
			mols[i] = m.Scaled(scale)
		}
		meta["position_scale"] = strconv.FormatFloat(scale, 'g', -1, 64)
		a.log.Info("rescaled coordinates", zap.Float64("scale", scale))
	}

	enc, err := a.cfg.Encoder()
	if err != nil {
		return err
	}
	P := &batch.Pipeline{
		Encoder:      enc,
		Bank:         a.cfg.Bank(),
		Options:      a.cfg.TransformOptions(),
		Assembler:    features.NewAssembler(a.cfg.Features.LogScale),
		Workers:      a.cfg.Batch.Workers,
		BatchSize:    a.cfg.Batch.BatchSize,
		AbortOnError: a.cfg.Batch.AbortOnError,
		Logger:       a.log,
		Metrics:      a.metrics,
	}
	R, err := P.Run(cmd.Context(), mols)
	if err != nil {
		return err
	}
	for _, f := range R.Failures {
		a.log.Warn("skipped molecule", zap.Int("index", f.Index), zap.String("id", f.ID), zap.Error(f.Err))
	}
	M, err := R.Matrix(mols, targets, scatter.ChannelNames(enc.Channels))
	if err != nil {
		return err
	}
	M.Meta = meta
	if err := features.SaveMatrix(out, M); err != nil {
		return err
	}
	rows, cols := M.Dims()
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d molecules x %d features to %s (%d failed)\n", rows, cols, out, len(R.Failures))
	return nil
}
