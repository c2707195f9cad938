// Command goscatter computes solid harmonic scattering features for molecules
// and fits linear models that predict molecular properties from them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmera/goscatter/internal/config"
	"github.com/rmera/goscatter/internal/logging"
	"github.com/rmera/goscatter/internal/metrics"
)

// Version is set at build time.
var Version = "0.1.0"

// app holds the state shared by the subcommands of one invocation.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "goscatter",
		Short: "Solid harmonic scattering features and linear regression for molecules",
		Long: `goscatter encodes molecules as Gaussian charge densities, computes their
3D solid harmonic wavelet scattering coefficients, and fits standardized
linear models (ols, ridge, lasso) that predict a molecular property.

Settings are read from defaults, a YAML file (--config or ./goscatter.yaml),
GOSCATTER_ environment variables (GOSCATTER_ENCODING__GRID_SIZE=33) and flags,
each overriding the previous ones.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			var err error
			if a.cfg, err = config.Load(a.cfgFile, cmd.Flags()); err != nil {
				return err
			}
			if a.log, err = logging.New(a.cfg.Log); err != nil {
				return err
			}
			a.metrics = metrics.New()
			if a.cfg.File != "" {
				a.log.Debug("using config file", zap.String("file", a.cfg.File))
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg == nil || a.cfg.Metrics.Textfile == "" {
				return nil
			}
			if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./goscatter.yaml)")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(newFeaturizeCmd(a))
	root.AddCommand(newFitCmd(a))
	root.AddCommand(newPredictCmd(a))
	root.AddCommand(newModelsCmd(a))
	root.AddCommand(newPlotCmd(a))
	return root, a
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		a.log.Error("command failed", zap.Error(err))
		_ = a.log.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	_ = a.log.Sync()
}
