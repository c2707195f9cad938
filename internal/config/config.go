// Package config loads the goScatter settings from defaults, a YAML file,
// GOSCATTER_ environment variables and command line flags, in increasing order
// of precedence.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	scatter "github.com/rmera/goscatter"
	"github.com/rmera/goscatter/density"
	"github.com/rmera/goscatter/harmonic"
	"github.com/rmera/goscatter/internal/logging"
	"github.com/rmera/goscatter/regress"
)

// EnvPrefix is the prefix of the environment variables read by Load. Sections are
// separated by a double underscore, as in GOSCATTER_ENCODING__GRID_SIZE.
const EnvPrefix = "GOSCATTER_"

// DefaultFile is read when it exists and no file is given to Load.
const DefaultFile = "goscatter.yaml"

type Encoding struct {
	GridSize         int      `koanf:"grid_size"`
	Sigma            float64  `koanf:"sigma"`
	Spacing          float64  `koanf:"spacing"`
	Channels         []string `koanf:"channels"`
	Center           string   `koanf:"center"`
	OverlapPrecision float64  `koanf:"overlap_precision"`
}

type Scattering struct {
	J              int       `koanf:"j"`
	L              int       `koanf:"l"`
	Sigma0         float64   `koanf:"sigma0"`
	MaxOrder       int       `koanf:"max_order"`
	IntegralPowers []float64 `koanf:"integral_powers"`
}

type Features struct {
	LogScale bool `koanf:"log_scale"`
}

type Regression struct {
	Model   string    `koanf:"model"`
	Alpha   float64   `koanf:"alpha"`
	Alphas  []float64 `koanf:"alphas"`
	CVFolds int       `koanf:"cv_folds"`
	Seed    int64     `koanf:"seed"`
	Metric  string    `koanf:"metric"`
	MaxIter int       `koanf:"max_iter"`
	Tol     float64   `koanf:"tol"`
}

type Batch struct {
	Workers      int  `koanf:"workers"`
	BatchSize    int  `koanf:"batch_size"`
	AbortOnError bool `koanf:"abort_on_error"`
}

type Store struct {
	Path string `koanf:"path"`
}

type Dataset struct {
	TargetKey string `koanf:"target_key"`
}

type Metrics struct {
	Textfile string `koanf:"textfile"`
}

// Config holds every setting of the featurization and regression pipeline.
type Config struct {
	Encoding   Encoding       `koanf:"encoding"`
	Scattering Scattering     `koanf:"scattering"`
	Features   Features       `koanf:"features"`
	Regression Regression     `koanf:"regression"`
	Batch      Batch          `koanf:"batch"`
	Log        logging.Config `koanf:"log"`
	Store      Store          `koanf:"store"`
	Dataset    Dataset        `koanf:"dataset"`
	Metrics    Metrics        `koanf:"metrics"`

	// File is the configuration file that was read, if any.
	File string `koanf:"-"`
}

// Defaults returns the default settings as a flat map of dotted keys.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"encoding.grid_size":         33,
		"encoding.sigma":             1.0,
		"encoding.spacing":           0.5,
		"encoding.channels":          []string{"full", "valence"},
		"encoding.center":            density.CenterCharge,
		"encoding.overlap_precision": 0.0,
		"scattering.j":               3,
		"scattering.l":               2,
		"scattering.sigma0":          1.0,
		"scattering.max_order":       2,
		"scattering.integral_powers": []float64{0.5, 1, 2},
		"features.log_scale":         true,
		"regression.model":           string(regress.Ridge),
		"regression.alpha":           1.0,
		"regression.alphas":          []float64{1e-4, 1e-3, 1e-2, 1e-1, 1, 10},
		"regression.cv_folds":        5,
		"regression.seed":            int64(0),
		"regression.metric":          string(regress.MetricMAE),
		"regression.max_iter":        10000,
		"regression.tol":             1e-8,
		"batch.workers":              0,
		"batch.batch_size":           64,
		"batch.abort_on_error":       false,
		"log.level":                  "info",
		"log.format":                 logging.FormatConsole,
		"log.output_paths":           []string{"stderr"},
		"store.path":                 "goscatter.db",
		"dataset.target_key":         scatter.DefaultTargetKey,
		"metrics.textfile":           "",
	}
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"grid-size":         "encoding.grid_size",
	"sigma":             "encoding.sigma",
	"spacing":           "encoding.spacing",
	"channels":          "encoding.channels",
	"center":            "encoding.center",
	"overlap-precision": "encoding.overlap_precision",
	"j":                 "scattering.j",
	"l":                 "scattering.l",
	"sigma0":            "scattering.sigma0",
	"max-order":         "scattering.max_order",
	"integral-powers":   "scattering.integral_powers",
	"log-scale":         "features.log_scale",
	"model":             "regression.model",
	"alpha":             "regression.alpha",
	"alphas":            "regression.alphas",
	"cv-folds":          "regression.cv_folds",
	"seed":              "regression.seed",
	"metric":            "regression.metric",
	"workers":           "batch.workers",
	"batch-size":        "batch.batch_size",
	"abort-on-error":    "batch.abort_on_error",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"store":             "store.path",
	"target-key":        "dataset.target_key",
	"metrics-file":      "metrics.textfile",
}

// BindFlags adds to fs one flag per configuration option that can be set from
// the command line. Their defaults are only shown in the help; unchanged flags
// never override other sources.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Int("grid-size", d["encoding.grid_size"].(int), "points per side of the density grid")
	fs.Float64("sigma", d["encoding.sigma"].(float64), "width of the atomic Gaussians")
	fs.Float64("spacing", d["encoding.spacing"].(float64), "distance between grid points")
	fs.StringSlice("channels", d["encoding.channels"].([]string), "charge channels (full, valence, core, count, element:Z)")
	fs.String("center", d["encoding.center"].(string), "centering policy (charge, mass, geometric, none)")
	fs.Float64("overlap-precision", d["encoding.overlap_precision"].(float64), "rescale coordinates so the closest atoms overlap by this much (0 disables)")
	fs.Int("j", d["scattering.j"].(int), "number of wavelet scales")
	fs.Int("l", d["scattering.l"].(int), "maximum spherical harmonic degree")
	fs.Float64("sigma0", d["scattering.sigma0"].(float64), "width of the finest wavelet, in grid units")
	fs.Int("max-order", d["scattering.max_order"].(int), "highest scattering order (0, 1 or 2)")
	fs.Float64Slice("integral-powers", d["scattering.integral_powers"].([]float64), "powers of the integrated responses")
	fs.Bool("log-scale", d["features.log_scale"].(bool), "log-scale the coefficients")
	fs.String("model", d["regression.model"].(string), "regression model (ols, ridge, lasso)")
	fs.Float64("alpha", d["regression.alpha"].(float64), "regularization strength, when not cross-validated")
	fs.Float64Slice("alphas", d["regression.alphas"].([]float64), "regularization strengths to cross-validate")
	fs.Int("cv-folds", d["regression.cv_folds"].(int), "cross-validation folds")
	fs.Int64("seed", d["regression.seed"].(int64), "seed of the fold shuffling")
	fs.String("metric", d["regression.metric"].(string), "cross-validation metric (mae, rmse)")
	fs.Int("workers", d["batch.workers"].(int), "concurrent molecules (0 uses all CPUs)")
	fs.Int("batch-size", d["batch.batch_size"].(int), "molecules per batch")
	fs.Bool("abort-on-error", d["batch.abort_on_error"].(bool), "stop at the first failing molecule")
	fs.String("log-level", d["log.level"].(string), "log level (debug, info, warn, error)")
	fs.String("log-format", d["log.format"].(string), "log format (console, json)")
	fs.String("store", d["store.path"].(string), "SQLite model database")
	fs.String("target-key", d["dataset.target_key"].(string), "key of the target in XYZ comment lines")
	fs.String("metrics-file", d["metrics.textfile"].(string), "write Prometheus metrics to this file")
}

// Load reads the configuration. path is a YAML file; if empty, DefaultFile is
// read when present. flags may be nil; only flags changed on the command line
// are used.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}
	used := path
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: error reading config file %s: %w", used, err)
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load env vars: %w", err)
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: failed to load flags: %w", err)
		}
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Encoding.Channels = splitList(cfg.Encoding.Channels)
	return &cfg, cfg.Validate()
}

// envKey turns GOSCATTER_ENCODING__GRID_SIZE into encoding.grid_size. Values with
// commas become lists.
func envKey(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if strings.Contains(value, ",") {
		return key, splitList([]string{value})
	}
	return key, value
}

func splitList(in []string) []string {
	var ret []string
	for _, s := range in {
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				ret = append(ret, f)
			}
		}
	}
	return ret
}

// Validate returns an InvalidConfigError describing the first bad setting.
func (C *Config) Validate() error {
	e := C.Encoding
	switch {
	case e.GridSize < 1:
		return scatter.InvalidConfigError("encoding.grid_size must be positive, got %d", e.GridSize)
	case !positive(e.Sigma):
		return scatter.InvalidConfigError("encoding.sigma must be positive, got %g", e.Sigma)
	case !positive(e.Spacing):
		return scatter.InvalidConfigError("encoding.spacing must be positive, got %g", e.Spacing)
	case e.OverlapPrecision < 0 || e.OverlapPrecision >= 1:
		return scatter.InvalidConfigError("encoding.overlap_precision must be in [0,1), got %g", e.OverlapPrecision)
	}
	if _, err := C.ChannelList(); err != nil {
		return err
	}
	if _, err := C.Encoder(); err != nil {
		return err
	}
	s := C.Scattering
	switch {
	case s.J < 1:
		return scatter.InvalidConfigError("scattering.j must be at least 1, got %d", s.J)
	case s.L < 0:
		return scatter.InvalidConfigError("scattering.l must be non-negative, got %d", s.L)
	case !positive(s.Sigma0):
		return scatter.InvalidConfigError("scattering.sigma0 must be positive, got %g", s.Sigma0)
	}
	if err := C.TransformOptions().Check(); err != nil {
		return err
	}
	r := C.Regression
	kind, err := regress.ParseKind(r.Model)
	if err != nil {
		return err
	}
	if kind.Regularized() {
		if !positive(r.Alpha) {
			return scatter.InvalidConfigError("regression.alpha must be positive, got %g", r.Alpha)
		}
		for _, a := range r.Alphas {
			if !positive(a) {
				return scatter.InvalidConfigError("regression.alphas must be positive, got %g", a)
			}
		}
	}
	if r.CVFolds < 2 {
		return scatter.InvalidConfigError("regression.cv_folds must be at least 2, got %d", r.CVFolds)
	}
	if _, err := regress.ParseMetric(r.Metric); err != nil {
		return err
	}
	if C.Batch.Workers < 0 || C.Batch.BatchSize < 1 {
		return scatter.InvalidConfigError("batch.workers must be non-negative and batch.batch_size positive, got %d and %d", C.Batch.Workers, C.Batch.BatchSize)
	}
	if _, ok := logging.ParseLevel(C.Log.Level); !ok {
		return scatter.InvalidConfigError("unknown log.level %q", C.Log.Level)
	}
	if C.Log.Format != logging.FormatConsole && C.Log.Format != logging.FormatJSON {
		return scatter.InvalidConfigError("unknown log.format %q", C.Log.Format)
	}
	return nil
}

func positive(x float64) bool { return x > 0 && !math.IsInf(x, 0) }

// ChannelList parses the configured channels.
func (C *Config) ChannelList() ([]scatter.Channel, error) {
	return scatter.ParseChannels(C.Encoding.Channels...)
}

// Encoder returns the density encoder described by the configuration.
func (C *Config) Encoder() (*density.Encoder, error) {
	ch, err := C.ChannelList()
	if err != nil {
		return nil, err
	}
	E := &density.Encoder{
		GridSize: C.Encoding.GridSize,
		Sigma:    C.Encoding.Sigma,
		Spacing:  C.Encoding.Spacing,
		Channels: ch,
		Center:   C.Encoding.Center,
	}
	return E, E.Check()
}

// Bank returns a lazily built filter bank for the configured grid and scales.
func (C *Config) Bank() *harmonic.LazyBank {
	return harmonic.NewLazyBank(C.Scattering.J, C.Scattering.L, C.Encoding.GridSize, C.Scattering.Sigma0)
}

// TransformOptions returns the scattering options of the configuration.
func (C *Config) TransformOptions() *harmonic.Options {
	O := harmonic.DefaultOptions()
	O.MaxOrder(C.Scattering.MaxOrder)
	O.IntegralPowers(C.Scattering.IntegralPowers)
	return O
}

// Hyperparams returns the estimator settings for the given regularization strength.
func (C *Config) Hyperparams(alpha float64) regress.Hyperparams {
	return regress.Hyperparams{Alpha: alpha, MaxIter: C.Regression.MaxIter, Tol: C.Regression.Tol}
}

// Meta describes the settings that determine the features, so that feature files
// and models trained on them can be checked for compatibility.
func (C *Config) Meta() map[string]string {
	e, s := C.Encoding, C.Scattering
	powers := make([]string, len(s.IntegralPowers))
	for i, q := range s.IntegralPowers {
		powers[i] = fmt.Sprint(q)
	}
	return map[string]string{
		"grid_size":         fmt.Sprint(e.GridSize),
		"sigma":             fmt.Sprint(e.Sigma),
		"spacing":           fmt.Sprint(e.Spacing),
		"channels":          strings.Join(e.Channels, ","),
		"center":            e.Center,
		"overlap_precision": fmt.Sprint(e.OverlapPrecision),
		"j":                 fmt.Sprint(s.J),
		"l":                 fmt.Sprint(s.L),
		"sigma0":            fmt.Sprint(s.Sigma0),
		"max_order":         fmt.Sprint(s.MaxOrder),
		"integral_powers":   strings.Join(powers, ","),
		"log_scale":         fmt.Sprint(C.Features.LogScale),
	}
}
