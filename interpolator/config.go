package interpolator

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/optimizer"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// KernelParams parameterises the kernels that need more than a name
type KernelParams struct {
	// Coefficient and Power of the inverse_power kernel
	Coefficient float64 `yaml:"coefficient"`
	Power       float64 `yaml:"power"`
	WendlandL   int     `yaml:"wendland_l"`
	WendlandK   int     `yaml:"wendland_k"`
	// TPSDimension and TPSDegree select the thin plate spline
	TPSDimension int `yaml:"tps_dimension"`
	TPSDegree    int `yaml:"tps_degree"`
}

// Config holds configuration for creating interpolators
type Config struct {
	// Kernel is one of gaussian, gaussian_m1, inverse_quadratic,
	// inverse_multiquadric, multiquadric, inverse_power, thin_plate_spline
	// and wendland
	Kernel       string       `yaml:"kernel"`
	KernelParams KernelParams `yaml:"kernel_params"`
	// LengthParameter is global, local or identity
	LengthParameter   string  `yaml:"length_parameter"`
	Scale             float64 `yaml:"scale"`
	PolynomialDegree  int     `yaml:"polynomial_degree"`
	Sparse            bool    `yaml:"sparse"`
	Parallel          bool    `yaml:"parallel"`
	Workers           int     `yaml:"workers"`
	MaxMLEEvaluations int     `yaml:"max_mle_evaluations"`
	// Optimizer searches the length parameter scale, dividing_rectangles
	// or nelder_mead
	Optimizer string `yaml:"optimizer"`
	// LogLevel is none or a zap level name
	LogLevel string `yaml:"log_level"`
}

const (
	LengthGlobal   = "global"
	LengthLocal    = "local"
	LengthIdentity = "identity"
	LogLevelNone   = "none"
)

func DefaultConfig() Config {
	return Config{
		Kernel: "gaussian",
		KernelParams: KernelParams{
			Coefficient:  1,
			Power:        1,
			WendlandL:    3,
			WendlandK:    1,
			TPSDimension: 1,
			TPSDegree:    1,
		},
		LengthParameter:   LengthGlobal,
		Scale:             lengthparam.DefaultScale,
		PolynomialDegree:  1,
		MaxMLEEvaluations: DefaultMaxMLEEvaluations,
		Optimizer:         optimizer.MethodDividingRectangles,
		LogLevel:          LogLevelNone,
	}
}

// ParseConfig reads YAML over the defaults, so absent keys keep their
// default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse interpolator config: %v: %w", err, utils.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.NewKernel(); err != nil {
		return err
	}
	if _, err := c.NewLengthParameter(); err != nil {
		return err
	}
	if c.PolynomialDegree < 0 {
		return fmt.Errorf("negative polynomial degree %d: %w", c.PolynomialDegree, utils.ErrInvalidArgument)
	}
	if c.Workers < 0 {
		return fmt.Errorf("negative number of workers %d: %w", c.Workers, utils.ErrInvalidArgument)
	}
	if c.MaxMLEEvaluations < 1 {
		return fmt.Errorf("max_mle_evaluations must be positive, got %d: %w",
			c.MaxMLEEvaluations, utils.ErrInvalidArgument)
	}
	if err := optimizer.ValidateMethod(c.Optimizer); err != nil {
		return err
	}
	return c.validateLogLevel()
}

func (c Config) validateLogLevel() error {
	switch strings.ToLower(c.LogLevel) {
	case "", LogLevelNone, "debug":
		return nil
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %v: %w", err, utils.ErrInvalidArgument)
	}
	return nil
}

func (c Config) NewKernel() (rbfs.Kernel, error) {
	p := c.KernelParams
	switch strings.ToLower(c.Kernel) {
	case "gaussian":
		return rbfs.NewGaussian(), nil
	case "gaussian_m1":
		return rbfs.NewGaussianM1(), nil
	case "inverse_quadratic":
		return rbfs.NewInverseQuadratic(), nil
	case "inverse_multiquadric":
		return rbfs.NewInverseMultiquadric(), nil
	case "multiquadric":
		return rbfs.NewMultiquadric(), nil
	case "inverse_power":
		if p.Power == 0 || math.IsNaN(p.Power) {
			return nil, fmt.Errorf("inverse_power kernel needs a non-zero power: %w", utils.ErrInvalidArgument)
		}
		return rbfs.NewInversePower(p.Coefficient, p.Power), nil
	case "thin_plate_spline":
		return rbfs.NewThinPlateSpline(p.TPSDimension, p.TPSDegree)
	case "wendland":
		return rbfs.NewWendland(p.WendlandL, p.WendlandK)
	}
	return nil, fmt.Errorf("unknown kernel %q: %w", c.Kernel, utils.ErrInvalidArgument)
}

// NewLengthParameter returns a calculator with the configured scale
func (c Config) NewLengthParameter() (lengthparam.Calculator, error) {
	var lp lengthparam.Calculator
	switch strings.ToLower(c.LengthParameter) {
	case LengthGlobal:
		lp = lengthparam.NewGlobal()
	case LengthLocal:
		lp = lengthparam.NewLocal()
	case LengthIdentity:
		return lengthparam.Identity{}, nil
	default:
		return nil, fmt.Errorf("unknown length parameter strategy %q: %w",
			c.LengthParameter, utils.ErrInvalidArgument)
	}
	if err := lp.SetScale(c.Scale); err != nil {
		return nil, err
	}
	return lp, nil
}

// NewLogger builds a production logger at LogLevel, a development logger
// for debug, and a no-op logger for none.
func (c Config) NewLogger() (*zap.Logger, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", LogLevelNone:
		return zap.NewNop(), nil
	case "debug":
		return zap.NewDevelopment()
	}
	if err := c.validateLogLevel(); err != nil {
		return nil, err
	}
	level, _ := zap.ParseAtomicLevel(c.LogLevel)
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}
