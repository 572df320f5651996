package interpolator

import (
	"fmt"
	"math"

	"github.com/notargets/RBFKernel/builder"
	"github.com/notargets/RBFKernel/device"
	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/optimizer"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/solver"
	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxMLEEvaluations bounds the length parameter scale search
const DefaultMaxMLEEvaluations = 20

// The scale search runs over log10(scale) in this interval
const (
	minLogScale = -1
	maxLogScale = 2
)

// setup is what every interpolator needs before it sees samples
type setup struct {
	dist              utils.DistanceFunction
	kernel            rbfs.Kernel
	length            lengthparam.Calculator
	sparse            bool
	parallel          bool
	workers           int
	maxMLEEvaluations int
	optimizer         string
	device            *device.Runner
	logger            *zap.Logger
}

// Option overrides a Config value at construction
type Option func(*setup)

func WithKernel(k rbfs.Kernel) Option { return func(s *setup) { s.kernel = k } }

func WithLengthParameter(lp lengthparam.Calculator) Option {
	return func(s *setup) { s.length = lp }
}

func WithDistance(d utils.DistanceFunction) Option { return func(s *setup) { s.dist = d } }

func WithLogger(l *zap.Logger) Option { return func(s *setup) { s.logger = l } }

// WithSparse selects sparse storage, which needs a compactly supported
// kernel.
func WithSparse(sparse bool) Option { return func(s *setup) { s.sparse = sparse } }

// WithParallel enables parallel dense assembly over the given number of
// workers, 0 meaning GOMAXPROCS.
func WithParallel(workers int) Option {
	return func(s *setup) {
		s.parallel = true
		s.workers = workers
	}
}

// WithOptimizer selects the scale search method by name
func WithOptimizer(method string) Option { return func(s *setup) { s.optimizer = method } }

// WithDevice assembles dense kernel matrices on r when the kernel has a C
// source and the length parameter is global. Other setups stay on the host.
func WithDevice(r *device.Runner) Option { return func(s *setup) { s.device = r } }

func newSetup(cfg Config, name string, opts []Option) (*setup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &setup{
		dist:              utils.EuclideanDistance{},
		sparse:            cfg.Sparse,
		parallel:          cfg.Parallel,
		workers:           cfg.Workers,
		maxMLEEvaluations: cfg.MaxMLEEvaluations,
		optimizer:         cfg.Optimizer,
	}
	var err error
	if s.kernel, err = cfg.NewKernel(); err != nil {
		return nil, err
	}
	if s.length, err = cfg.NewLengthParameter(); err != nil {
		return nil, err
	}
	if s.logger, err = cfg.NewLogger(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.kernel == nil || s.length == nil || s.dist == nil {
		return nil, fmt.Errorf("kernel, length parameter and distance are required: %w", utils.ErrInvalidArgument)
	}
	if err := optimizer.ValidateMethod(s.optimizer); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named(name)
	if _, compact := rbfs.SupportBoundary(s.kernel); s.sparse && !compact {
		return nil, fmt.Errorf("sparse storage needs a compactly supported kernel, got %T: %w",
			s.kernel, utils.ErrInvalidArgument)
	}
	return s, nil
}

func (s *setup) builder() *builder.Builder {
	return builder.NewBuilder(s.dist, s.kernel, s.length,
		builder.Config{Parallel: s.parallel, Workers: s.workers})
}

// assemble computes the length parameters for samples and the kernel matrix
func (s *setup) assemble(samples [][]float64) (mat.Matrix, error) {
	if s.sparse {
		return s.builder().ComputeSparse(samples)
	}
	return s.assembleDense(samples)
}

// assembleDense is assemble for dense storage, on the device when one is
// set and can serve the setup
func (s *setup) assembleDense(samples [][]float64) (*mat.Dense, error) {
	if s.onDevice() {
		return device.ComputeDenseOnDevice(s.device, s.kernel, s.length, samples)
	}
	return s.builder().ComputeDense(samples)
}

func (s *setup) onDevice() bool {
	if s.device == nil || !s.length.UsesGlobal() || !utils.IsEuclidean(s.dist) {
		return false
	}
	_, ok := s.kernel.(rbfs.CSourcer)
	return ok
}

// validateSamples checks the shape of a sample set and its values
func validateSamples(samples [][]float64, values []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples: %w", utils.ErrInvalidArgument)
	}
	if len(values) != len(samples) {
		return fmt.Errorf("%d values for %d samples: %w", len(values), len(samples), utils.ErrInvalidArgument)
	}
	_, err := utils.Dimensions(samples)
	return err
}

// checkQuery returns an error unless q matches the dimension of samples
func checkQuery(samples [][]float64, q []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("interpolator used before Compute: %w", utils.ErrPreconditionNotSatisfied)
	}
	if len(q) != len(samples[0]) {
		return fmt.Errorf("query point has dimension %d, samples %d: %w",
			len(q), len(samples[0]), utils.ErrInvalidArgument)
	}
	return nil
}

// mleTrial scores one candidate scale. Failed trials score worst.
type mleTrial func(scale float64) (float64, error)

// optimizeScale searches log10(scale) in [-1, 2] for the smallest MLE
// objective and sets the scale found. It does not refit.
func (s *setup) optimizeScale(trial mleTrial, maxEvaluations int) error {
	if !s.length.UsesGlobal() {
		return fmt.Errorf("scale optimization needs global length parameters: %w", utils.ErrInvalidArgument)
	}
	if maxEvaluations <= 0 {
		maxEvaluations = s.maxMLEEvaluations
	}
	var trialErr error
	objective := func(x []float64) float64 {
		scale := math.Pow(10, x[0])
		mle, err := trial(scale)
		if err != nil {
			trialErr = err
			return signedLog10(solver.MLELimit)
		}
		s.logger.Debug("mle trial", zap.Float64("scale", scale), zap.Float64("objective", mle))
		return signedLog10(mle)
	}
	opt, err := optimizer.New(s.optimizer, objective, s.logger)
	if err != nil {
		return err
	}
	if err := opt.Init([]float64{minLogScale}, []float64{maxLogScale}); err != nil {
		return err
	}
	opt.MaxEvaluations(maxEvaluations)
	if err := opt.Solve(); err != nil {
		return err
	}
	if math.IsInf(opt.OptValue(), 0) || opt.OptValue() >= signedLog10(solver.MLELimit) {
		if trialErr != nil {
			return fmt.Errorf("every scale trial failed: %w", trialErr)
		}
	}
	scale := math.Pow(10, opt.OptVariable()[0])
	s.logger.Debug("selected length parameter scale", zap.Float64("scale", scale))
	return s.length.SetScale(scale)
}

// signedLog10 is log10(1+|v|) carrying the sign of v, monotone over the
// whole real line. The MLE objective is negative whenever log det K
// dominates.
func signedLog10(v float64) float64 {
	return math.Copysign(math.Log10(1+math.Abs(v)), v)
}
