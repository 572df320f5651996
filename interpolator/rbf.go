// Package interpolator fits radial basis function interpolants to
// scattered samples and evaluates them and their derivatives.
package interpolator

import (
	"fmt"

	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/operators"
	"github.com/notargets/RBFKernel/solver"
	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// RBFInterpolator is the plain interpolant sum_i c_i phi(d(q, x_i)/l_i).
// The solver follows the storage and length parameter choice: eigen
// decomposition for dense global systems, LU for dense local systems and
// BiCGSTAB for sparse systems.
type RBFInterpolator struct {
	*setup
	kind solver.Kind

	samples [][]float64
	K       mat.Matrix
	solver  solver.PlainSolver
	coeffs  *mat.VecDense
}

func NewRBFInterpolator(cfg Config, opts ...Option) (*RBFInterpolator, error) {
	s, err := newSetup(cfg, "rbf_interpolator", opts)
	if err != nil {
		return nil, err
	}
	kind, err := solver.SelectKind(s.sparse, false)
	if err != nil {
		return nil, err
	}
	return &RBFInterpolator{setup: s, kind: kind}, nil
}

// Compute fits the interpolant to values at samples. The samples are
// copied. A failed Compute leaves the interpolator unfitted.
func (ip *RBFInterpolator) Compute(samples [][]float64, values []float64) error {
	ip.samples, ip.K, ip.solver, ip.coeffs = nil, nil, nil, nil
	if err := validateSamples(samples, values); err != nil {
		return err
	}
	samples = utils.CopySamples(samples)
	K, plain, err := ip.computeSolver(samples, values)
	if err != nil {
		return err
	}
	coeffs, err := plain.Solve(0)
	if err != nil {
		return err
	}
	ip.samples, ip.K, ip.solver, ip.coeffs = samples, K, plain, coeffs
	ip.logger.Debug("computed",
		zap.Int("samples", len(samples)),
		zap.Stringer("solver", ip.kind),
		zap.Float64("scale", ip.length.Scale()))
	return nil
}

func (ip *RBFInterpolator) computeSolver(samples [][]float64, values []float64) (mat.Matrix, solver.PlainSolver, error) {
	K, err := ip.assemble(samples)
	if err != nil {
		return nil, nil, err
	}
	plain, err := solver.NewPlainSolver(ip.kind, ip.length.UsesGlobal())
	if err != nil {
		return nil, nil, err
	}
	if err := plain.Compute(K, values); err != nil {
		return nil, nil, err
	}
	return K, plain, nil
}

// Interpolate returns the interpolant at q
func (ip *RBFInterpolator) Interpolate(q []float64) (float64, error) {
	if err := checkQuery(ip.samples, q); err != nil {
		return 0, err
	}
	kvec := ip.builder().KernelVector(ip.samples, q)
	return mat.Dot(mat.NewVecDense(len(kvec), kvec), ip.coeffs), nil
}

// Evaluate applies a differential operator to the interpolant
func (ip *RBFInterpolator) Evaluate(op operators.Evaluator) (operators.Value, error) {
	if ip.coeffs == nil {
		return operators.Value{}, fmt.Errorf("interpolator used before Compute: %w",
			utils.ErrPreconditionNotSatisfied)
	}
	return operators.Evaluate(op, operators.Fit{
		Dist:         ip.dist,
		Kernel:       ip.kernel,
		Length:       ip.length,
		Samples:      ip.samples,
		Coefficients: ip.coeffs.RawVector().Data,
	})
}

// FixLengthParameterScale sets the scale used by the next Compute
func (ip *RBFInterpolator) FixLengthParameterScale(value float64) error {
	return ip.length.SetScale(value)
}

// OptimizeLengthParameterScale picks the scale minimising the MLE
// objective. Compute must be called afterwards to refit; maxEvaluations
// <= 0 uses the configured budget.
func (ip *RBFInterpolator) OptimizeLengthParameterScale(samples [][]float64, values []float64,
	maxEvaluations int) error {
	if err := validateSamples(samples, values); err != nil {
		return err
	}
	if ip.kind != solver.PlainDense {
		return fmt.Errorf("scale optimization needs dense storage: %w", utils.ErrInvalidArgument)
	}
	samples = utils.CopySamples(samples)
	return ip.optimizeScale(func(scale float64) (float64, error) {
		if err := ip.length.SetScale(scale); err != nil {
			return 0, err
		}
		_, plain, err := ip.computeSolver(samples, values)
		if err != nil {
			return 0, err
		}
		mle, ok := plain.(solver.MLESolver)
		if !ok {
			return 0, fmt.Errorf("%T has no MLE objective: %w", plain, utils.ErrInvalidArgument)
		}
		return mle.CalcMLEObjective(0), nil
	}, maxEvaluations)
}

// Coefficients of the kernel terms, nil before Compute
func (ip *RBFInterpolator) Coefficients() *mat.VecDense { return ip.coeffs }

// KernelMatrix of the last Compute, dense or sparse
func (ip *RBFInterpolator) KernelMatrix() mat.Matrix { return ip.K }

func (ip *RBFInterpolator) LengthParameter() lengthparam.Calculator { return ip.length }

// Samples is the interpolator's copy of the fitted samples
func (ip *RBFInterpolator) Samples() [][]float64 { return ip.samples }
