package interpolator

import (
	"fmt"

	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/operators"
	"github.com/notargets/RBFKernel/polynomial"
	"github.com/notargets/RBFKernel/solver"
	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// PolynomialInterpolator augments the kernel terms with all monomials up to
// a total degree, which makes it exact on polynomials of that degree.
type PolynomialInterpolator struct {
	*setup
	degree int

	samples    [][]float64
	generator  *polynomial.Generator
	K          *mat.Dense
	solver     *solver.SplineSolver
	coeffs     *mat.VecDense
	polyCoeffs *mat.VecDense
}

// NewPolynomialInterpolator uses cfg.PolynomialDegree. Only global length
// parameters with dense storage are supported.
func NewPolynomialInterpolator(cfg Config, opts ...Option) (*PolynomialInterpolator, error) {
	s, err := newSetup(cfg, "polynomial_interpolator", opts)
	if err != nil {
		return nil, err
	}
	if _, err := solver.SelectKind(s.sparse, true); err != nil {
		return nil, err
	}
	if !s.length.UsesGlobal() {
		return nil, fmt.Errorf("polynomial augmentation needs global length parameters: %w",
			utils.ErrInvalidArgument)
	}
	return &PolynomialInterpolator{setup: s, degree: cfg.PolynomialDegree}, nil
}

func (ip *PolynomialInterpolator) computeSolver(samples [][]float64, values []float64) (*mat.Dense,
	*polynomial.Generator, *solver.SplineSolver, error) {
	dims, err := utils.Dimensions(samples)
	if err != nil {
		return nil, nil, nil, err
	}
	gen, err := polynomial.NewGenerator(dims, ip.degree)
	if err != nil {
		return nil, nil, nil, err
	}
	K, err := ip.assembleDense(samples)
	if err != nil {
		return nil, nil, nil, err
	}
	spline := solver.NewSplineSolver()
	if err := spline.Compute(K, gen.TermMatrix(samples), values); err != nil {
		return nil, nil, nil, err
	}
	return K, gen, spline, nil
}

// Compute fits kernel and polynomial coefficients. There must be more
// samples than polynomial terms.
func (ip *PolynomialInterpolator) Compute(samples [][]float64, values []float64) error {
	ip.samples, ip.generator, ip.K, ip.solver, ip.coeffs, ip.polyCoeffs = nil, nil, nil, nil, nil, nil
	if err := validateSamples(samples, values); err != nil {
		return err
	}
	samples = utils.CopySamples(samples)
	K, gen, spline, err := ip.computeSolver(samples, values)
	if err != nil {
		return err
	}
	coeffs, polyCoeffs, err := spline.Solve(0)
	if err != nil {
		return err
	}
	ip.samples, ip.generator, ip.K, ip.solver = samples, gen, K, spline
	ip.coeffs, ip.polyCoeffs = coeffs, polyCoeffs
	ip.logger.Debug("computed",
		zap.Int("samples", len(samples)),
		zap.Int("polynomial_terms", gen.NumTerms()),
		zap.Float64("scale", ip.length.Scale()))
	return nil
}

func (ip *PolynomialInterpolator) Interpolate(q []float64) (float64, error) {
	if err := checkQuery(ip.samples, q); err != nil {
		return 0, err
	}
	kvec := ip.builder().KernelVector(ip.samples, q)
	value := mat.Dot(mat.NewVecDense(len(kvec), kvec), ip.coeffs)
	return value + ip.generator.Evaluate(q, ip.polyCoeffs), nil
}

func (ip *PolynomialInterpolator) Evaluate(op operators.Evaluator) (operators.Value, error) {
	if ip.coeffs == nil {
		return operators.Value{}, fmt.Errorf("interpolator used before Compute: %w",
			utils.ErrPreconditionNotSatisfied)
	}
	return operators.Evaluate(op, operators.Fit{
		Dist:                   ip.dist,
		Kernel:                 ip.kernel,
		Length:                 ip.length,
		Samples:                ip.samples,
		Coefficients:           ip.coeffs.RawVector().Data,
		Polynomial:             ip.generator,
		PolynomialCoefficients: ip.polyCoeffs,
	})
}

func (ip *PolynomialInterpolator) FixLengthParameterScale(value float64) error {
	return ip.length.SetScale(value)
}

// OptimizeLengthParameterScale scores trial scales with the MLE objective
// of the projected system. It does not refit.
func (ip *PolynomialInterpolator) OptimizeLengthParameterScale(samples [][]float64, values []float64,
	maxEvaluations int) error {
	if err := validateSamples(samples, values); err != nil {
		return err
	}
	samples = utils.CopySamples(samples)
	return ip.optimizeScale(func(scale float64) (float64, error) {
		if err := ip.length.SetScale(scale); err != nil {
			return 0, err
		}
		_, _, spline, err := ip.computeSolver(samples, values)
		if err != nil {
			return 0, err
		}
		return spline.CalcMLEObjective(0), nil
	}, maxEvaluations)
}

func (ip *PolynomialInterpolator) Coefficients() *mat.VecDense             { return ip.coeffs }
func (ip *PolynomialInterpolator) PolynomialCoefficients() *mat.VecDense   { return ip.polyCoeffs }
func (ip *PolynomialInterpolator) KernelMatrix() mat.Matrix                { return ip.K }
func (ip *PolynomialInterpolator) LengthParameter() lengthparam.Calculator { return ip.length }
func (ip *PolynomialInterpolator) Samples() [][]float64                    { return ip.samples }
