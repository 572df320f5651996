package interpolator

import (
	"fmt"
	"math"

	"github.com/notargets/RBFKernel/solver"
	"github.com/notargets/RBFKernel/utils"
	"gonum.org/v1/gonum/mat"
)

// GaussianProcess reads the plain dense global interpolant as the posterior
// mean of a Gaussian process and adds its variance.
type GaussianProcess struct {
	*RBFInterpolator
	commonCoeff float64
}

func NewGaussianProcess(cfg Config, opts ...Option) (*GaussianProcess, error) {
	s, err := newSetup(cfg, "gaussian_process", opts)
	if err != nil {
		return nil, err
	}
	if s.sparse || !s.length.UsesGlobal() {
		return nil, fmt.Errorf("gaussian process needs dense storage and global length parameters: %w",
			utils.ErrInvalidArgument)
	}
	return &GaussianProcess{RBFInterpolator: &RBFInterpolator{setup: s, kind: solver.PlainDense}}, nil
}

// Compute fits the mean and stores data^T K^-1 data / N as the variance
// scale.
func (gp *GaussianProcess) Compute(samples [][]float64, values []float64) error {
	gp.commonCoeff = 0
	if err := gp.RBFInterpolator.Compute(samples, values); err != nil {
		return err
	}
	gp.commonCoeff = gp.eigen().CalcCommonCoeff(0)
	return nil
}

func (gp *GaussianProcess) eigen() *solver.EigenSolver {
	return gp.solver.(*solver.EigenSolver)
}

// EvaluateMeanAndVariance returns the posterior mean and variance at q. The
// variance is clipped at zero against round-off.
func (gp *GaussianProcess) EvaluateMeanAndVariance(q []float64) (mean, variance float64, err error) {
	if err = checkQuery(gp.samples, q); err != nil {
		return 0, 0, err
	}
	kvec := gp.builder().KernelVector(gp.samples, q)
	mean = mat.Dot(mat.NewVecDense(len(kvec), kvec), gp.coeffs)
	remaining := gp.kernel.Evaluate(0) - gp.eigen().CalcRegTerm(kvec, 0)
	variance = gp.commonCoeff * math.Max(0, remaining)
	return mean, variance, nil
}

// CommonCoeff is the variance scale of the last Compute
func (gp *GaussianProcess) CommonCoeff() float64 { return gp.commonCoeff }
