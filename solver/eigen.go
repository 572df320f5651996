package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EigenSolver solves the symmetric kernel system of global length
// parameters through K = V diag(lambda) V^T, so that any regularization
// parameter costs one diagonal scaling:
//
//	coefficients = V (lambda + reg)^-1 V^T data
type EigenSolver struct {
	spectralSystem
	vectors  *mat.Dense
	computed bool
}

func NewEigenSolver() *EigenSolver { return &EigenSolver{} }

// Compute decomposes K and projects data onto the eigenvectors. A
// non-symmetric K is replaced by its symmetric part.
func (s *EigenSolver) Compute(K mat.Matrix, data []float64) error {
	s.computed = false
	n, c := K.Dims()
	if n != c {
		return fmt.Errorf("kernel matrix must be square, got %dx%d: %w", n, c, ErrInvalidArgument)
	}
	if len(data) != n {
		return fmt.Errorf("data has %d values for a %dx%d kernel matrix: %w",
			len(data), n, n, ErrInvalidArgument)
	}
	values, vectors, ok := eigenDecompose(K)
	if !ok {
		return fmt.Errorf("eigen decomposition of the kernel matrix did not converge: %w",
			ErrAlgorithmFailure)
	}
	spectre := mat.NewVecDense(n, nil)
	spectre.MulVec(vectors.T(), mat.NewVecDense(n, append([]float64(nil), data...)))
	s.values = values
	s.vectors = vectors
	s.spectre = spectre.RawVector().Data
	s.computed = true
	return nil
}

func (s *EigenSolver) checkComputed() error {
	if !s.computed {
		return fmt.Errorf("Compute must be called before solving: %w", ErrPreconditionNotSatisfied)
	}
	return nil
}

// Solve returns the kernel coefficients for a regularization parameter,
// raised to the safe floor when needed.
func (s *EigenSolver) Solve(reg float64) (*mat.VecDense, error) {
	if err := s.checkComputed(); err != nil {
		return nil, err
	}
	reg = s.correctRegParam(reg)
	coeffs := mat.NewVecDense(len(s.values), nil)
	coeffs.MulVec(s.vectors, s.scaledSpectre(reg))
	return coeffs, nil
}

// CorrectRegParam returns the regularization parameter actually used for
// reg.
func (s *EigenSolver) CorrectRegParam(reg float64) float64 { return s.correctRegParam(reg) }

// CalcMLEObjective returns N log(data^T (K + reg)^-1 data) + log det(K + reg),
// clipped to MLELimit.
func (s *EigenSolver) CalcMLEObjective(reg float64) float64 { return s.mleObjective(reg) }

// CalcCommonCoeff is data^T (K + reg)^-1 data / N, the variance scale of the
// Gaussian process view.
func (s *EigenSolver) CalcCommonCoeff(reg float64) float64 {
	reg = s.correctRegParam(reg)
	return s.regTerm(reg) / float64(len(s.spectre))
}

// CalcRegTerm returns v^T (K + reg)^-1 v for an arbitrary vector
func (s *EigenSolver) CalcRegTerm(v []float64, reg float64) float64 {
	reg = s.correctRegParam(reg)
	projected := mat.NewVecDense(len(s.values), nil)
	projected.MulVec(s.vectors.T(), mat.NewVecDense(len(v), append([]float64(nil), v...)))
	return weightedSquares(projected.RawVector().Data, s.values, reg)
}

// Eigenvalues in ascending order
func (s *EigenSolver) Eigenvalues() []float64 { return s.values }
