package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LUSolver is the direct solver for the non-symmetric dense kernel
// matrices of local length parameters. It has no spectral decomposition,
// so regularization is not available.
type LUSolver struct {
	lu       mat.LU
	data     *mat.VecDense
	computed bool
}

func NewLUSolver() *LUSolver { return &LUSolver{} }

func (s *LUSolver) Compute(K mat.Matrix, data []float64) error {
	s.computed = false
	n, c := K.Dims()
	if n != c {
		return fmt.Errorf("kernel matrix must be square, got %dx%d: %w", n, c, ErrInvalidArgument)
	}
	if len(data) != n {
		return fmt.Errorf("data has %d values for a %dx%d kernel matrix: %w",
			len(data), n, n, ErrInvalidArgument)
	}
	s.lu.Factorize(K)
	s.data = mat.NewVecDense(n, append([]float64(nil), data...))
	s.computed = true
	return nil
}

func (s *LUSolver) Solve(reg float64) (*mat.VecDense, error) {
	if !s.computed {
		return nil, fmt.Errorf("Compute must be called before solving: %w", ErrPreconditionNotSatisfied)
	}
	if reg != 0 {
		return nil, fmt.Errorf("regularization is not supported for local length parameters: %w",
			ErrInvalidArgument)
	}
	coeffs := mat.NewVecDense(s.data.Len(), nil)
	if err := s.lu.SolveVecTo(coeffs, false, s.data); err != nil {
		if !usableCondition(err) {
			return nil, fmt.Errorf("LU solve of the kernel matrix: %v: %w", err, ErrAlgorithmFailure)
		}
	}
	return coeffs, nil
}

// usableCondition accepts gonum's ill-conditioning warning, which still
// delivers a solution, and rejects singular systems.
func usableCondition(err error) bool {
	var cond mat.Condition
	if !errors.As(err, &cond) {
		return false
	}
	return !math.IsInf(float64(cond), 1) && !math.IsNaN(float64(cond))
}
