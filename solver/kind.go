package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Kind selects the solver family of an interpolator at construction
type Kind uint8

const (
	PlainDense Kind = iota
	PlainSparse
	SplineDense
)

func (k Kind) String() string {
	switch k {
	case PlainDense:
		return "plain-dense"
	case PlainSparse:
		return "plain-sparse"
	case SplineDense:
		return "spline-dense"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// SelectKind maps the storage and augmentation choices to a solver kind.
// Polynomial augmentation is only available with dense storage.
func SelectKind(sparse, polynomial bool) (Kind, error) {
	switch {
	case sparse && polynomial:
		return 0, fmt.Errorf("polynomial augmentation needs a dense kernel matrix: %w", ErrInvalidArgument)
	case sparse:
		return PlainSparse, nil
	case polynomial:
		return SplineDense, nil
	}
	return PlainDense, nil
}

// PlainSolver is the common contract of the solvers without polynomial
// terms.
type PlainSolver interface {
	Compute(K mat.Matrix, data []float64) error
	Solve(reg float64) (*mat.VecDense, error)
}

// MLESolver can score a fit by maximum likelihood
type MLESolver interface {
	CalcMLEObjective(reg float64) float64
}

// NewPlainSolver returns the eigen solver for symmetric (global length
// parameter) dense systems, LU for local dense systems and BiCGSTAB for
// sparse systems.
func NewPlainSolver(kind Kind, globalLength bool) (PlainSolver, error) {
	switch kind {
	case PlainDense:
		if globalLength {
			return NewEigenSolver(), nil
		}
		return NewLUSolver(), nil
	case PlainSparse:
		return NewBiCGSTABSolver(), nil
	}
	return nil, fmt.Errorf("%v is not a plain solver kind: %w", kind, ErrInvalidArgument)
}
