package operators

import (
	"fmt"

	"github.com/notargets/RBFKernel/polynomial"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"gonum.org/v1/gonum/mat"
)

// Biharmonic is the Laplacian applied twice
type Biharmonic struct{ Q []float64 }

func (op Biharmonic) Point() []float64 { return op.Q }
func (Biharmonic) Order() int          { return 4 }
func (Biharmonic) Zero(int) Value      { return NewScalar(0) }

func (op Biharmonic) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewScalar(0), err
	}
	dims := float64(len(op.Q))
	r2 := r * r
	psi2, psi3, psi4 := kernels[2].Evaluate(r), kernels[3].Evaluate(r), kernels[4].Evaluate(r)
	v := psi4*r2*r2 - psi3*(2*dims+4)*r2 + psi2*(dims*dims+2*dims)
	return NewScalar(coeff * v / (l * l * l * l)), nil
}

func (op Biharmonic) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	dims := len(op.Q)
	var sum float64
	for i := 0; i < dims; i++ {
		for j := 0; j < dims; j++ {
			sum += gen.EvaluateDerivative(unitOrders(dims, i, i, j, j), op.Q, coeffs)
		}
	}
	return NewScalar(sum)
}

// LaplacianGradient is the gradient of the Laplacian
type LaplacianGradient struct{ Q []float64 }

func (op LaplacianGradient) Point() []float64 { return op.Q }
func (LaplacianGradient) Order() int          { return 3 }
func (LaplacianGradient) Zero(dims int) Value { return NewVector(make([]float64, dims)) }

func (op LaplacianGradient) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	out := make([]float64, len(op.Q))
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewVector(out), err
	}
	dims := float64(len(op.Q))
	psi2, psi3 := kernels[2].Evaluate(r), kernels[3].Evaluate(r)
	factor := coeff * (-psi3*r*r + psi2*(dims+2)) / (l * l * l * l)
	for i := range out {
		out[i] = factor * (op.Q[i] - sample[i])
	}
	return NewVector(out), nil
}

func (op LaplacianGradient) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	dims := len(op.Q)
	out := make([]float64, dims)
	for j := range out {
		for k := 0; k < dims; k++ {
			out[j] += gen.EvaluateDerivative(unitOrders(dims, j, k, k), op.Q, coeffs)
		}
	}
	return NewVector(out)
}

// ThirdOrderDerivative is d^3/dx^3 of a one dimensional interpolant
type ThirdOrderDerivative struct{ Q []float64 }

func (op ThirdOrderDerivative) Point() []float64 { return op.Q }
func (ThirdOrderDerivative) Order() int          { return 3 }
func (ThirdOrderDerivative) Zero(int) Value      { return NewScalar(0) }

func (op ThirdOrderDerivative) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	if len(op.Q) != 1 {
		return Value{}, fmt.Errorf("third order derivative needs one dimensional samples, got %d: %w",
			len(op.Q), utils.ErrInvalidArgument)
	}
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewScalar(0), err
	}
	diff := op.Q[0] - sample[0]
	l2 := l * l
	psi2, psi3 := kernels[2].Evaluate(r), kernels[3].Evaluate(r)
	v := -psi3*diff*diff*diff/(l2*l2*l2) + 3*psi2*diff/(l2*l2)
	return NewScalar(coeff * v), nil
}

func (op ThirdOrderDerivative) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	return NewScalar(gen.EvaluateDerivative([]int{3}, op.Q, coeffs))
}
