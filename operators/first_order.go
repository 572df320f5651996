package operators

import (
	"fmt"

	"github.com/notargets/RBFKernel/polynomial"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"gonum.org/v1/gonum/mat"
)

// FunctionValue is the interpolant itself
type FunctionValue struct{ Q []float64 }

func (op FunctionValue) Point() []float64 { return op.Q }
func (FunctionValue) Order() int          { return 0 }
func (FunctionValue) Zero(int) Value      { return NewScalar(0) }

func (op FunctionValue) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewScalar(0), err
	}
	return NewScalar(coeff * kernels[0].Evaluate(r)), nil
}

func (op FunctionValue) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	return NewScalar(gen.Evaluate(op.Q, coeffs))
}

// Gradient with respect to the query point
type Gradient struct{ Q []float64 }

func (op Gradient) Point() []float64 { return op.Q }
func (Gradient) Order() int          { return 1 }
func (Gradient) Zero(dims int) Value { return NewVector(make([]float64, dims)) }

func (op Gradient) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	grad := make([]float64, len(op.Q))
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewVector(grad), err
	}
	factor := -coeff * kernels[1].Evaluate(r) / (l * l)
	for i := range grad {
		grad[i] = factor * (op.Q[i] - sample[i])
	}
	return NewVector(grad), nil
}

func (op Gradient) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	dims := len(op.Q)
	grad := make([]float64, dims)
	for i := range grad {
		grad[i] = gen.EvaluateDerivative(unitOrders(dims, i), op.Q, coeffs)
	}
	return NewVector(grad)
}

// PartialDerivative is the first derivative in dimension Dim
type PartialDerivative struct {
	Q   []float64
	Dim int
}

func (op PartialDerivative) Point() []float64 { return op.Q }
func (PartialDerivative) Order() int          { return 1 }
func (PartialDerivative) Zero(int) Value      { return NewScalar(0) }

func (op PartialDerivative) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	if op.Dim < 0 || op.Dim >= len(op.Q) {
		return Value{}, fmt.Errorf("partial derivative in dimension %d of %d: %w",
			op.Dim, len(op.Q), utils.ErrInvalidArgument)
	}
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewScalar(0), err
	}
	return NewScalar(-coeff * kernels[1].Evaluate(r) * (op.Q[op.Dim] - sample[op.Dim]) / (l * l)), nil
}

func (op PartialDerivative) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	return NewScalar(gen.EvaluateDerivative(unitOrders(len(op.Q), op.Dim), op.Q, coeffs))
}
