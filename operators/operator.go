// Package operators evaluates linear differential operators of a fitted
// RBF interpolant at a query point. Every operator sums closed form
// contributions of the samples, written in terms of the kernel derivative
// chain psi_n, plus the matching derivative of the polynomial part.
//
// Derivatives assume Euclidean distance: diff = q - x is used together
// with r = d(q, x)/l.
package operators

import (
	"fmt"

	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/polynomial"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"gonum.org/v1/gonum/mat"
)

// Evaluator is implemented by every operator
type Evaluator interface {
	// Point is the query point
	Point() []float64
	// Order is the number of kernel derivatives the operator needs
	Order() int
	Zero(dims int) Value
	// EvaluateForOneSample is the contribution coeff * L phi(d(q, sample)/l),
	// where kernels is the derivative chain of phi up to Order.
	EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
		sample []float64, coeff float64) (Value, error)
	EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value
}

// Fit is a solved interpolant as the operators see it
type Fit struct {
	Dist         utils.DistanceFunction
	Kernel       rbfs.Kernel
	Length       lengthparam.Calculator
	Samples      [][]float64
	Coefficients []float64
	// Polynomial is nil for interpolants without polynomial terms
	Polynomial             *polynomial.Generator
	PolynomialCoefficients mat.Vector
}

// Evaluate applies op to the interpolant
func Evaluate(op Evaluator, fit Fit) (Value, error) {
	if len(fit.Samples) == 0 || len(fit.Coefficients) != len(fit.Samples) {
		return Value{}, fmt.Errorf("operator evaluated on an interpolant without a fit: %w",
			utils.ErrPreconditionNotSatisfied)
	}
	dims := len(fit.Samples[0])
	if len(op.Point()) != dims {
		return Value{}, fmt.Errorf("query point has dimension %d, samples %d: %w",
			len(op.Point()), dims, utils.ErrInvalidArgument)
	}
	kernels, err := rbfs.DerivativeChain(fit.Kernel, op.Order())
	if err != nil {
		return Value{}, err
	}
	sum := op.Zero(dims)
	for i, sample := range fit.Samples {
		v, err := op.EvaluateForOneSample(fit.Dist, kernels, fit.Length.At(i), sample, fit.Coefficients[i])
		if err != nil {
			return Value{}, err
		}
		sum.Add(v)
	}
	if fit.Polynomial != nil {
		sum.Add(op.EvaluatePolynomial(fit.Polynomial, fit.PolynomialCoefficients))
	}
	return sum, nil
}

// rate computes r = d(q, x)/l and reports whether the sample contributes
func rate(dist utils.DistanceFunction, kernel rbfs.Kernel, l float64, q, x []float64) (float64, bool, error) {
	if !(l > 0) {
		return 0, false, fmt.Errorf("length parameter must be positive, got %g: %w", l, utils.ErrInvalidArgument)
	}
	r := dist.Distance(q, x) / l
	return r, rbfs.InSupport(kernel, r), nil
}

func difference(q, x []float64) []float64 {
	diff := make([]float64, len(q))
	for i := range q {
		diff[i] = q[i] - x[i]
	}
	return diff
}

func unitOrders(dims int, increments ...int) []int {
	orders := make([]int, dims)
	for _, k := range increments {
		orders[k]++
	}
	return orders
}
