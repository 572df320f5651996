package operators

import (
	"github.com/notargets/RBFKernel/polynomial"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"gonum.org/v1/gonum/mat"
)

type Laplacian struct{ Q []float64 }

func (op Laplacian) Point() []float64 { return op.Q }
func (Laplacian) Order() int          { return 2 }
func (Laplacian) Zero(int) Value      { return NewScalar(0) }

func (op Laplacian) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewScalar(0), err
	}
	dims := float64(len(op.Q))
	psi1, psi2 := kernels[1].Evaluate(r), kernels[2].Evaluate(r)
	return NewScalar(coeff * (psi2*r*r - dims*psi1) / (l * l)), nil
}

func (op Laplacian) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	dims := len(op.Q)
	var sum float64
	for i := 0; i < dims; i++ {
		sum += gen.EvaluateDerivative(unitOrders(dims, i, i), op.Q, coeffs)
	}
	return NewScalar(sum)
}

// Hessian is the symmetric matrix of second derivatives
type Hessian struct{ Q []float64 }

func (op Hessian) Point() []float64 { return op.Q }
func (Hessian) Order() int          { return 2 }
func (Hessian) Zero(dims int) Value { return NewMatrix(mat.NewDense(dims, dims, nil)) }

func (op Hessian) EvaluateForOneSample(dist utils.DistanceFunction, kernels []rbfs.Kernel, l float64,
	sample []float64, coeff float64) (Value, error) {
	dims := len(op.Q)
	H := mat.NewDense(dims, dims, nil)
	r, in, err := rate(dist, kernels[0], l, op.Q, sample)
	if err != nil || !in {
		return NewMatrix(H), err
	}
	l2 := l * l
	psi1, psi2 := kernels[1].Evaluate(r), kernels[2].Evaluate(r)
	diff := difference(op.Q, sample)
	for j := 0; j < dims; j++ {
		for k := j; k < dims; k++ {
			v := psi2 / l2 * diff[j] * diff[k]
			if j == k {
				v -= psi1
			}
			H.Set(j, k, coeff*v/l2)
			H.Set(k, j, coeff*v/l2)
		}
	}
	return NewMatrix(H), nil
}

func (op Hessian) EvaluatePolynomial(gen *polynomial.Generator, coeffs mat.Vector) Value {
	dims := len(op.Q)
	H := mat.NewDense(dims, dims, nil)
	for j := 0; j < dims; j++ {
		for k := j; k < dims; k++ {
			v := gen.EvaluateDerivative(unitOrders(dims, j, k), op.Q, coeffs)
			H.Set(j, k, v)
			H.Set(k, j, v)
		}
	}
	return NewMatrix(H)
}
