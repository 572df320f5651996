package polynomial

import (
	"fmt"

	"github.com/notargets/RBFKernel/utils"
	"gonum.org/v1/gonum/mat"
)

// Generator enumerates every term of total degree <= MaxDegree in a fixed
// dimension. The last dimension varies fastest, so in two dimensions with
// degree 2 the order is [0 0] [0 1] [0 2] [1 0] [1 1] [2 0].
type Generator struct {
	Dims      int
	MaxDegree int
	terms     []Term
}

func NewGenerator(dims, maxDegree int) (*Generator, error) {
	if dims < 1 {
		return nil, fmt.Errorf("polynomial terms need at least one dimension, got %d: %w",
			dims, utils.ErrInvalidArgument)
	}
	if maxDegree < 0 {
		return nil, fmt.Errorf("maximum degree of polynomials must be at least zero, got %d: %w",
			maxDegree, utils.ErrInvalidArgument)
	}
	numTerms, err := utils.Combination(dims+maxDegree, maxDegree)
	if err != nil {
		return nil, err
	}
	g := &Generator{Dims: dims, MaxDegree: maxDegree, terms: make([]Term, 0, numTerms)}
	g.generate()
	if len(g.terms) != numTerms {
		panic(fmt.Sprintf("generated %d polynomial terms, expected %d", len(g.terms), numTerms))
	}
	return g, nil
}

func (g *Generator) generate() {
	degrees := make([]int, g.Dims)
	maxDegrees := make([]int, g.Dims)
	for k := range maxDegrees {
		maxDegrees[k] = g.MaxDegree
	}
	for {
		g.terms = append(g.terms, Term{Degrees: append([]int(nil), degrees...)})
		k := g.Dims - 1
		for ; k >= 0; k-- {
			if degrees[k] < maxDegrees[k] {
				degrees[k]++
				break
			}
		}
		if k < 0 {
			return
		}
		for k++; k < g.Dims; k++ {
			maxDegrees[k] = maxDegrees[k-1] - degrees[k-1]
			degrees[k] = 0
		}
	}
}

func (g *Generator) Terms() []Term { return g.terms }

func (g *Generator) NumTerms() int { return len(g.terms) }

// TermMatrix returns P with P[i][j] = term_j(x_i)
func (g *Generator) TermMatrix(samples [][]float64) *mat.Dense {
	P := mat.NewDense(len(samples), len(g.terms), nil)
	for i, x := range samples {
		for j, term := range g.terms {
			P.Set(i, j, term.Evaluate(x))
		}
	}
	return P
}

// Evaluate returns sum_j coeffs[j]*term_j(x)
func (g *Generator) Evaluate(x []float64, coeffs mat.Vector) float64 {
	var value float64
	for j, term := range g.terms {
		value += coeffs.AtVec(j) * term.Evaluate(x)
	}
	return value
}

// EvaluateDerivative returns sum_j coeffs[j]*D^orders term_j(x)
func (g *Generator) EvaluateDerivative(orders []int, x []float64, coeffs mat.Vector) float64 {
	var value float64
	for j, term := range g.terms {
		if c := coeffs.AtVec(j); c != 0 {
			value += c * term.EvaluateDerivative(orders, x)
		}
	}
	return value
}
