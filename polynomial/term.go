// Package polynomial enumerates, evaluates and differentiates the monomial
// terms used to augment RBF interpolants.
package polynomial

import "fmt"

// Term is the monomial prod_k x_k^Degrees[k]
type Term struct {
	Degrees []int
}

func (t Term) Dimensions() int { return len(t.Degrees) }

// TotalDegree is the sum of the per-dimension degrees
func (t Term) TotalDegree() int {
	var sum int
	for _, d := range t.Degrees {
		sum += d
	}
	return sum
}

func (t Term) Evaluate(x []float64) float64 {
	if len(x) != len(t.Degrees) {
		panic(fmt.Sprintf("term of dimension %d evaluated at a point of dimension %d",
			len(t.Degrees), len(x)))
	}
	value := 1.
	for k, d := range t.Degrees {
		for i := 0; i < d; i++ {
			value *= x[k]
		}
	}
	return value
}

// Differentiate applies d^orders[k]/dx_k^orders[k] for every k. The result
// is coeff times the returned term; ok is false when the derivative
// vanishes because some order exceeds the degree in that dimension.
func (t Term) Differentiate(orders []int) (coeff float64, term Term, ok bool) {
	if len(orders) != len(t.Degrees) {
		panic(fmt.Sprintf("term of dimension %d differentiated with %d orders",
			len(t.Degrees), len(orders)))
	}
	coeff = 1
	degrees := make([]int, len(t.Degrees))
	for k, d := range t.Degrees {
		o := orders[k]
		if o > d {
			return 0, Term{}, false
		}
		for i := d - o + 1; i <= d; i++ {
			coeff *= float64(i)
		}
		degrees[k] = d - o
	}
	return coeff, Term{Degrees: degrees}, true
}

// EvaluateDerivative returns the value of the differentiated term at x
func (t Term) EvaluateDerivative(orders []int, x []float64) float64 {
	coeff, dt, ok := t.Differentiate(orders)
	if !ok {
		return 0
	}
	return coeff * dt.Evaluate(x)
}

func (t Term) String() string {
	return fmt.Sprint(t.Degrees)
}
