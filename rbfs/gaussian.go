package rbfs

import (
	"fmt"
	"math"
)

// Gaussian is c*exp(-r^2)
type Gaussian struct {
	coeff float64
}

func NewGaussian() Gaussian { return Gaussian{coeff: 1} }

func (g Gaussian) Coefficient() float64 { return g.coeff }

func (g Gaussian) Evaluate(r float64) float64 { return g.coeff * math.Exp(-r*r) }

func (g Gaussian) Derivative() Kernel { return Gaussian{coeff: 2 * g.coeff} }

func (g Gaussian) CSource(r string) string {
	return fmt.Sprintf("(%.17g*exp(-(%s)*(%s)))", g.coeff, r, r)
}

// GaussianM1 is c*(exp(-r^2) - 1), which vanishes at the origin
type GaussianM1 struct {
	coeff float64
}

func NewGaussianM1() GaussianM1 { return GaussianM1{coeff: 1} }

func (g GaussianM1) Evaluate(r float64) float64 { return g.coeff * math.Expm1(-r*r) }

func (g GaussianM1) Derivative() Kernel { return Gaussian{coeff: 2 * g.coeff} }

func (g GaussianM1) CSource(r string) string {
	return fmt.Sprintf("(%.17g*expm1(-(%s)*(%s)))", g.coeff, r, r)
}

// GaussianFromSquare is c*(exp(-r^2) - 1 + r^2), the Gaussian with its
// first two Taylor terms removed.
type GaussianFromSquare struct {
	coeff float64
}

func NewGaussianFromSquare() GaussianFromSquare { return GaussianFromSquare{coeff: 1} }

func (g GaussianFromSquare) Evaluate(r float64) float64 {
	r2 := r * r
	return g.coeff * (math.Expm1(-r2) + r2)
}

func (g GaussianFromSquare) Derivative() Kernel { return GaussianM1{coeff: 2 * g.coeff} }

func (g GaussianFromSquare) CSource(r string) string {
	return fmt.Sprintf("(%.17g*(expm1(-(%s)*(%s))+(%s)*(%s)))", g.coeff, r, r, r, r)
}
