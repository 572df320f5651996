package rbfs

import (
	"fmt"
	"math"
)

// InversePower is c*(1 + r^2)^(-p). The inverse quadratic, inverse
// multiquadric and multiquadric kernels are members of this family.
type InversePower struct {
	coeff, power float64
}

func NewInversePower(coeff, power float64) InversePower {
	return InversePower{coeff: coeff, power: power}
}

func NewInverseQuadratic() InversePower { return InversePower{coeff: 1, power: 1} }

func NewInverseMultiquadric() InversePower { return InversePower{coeff: 1, power: 0.5} }

// NewMultiquadric is -sqrt(1 + r^2), negated so that the kernel matrix is
// conditionally positive definite.
func NewMultiquadric() InversePower { return InversePower{coeff: -1, power: -0.5} }

func (ip InversePower) Coefficient() float64 { return ip.coeff }
func (ip InversePower) Power() float64       { return ip.power }

func (ip InversePower) Evaluate(r float64) float64 {
	base := 1 + r*r
	switch ip.power {
	case 1:
		return ip.coeff / base
	case 0.5:
		return ip.coeff / math.Sqrt(base)
	case -0.5:
		return ip.coeff * math.Sqrt(base)
	}
	return ip.coeff * math.Pow(base, -ip.power)
}

func (ip InversePower) Derivative() Kernel {
	return InversePower{coeff: 2 * ip.power * ip.coeff, power: ip.power + 1}
}

func (ip InversePower) CSource(r string) string {
	return fmt.Sprintf("(%.17g*pow(1.0+(%s)*(%s),%.17g))", ip.coeff, r, r, -ip.power)
}
