package rbfs

import (
	"fmt"
	"math"

	"github.com/notargets/RBFKernel/utils"
)

// logPowerSmallRate replaces r = 0 when the exponent is negative
const logPowerSmallRate = 1e-50

// LogPower is r^k * (a + b*log(r)). Thin plate splines and all of their
// derivatives belong to this family, which is closed under differentiation:
// -phi'(r)/r = r^(k-2) * (-(k*a + b) - k*b*log(r)).
type LogPower struct {
	A, B float64
	K    int
}

func (lp LogPower) Evaluate(r float64) float64 {
	if r == 0 {
		switch {
		case lp.K > 0:
			return 0
		case lp.K == 0:
			return lp.A
		default:
			r = logPowerSmallRate
		}
	}
	value := lp.A
	if lp.B != 0 {
		value += lp.B * math.Log(r)
	}
	return pow(r, lp.K) * value
}

func (lp LogPower) Derivative() Kernel {
	k := float64(lp.K)
	return LogPower{A: -(k*lp.A + lp.B), B: -k * lp.B, K: lp.K - 2}
}

// pow is r^k for integer k
func pow(r float64, k int) float64 {
	if k < 0 {
		return 1 / pow(r, -k)
	}
	result := 1.
	for ; k > 0; k-- {
		result *= r
	}
	return result
}

// ThinPlateSplineCoefficient is the normalisation constant of the
// polyharmonic fundamental solution of degree n in dimension d.
func ThinPlateSplineCoefficient(dim, degree int) float64 {
	if dim%2 == 0 {
		sign := 1.
		if (dim/2+1+degree)%2 != 0 {
			sign = -1
		}
		denominator := math.Pow(2, float64(2*degree-1)) *
			math.Pow(math.Pi, float64(dim/2)) *
			factorial(degree-1) * factorial(degree-dim/2)
		return sign / denominator
	}
	numerator := math.Gamma(float64((dim-1)/2-degree) + 0.5)
	denominator := math.Pow(2, float64(2*degree)) *
		math.Pow(math.Pi, float64(dim)/2) *
		factorial(degree-1)
	return numerator / denominator
}

func factorial(n int) float64 {
	result := 1.
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

// NewThinPlateSpline returns the thin plate spline of the given degree for
// the given dimension, C*r^(2n-d)*log(r) for even d and C*r^(2n-d) for odd d.
func NewThinPlateSpline(dim, degree int) (LogPower, error) {
	if dim <= 0 || degree <= 0 || 2*degree <= dim {
		return LogPower{}, fmt.Errorf("thin plate spline needs 2*degree > dimension > 0, got dimension %d degree %d: %w",
			dim, degree, utils.ErrInvalidArgument)
	}
	c := ThinPlateSplineCoefficient(dim, degree)
	if dim%2 == 0 {
		return LogPower{A: 0, B: c, K: 2*degree - dim}, nil
	}
	return LogPower{A: c, B: 0, K: 2*degree - dim}, nil
}
