package rbfs

import (
	"fmt"

	"github.com/notargets/RBFKernel/utils"
)

const machineEpsilon = 0x1p-52

// Wendland is the compactly supported kernel phi_{L,K} with support [0, 1).
// K selects the smoothness (0, 1 or 2), L >= 1 the exponent of (1 - r).
type Wendland struct {
	L, K int
}

func NewWendland(l, k int) (Wendland, error) {
	if l < 1 || k < 0 || k > 2 {
		return Wendland{}, fmt.Errorf("wendland kernel needs L >= 1 and K in [0,2], got L=%d K=%d: %w",
			l, k, utils.ErrInvalidArgument)
	}
	return Wendland{L: l, K: k}, nil
}

func (w Wendland) SupportBoundary() float64 { return 1 }

func (w Wendland) Evaluate(r float64) float64 {
	if r > 1 {
		return 0
	}
	l := float64(w.L)
	switch w.K {
	case 0:
		return pow(1-r, w.L)
	case 1:
		scale := 1 / ((l + 1) * (l + 2))
		return scale * pow(1-r, w.L+1) * ((l+1)*r + 1)
	case 2:
		scale := 1 / ((l + 1) * (l + 2) * (l + 3) * (l + 4))
		return scale * pow(1-r, w.L+2) *
			((l+1)*(l+3)*r*r + 3*(l+2)*r + 3)
	}
	panic(fmt.Sprintf("unsupported wendland smoothness K=%d", w.K))
}

func (w Wendland) Derivative() Kernel {
	if w.K == 0 {
		return WendlandBase{L: w.L}
	}
	return Wendland{L: w.L, K: w.K - 1}
}

func (w Wendland) CSource(r string) string {
	l := float64(w.L)
	switch w.K {
	case 0:
		return fmt.Sprintf("((%s)>1.0?0.0:pow(1.0-(%s),%d.0))", r, r, w.L)
	case 1:
		return fmt.Sprintf("((%s)>1.0?0.0:%.17g*pow(1.0-(%s),%d.0)*(%.17g*(%s)+1.0))",
			r, 1/((l+1)*(l+2)), r, w.L+1, l+1, r)
	default:
		return fmt.Sprintf("((%s)>1.0?0.0:%.17g*pow(1.0-(%s),%d.0)*(%.17g*(%s)*(%s)+%.17g*(%s)+3.0))",
			r, 1/((l+1)*(l+2)*(l+3)*(l+4)), r, w.L+2, (l+1)*(l+3), r, r, 3*(l+2), r)
	}
}

// WendlandBase is L*(1-r)^(L-1)/r, the derivative of the K = 0 Wendland
// kernel. It ends the derivative chain.
type WendlandBase struct {
	L int
}

func (w WendlandBase) SupportBoundary() float64 { return 1 }

func (w WendlandBase) Evaluate(r float64) float64 {
	if r > 1 || r < machineEpsilon {
		return 0
	}
	return float64(w.L) * pow(1-r, w.L-1) / r
}
