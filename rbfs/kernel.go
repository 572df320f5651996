// Package rbfs holds the radial kernels and their derivative chains. A
// kernel is a function of the distance rate r = d/l, r >= 0.
package rbfs

import (
	"fmt"

	"github.com/notargets/RBFKernel/utils"
)

// Kernel evaluates a radial basis function at a distance rate
type Kernel interface {
	Evaluate(r float64) float64
}

// Differentiable kernels provide psi(r) = -phi'(r)/r, which is again a
// radial kernel. Chaining Derivative yields the factors needed by the
// differential operators up to fourth order.
type Differentiable interface {
	Kernel
	Derivative() Kernel
}

// CompactlySupported kernels vanish for r >= SupportBoundary()
type CompactlySupported interface {
	Kernel
	SupportBoundary() float64
}

// CSourcer kernels can emit a C expression in the named variable for the
// device assembly path.
type CSourcer interface {
	Kernel
	CSource(r string) string
}

// Differentiate applies the derivative chain order times
func Differentiate(k Kernel, order int) (Kernel, error) {
	if order < 0 {
		return nil, fmt.Errorf("negative derivative order %d: %w", order, utils.ErrInvalidArgument)
	}
	for i := 0; i < order; i++ {
		d, ok := k.(Differentiable)
		if !ok {
			return nil, fmt.Errorf("%T is not differentiable %d times: %w",
				k, order, utils.ErrInvalidArgument)
		}
		k = d.Derivative()
	}
	return k, nil
}

// DerivativeChain returns the kernel followed by its first order
// derivatives: chain[n] is the n-th derivative.
func DerivativeChain(k Kernel, order int) ([]Kernel, error) {
	chain := make([]Kernel, order+1)
	chain[0] = k
	for n := 1; n <= order; n++ {
		d, err := Differentiate(chain[n-1], 1)
		if err != nil {
			return nil, err
		}
		chain[n] = d
	}
	return chain, nil
}

// SupportBoundary returns the support boundary of a compactly supported
// kernel, ok is false for globally supported kernels.
func SupportBoundary(k Kernel) (boundary float64, ok bool) {
	if cs, is := k.(CompactlySupported); is {
		return cs.SupportBoundary(), true
	}
	return 0, false
}

// InSupport reports whether r contributes for kernel k
func InSupport(k Kernel, r float64) bool {
	if b, ok := SupportBoundary(k); ok {
		return r < b
	}
	return true
}
