// Package optimizer holds the box constrained minimizers used to tune the
// length parameter scale of the interpolators.
package optimizer

import (
	"fmt"
	"strings"

	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
)

// Objective is minimized over a box
type Objective func(x []float64) float64

// BoxOptimizer minimizes an Objective inside [lower, upper]
type BoxOptimizer interface {
	Init(lower, upper []float64) error
	MaxEvaluations(n int)
	Solve() error
	OptVariable() []float64
	OptValue() float64
	Evaluations() int
}

// Methods accepted by New
const (
	MethodDividingRectangles = "dividing_rectangles"
	MethodNelderMead         = "nelder_mead"
)

// New returns the optimizer named by method
func New(method string, objective Objective, logger *zap.Logger) (BoxOptimizer, error) {
	if err := ValidateMethod(method); err != nil {
		return nil, err
	}
	if strings.ToLower(method) == MethodNelderMead {
		return NewNelderMead(objective, logger), nil
	}
	return NewDividingRectangles(objective, logger), nil
}

func ValidateMethod(method string) error {
	switch strings.ToLower(method) {
	case MethodDividingRectangles, MethodNelderMead:
		return nil
	}
	return fmt.Errorf("unknown optimizer %q: %w", method, utils.ErrInvalidArgument)
}

// DefaultMaxEvaluations bounds Solve when MaxEvaluations was not called
const DefaultMaxEvaluations = 1000

func validateBox(lower, upper []float64) error {
	if len(lower) == 0 || len(lower) != len(upper) {
		return fmt.Errorf("box bounds have dimensions %d and %d: %w",
			len(lower), len(upper), utils.ErrInvalidArgument)
	}
	for i := range lower {
		if !(lower[i] < upper[i]) {
			return fmt.Errorf("empty box in dimension %d: [%g, %g]: %w",
				i, lower[i], upper[i], utils.ErrInvalidArgument)
		}
	}
	return nil
}
