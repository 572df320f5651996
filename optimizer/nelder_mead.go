package optimizer

import (
	"fmt"
	"math"

	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/optimize"
)

// NelderMead runs gonum's downhill simplex from the centre of the box.
// Trial points outside the box are clamped before the objective sees them,
// so the reported optimum always lies inside.
type NelderMead struct {
	Objective Objective

	logger         *zap.Logger
	lower, upper   []float64
	optVariable    []float64
	optValue       float64
	evaluations    int
	maxEvaluations int
}

func NewNelderMead(objective Objective, logger *zap.Logger) *NelderMead {
	if objective == nil {
		panic("nil objective")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NelderMead{
		Objective:      objective,
		logger:         logger.Named("nelder_mead"),
		maxEvaluations: DefaultMaxEvaluations,
	}
}

func (nm *NelderMead) Init(lower, upper []float64) error {
	if err := validateBox(lower, upper); err != nil {
		return err
	}
	nm.lower = append([]float64(nil), lower...)
	nm.upper = append([]float64(nil), upper...)
	nm.optVariable = nil
	nm.optValue = math.Inf(1)
	nm.evaluations = 0
	return nil
}

func (nm *NelderMead) MaxEvaluations(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("maximum evaluations must be positive, got %d", n))
	}
	nm.maxEvaluations = n
}

func (nm *NelderMead) clamp(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Min(math.Max(v, nm.lower[i]), nm.upper[i])
	}
	return out
}

func (nm *NelderMead) evaluate(x []float64) float64 {
	clamped := nm.clamp(x)
	value := nm.Objective(clamped)
	nm.evaluations++
	if value < nm.optValue || nm.optVariable == nil {
		nm.optVariable = clamped
		nm.optValue = value
	}
	nm.logger.Debug("evaluation",
		zap.Int("evaluation", nm.evaluations),
		zap.Float64s("x", clamped),
		zap.Float64("value", value))
	return value
}

func (nm *NelderMead) Solve() error {
	if nm.lower == nil {
		return fmt.Errorf("Init must be called before solving: %w", utils.ErrPreconditionNotSatisfied)
	}
	dims := len(nm.lower)
	x0 := make([]float64, dims)
	var widest float64
	for i := range x0 {
		x0[i] = 0.5 * (nm.lower[i] + nm.upper[i])
		widest = math.Max(widest, nm.upper[i]-nm.lower[i])
	}
	problem := optimize.Problem{Func: nm.evaluate}
	settings := &optimize.Settings{FuncEvaluations: nm.maxEvaluations}
	method := &optimize.NelderMead{SimplexSize: 0.25 * widest}
	if _, err := optimize.Minimize(problem, x0, settings, method); err != nil {
		return fmt.Errorf("nelder-mead: %v: %w", err, utils.ErrAlgorithmFailure)
	}
	nm.logger.Debug("solved",
		zap.Int("evaluations", nm.evaluations),
		zap.Float64s("opt_variable", nm.optVariable),
		zap.Float64("opt_value", nm.optValue))
	return nil
}

func (nm *NelderMead) OptVariable() []float64 { return nm.optVariable }
func (nm *NelderMead) OptValue() float64      { return nm.optValue }
func (nm *NelderMead) Evaluations() int       { return nm.evaluations }
