package optimizer

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
)

// DefaultMinRateImprovement is the relative improvement over the current
// optimum a rectangle must promise to be divided.
const DefaultMinRateImprovement = 1e-4

// rectangle lives in the unit hypercube; value is the objective at its
// centre and dist the distance from the centre to a vertex.
type rectangle struct {
	lower, upper []float64
	dist         float64
	value        float64
}

func newRectangle(lower, upper []float64, value float64) *rectangle {
	var sum float64
	for i := range lower {
		w := upper[i] - lower[i]
		sum += w * w
	}
	return &rectangle{lower: lower, upper: upper, dist: 0.5 * math.Sqrt(sum), value: value}
}

func (r *rectangle) widestDimension() int {
	var (
		widest   int
		maxWidth float64
	)
	for i := range r.lower {
		if w := r.upper[i] - r.lower[i]; w > maxWidth {
			widest, maxWidth = i, w
		}
	}
	return widest
}

// level is a min-heap by centre value of the rectangles divided the same
// number of times
type level []*rectangle

func (l level) Len() int            { return len(l) }
func (l level) Less(i, j int) bool  { return l[i].value < l[j].value }
func (l level) Swap(i, j int)       { l[i], l[j] = l[j], l[i] }
func (l *level) Push(x interface{}) { *l = append(*l, x.(*rectangle)) }
func (l *level) Pop() interface{} {
	old := *l
	n := len(old)
	r := old[n-1]
	*l = old[:n-1]
	return r
}

func (l level) top() *rectangle { return l[0] }

// DividingRectangles is the DIRECT global optimizer. The box is mapped to
// the unit hypercube, each iteration divides the potentially optimal
// rectangles into thirds along their widest dimension.
type DividingRectangles struct {
	Objective          Objective
	MinRateImprovement float64

	logger         *zap.Logger
	lower, width   []float64
	levels         []*level
	optVariable    []float64
	optValue       float64
	iterations     int
	evaluations    int
	maxEvaluations int
}

func NewDividingRectangles(objective Objective, logger *zap.Logger) *DividingRectangles {
	if objective == nil {
		panic("nil objective")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DividingRectangles{
		Objective:          objective,
		MinRateImprovement: DefaultMinRateImprovement,
		logger:             logger.Named("dividing_rectangles"),
		maxEvaluations:     DefaultMaxEvaluations,
	}
}

// Init evaluates the centre of the box, which becomes the only rectangle
func (d *DividingRectangles) Init(lower, upper []float64) error {
	if err := validateBox(lower, upper); err != nil {
		return err
	}
	dims := len(lower)
	d.lower = append([]float64(nil), lower...)
	d.width = make([]float64, dims)
	centre := make([]float64, dims)
	for i := range lower {
		d.width[i] = upper[i] - lower[i]
		centre[i] = 0.5
	}
	d.optVariable = nil
	d.optValue = math.Inf(1)
	d.iterations = 0
	d.evaluations = 0
	value := d.evaluate(centre)

	unitUpper := make([]float64, dims)
	for i := range unitUpper {
		unitUpper[i] = 1
	}
	first := &level{newRectangle(make([]float64, dims), unitUpper, value)}
	d.levels = []*level{first}
	return nil
}

func (d *DividingRectangles) MaxEvaluations(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("maximum evaluations must be positive, got %d", n))
	}
	d.maxEvaluations = n
}

// evaluate maps a unit hypercube point to the box and tracks the optimum
func (d *DividingRectangles) evaluate(unit []float64) float64 {
	x := make([]float64, len(unit))
	for i, u := range unit {
		x[i] = d.lower[i] + u*d.width[i]
	}
	value := d.Objective(x)
	d.evaluations++
	if value < d.optValue || d.optVariable == nil {
		d.optVariable = x
		d.optValue = value
	}
	d.logger.Debug("evaluation",
		zap.Int("evaluation", d.evaluations),
		zap.Float64s("x", x),
		zap.Float64("value", value))
	return value
}

type candidate struct {
	level int
	slope float64
}

// potentiallyOptimal scans the best rectangle of each level from the
// largest to the smallest, keeping the lower convex hull of (dist, value),
// then drops the rectangles that cannot improve the optimum enough.
func (d *DividingRectangles) potentiallyOptimal() []candidate {
	var hull []candidate
	for i, l := range d.levels {
		if l.Len() == 0 {
			continue
		}
		if len(hull) == 0 {
			hull = append(hull, candidate{level: i, slope: math.MaxFloat64})
			continue
		}
		for {
			last := hull[len(hull)-1]
			larger, smaller := d.levels[last.level].top(), l.top()
			slope := (larger.value - smaller.value) / (larger.dist - smaller.dist)
			if slope <= last.slope {
				hull = append(hull, candidate{level: i, slope: slope})
				break
			}
			hull = hull[:len(hull)-1]
			if len(hull) == 0 {
				hull = append(hull, candidate{level: i, slope: math.MaxFloat64})
				break
			}
		}
	}

	first := hull[0]
	bound := d.optValue - d.MinRateImprovement*math.Abs(d.optValue)
	selected := hull[:0]
	for _, c := range hull {
		top := d.levels[c.level].top()
		if top.value-c.slope*top.dist <= bound {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		// Non-finite objective values, fall back to the largest rectangle.
		selected = append(selected, first)
	}
	return selected
}

// divide trisects the best rectangle of a level. The middle third keeps
// the parent's centre value, the outer thirds are evaluated.
func (d *DividingRectangles) divide(index int) {
	if index+1 == len(d.levels) {
		d.levels = append(d.levels, &level{})
	}
	origin := heap.Pop(d.levels[index]).(*rectangle)
	next := d.levels[index+1]

	dim := origin.widestDimension()
	lowest, uppest := origin.lower[dim], origin.upper[dim]
	width := uppest - lowest
	cuts := [4]float64{lowest, lowest + width/3, lowest + 2*width/3, uppest}

	for k := 0; k < 3; k++ {
		lower := append([]float64(nil), origin.lower...)
		upper := append([]float64(nil), origin.upper...)
		lower[dim], upper[dim] = cuts[k], cuts[k+1]
		value := origin.value
		if k != 1 {
			centre := make([]float64, len(lower))
			for i := range centre {
				centre[i] = 0.5 * (lower[i] + upper[i])
			}
			value = d.evaluate(centre)
		}
		heap.Push(next, newRectangle(lower, upper, value))
	}
}

// Iterate divides every potentially optimal rectangle once, smallest first
func (d *DividingRectangles) Iterate() error {
	if d.levels == nil {
		return fmt.Errorf("Init must be called before iterating: %w", utils.ErrPreconditionNotSatisfied)
	}
	selected := d.potentiallyOptimal()
	for i := len(selected) - 1; i >= 0; i-- {
		d.divide(selected[i].level)
	}
	d.iterations++
	return nil
}

// Solve iterates until the evaluation budget is spent. An iteration is
// never cut short, so the budget can be exceeded by the last one.
func (d *DividingRectangles) Solve() error {
	if d.levels == nil {
		return fmt.Errorf("Init must be called before solving: %w", utils.ErrPreconditionNotSatisfied)
	}
	for d.evaluations < d.maxEvaluations {
		if err := d.Iterate(); err != nil {
			return err
		}
	}
	d.logger.Debug("solved",
		zap.Int("iterations", d.iterations),
		zap.Int("evaluations", d.evaluations),
		zap.Float64s("opt_variable", d.optVariable),
		zap.Float64("opt_value", d.optValue))
	return nil
}

func (d *DividingRectangles) OptVariable() []float64 { return d.optVariable }
func (d *DividingRectangles) OptValue() float64      { return d.optValue }
func (d *DividingRectangles) Evaluations() int       { return d.evaluations }
func (d *DividingRectangles) Iterations() int        { return d.iterations }
