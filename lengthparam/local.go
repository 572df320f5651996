package lengthparam

import (
	"fmt"

	"github.com/notargets/RBFKernel/utils"
)

// Local uses scale * min_{j!=i} d(x_i, x_j) for sample i
type Local struct {
	scale            float64
	lengthParameters []float64
	nearest          nearestDistances
}

func NewLocal() *Local { return &Local{scale: DefaultScale} }

func (l *Local) Compute(samples [][]float64, dist utils.DistanceFunction) error {
	distances, err := l.nearest.compute(samples, dist)
	if err != nil {
		return err
	}
	l.lengthParameters = make([]float64, len(distances))
	for i, d := range distances {
		if d <= 0 {
			return fmt.Errorf("sample %d duplicates another sample: %w", i, utils.ErrInvalidArgument)
		}
		l.lengthParameters[i] = l.scale * d
	}
	return nil
}

func (l *Local) At(i int) float64 { return l.lengthParameters[i] }

func (l *Local) Scale() float64 { return l.scale }

func (l *Local) SetScale(value float64) error {
	if err := validateScale(value); err != nil {
		return err
	}
	l.scale = value
	return nil
}

func (l *Local) UsesGlobal() bool { return false }

// LengthParameters returns the per-sample values of the last Compute
func (l *Local) LengthParameters() []float64 { return l.lengthParameters }
