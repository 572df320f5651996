package lengthparam

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/notargets/RBFKernel/utils"
)

// Global uses scale * max_i(min_{j!=i} d(x_i, x_j)) for every sample
type Global struct {
	scale           float64
	lengthParameter float64
	nearest         nearestDistances
}

func NewGlobal() *Global { return &Global{scale: DefaultScale} }

func (g *Global) Compute(samples [][]float64, dist utils.DistanceFunction) error {
	distances, err := g.nearest.compute(samples, dist)
	if err != nil {
		return err
	}
	maxMin, err := stats.Max(stats.Float64Data(distances))
	if err != nil {
		return fmt.Errorf("max of nearest neighbour distances: %w", err)
	}
	if maxMin <= 0 {
		return fmt.Errorf("all sample points coincide: %w", utils.ErrInvalidArgument)
	}
	g.lengthParameter = g.scale * maxMin
	return nil
}

func (g *Global) At(int) float64 { return g.lengthParameter }

func (g *Global) Scale() float64 { return g.scale }

func (g *Global) SetScale(value float64) error {
	if err := validateScale(value); err != nil {
		return err
	}
	g.scale = value
	return nil
}

func (g *Global) UsesGlobal() bool { return true }
