// Package lengthparam computes the length (shape) parameters that divide
// inter-sample distances before they reach a kernel.
package lengthparam

import (
	"fmt"
	"math"

	"github.com/notargets/RBFKernel/utils"
)

// DefaultScale multiplies the nearest neighbour distance unless changed
const DefaultScale = 10.

// Calculator is shared by the global, local and identity strategies
type Calculator interface {
	// Compute recomputes the parameters for a sample set. It is cheap to call
	// again with the same samples after a scale change.
	Compute(samples [][]float64, dist utils.DistanceFunction) error
	// At returns the length parameter for sample i
	At(i int) float64
	Scale() float64
	SetScale(value float64) error
	// UsesGlobal is true when At does not depend on i, which makes the
	// kernel matrix symmetric.
	UsesGlobal() bool
}

func validateScale(value float64) error {
	if !(value > 0) || math.IsInf(value, 1) {
		return fmt.Errorf("scale of length parameters must be a positive number, got %v: %w",
			value, utils.ErrInvalidArgument)
	}
	return nil
}

// nearestDistances caches the nearest neighbour distance of every sample.
// Euclidean sample sets are keyed by fingerprint so that scale sweeps reuse
// the neighbour search; other distance functions are always rescanned.
type nearestDistances struct {
	fingerprint [32]byte
	distances   []float64
}

func (nd *nearestDistances) compute(samples [][]float64, dist utils.DistanceFunction) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no sample point is given: %w", utils.ErrInvalidArgument)
	}
	if !utils.IsEuclidean(dist) {
		nd.distances = nil
		return bruteForceNearest(samples, dist), nil
	}
	fp := utils.Fingerprint(samples)
	if nd.distances != nil && fp == nd.fingerprint {
		return nd.distances, nil
	}
	if _, err := utils.Dimensions(samples); err != nil {
		return nil, err
	}
	nd.distances = utils.NewNeighborSearcher(samples).NearestNeighborDistances()
	nd.fingerprint = fp
	return nd.distances, nil
}

func bruteForceNearest(samples [][]float64, dist utils.DistanceFunction) []float64 {
	out := make([]float64, len(samples))
	for i := range samples {
		minDistance := math.Inf(1)
		for j := range samples {
			if i == j {
				continue
			}
			if d := dist.Distance(samples[i], samples[j]); d < minDistance {
				minDistance = d
			}
		}
		out[i] = minDistance
	}
	return out
}
