package utils

import (
	"fmt"
	"math"
)

// DistanceFunction measures the distance between two variables. Scalar
// variables are represented as length one slices.
type DistanceFunction interface {
	Distance(a, b []float64) float64
}

// EuclideanDistance is the standard L2 distance
type EuclideanDistance struct{}

func (EuclideanDistance) Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("dimension mismatch: %d vs %d", len(a), len(b)))
	}
	if len(a) == 1 {
		return math.Abs(a[0] - b[0])
	}
	var sum float64
	for k := range a {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// IsEuclidean reports whether dist can be served by the kd-tree searcher
func IsEuclidean(dist DistanceFunction) bool {
	switch dist.(type) {
	case EuclideanDistance, *EuclideanDistance:
		return true
	}
	return false
}

// Dimensions returns the common dimension of a sample set, or an error when
// the set is empty or ragged.
func Dimensions(samples [][]float64) (int, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("no sample points given: %w", ErrInvalidArgument)
	}
	dims := len(samples[0])
	if dims == 0 {
		return 0, fmt.Errorf("sample 0 has no coordinates: %w", ErrInvalidArgument)
	}
	for i, s := range samples {
		if len(s) != dims {
			return 0, fmt.Errorf("sample %d has dimension %d, expected %d: %w",
				i, len(s), dims, ErrInvalidArgument)
		}
	}
	return dims, nil
}

// CopySamples returns a deep copy of a sample set
func CopySamples(samples [][]float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i, s := range samples {
		out[i] = append([]float64(nil), s...)
	}
	return out
}

// Scalars wraps 1D values as a sample set
func Scalars(x []float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, v := range x {
		out[i] = []float64{v}
	}
	return out
}
