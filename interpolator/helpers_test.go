package interpolator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func cosPi(x float64) float64 { return math.Cos(math.Pi * x) }

// scenarioA is cos(pi x) sampled at 0, 0.5, 0.8 and 1
func scenarioA() ([][]float64, []float64) {
	xs := []float64{0, 0.5, 0.8, 1}
	samples := make([][]float64, len(xs))
	values := make([]float64, len(xs))
	for i, x := range xs {
		samples[i] = []float64{x}
		values[i] = cosPi(x)
	}
	return samples, values
}

func linspace(n int, a, b float64) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = []float64{a + (b-a)*float64(i)/float64(n-1)}
	}
	return out
}

func sampleValues(samples [][]float64, f func(x []float64) float64) []float64 {
	values := make([]float64, len(samples))
	for i, x := range samples {
		values[i] = f(x)
	}
	return values
}

func squaredNorm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// configWithScale returns the default config at the given scale
func configWithScale(scale float64) Config {
	cfg := DefaultConfig()
	cfg.Scale = scale
	return cfg
}

type interpolant interface {
	Compute(samples [][]float64, values []float64) error
	Interpolate(q []float64) (float64, error)
}

func requireReproduces(t *testing.T, ip interpolant, samples [][]float64, values []float64, tol float64) {
	t.Helper()
	for i, x := range samples {
		v, err := ip.Interpolate(x)
		require.NoError(t, err)
		require.InDeltaf(t, values[i], v, tol, "sample %d", i)
	}
}
