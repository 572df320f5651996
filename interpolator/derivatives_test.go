package interpolator

import (
	"math"
	"testing"

	"github.com/notargets/RBFKernel/operators"
	"github.com/notargets/RBFKernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exactGradient1D(x float64) float64 { return -math.Pi * math.Sin(math.Pi*x) }

type evaluable interface {
	interpolant
	Evaluate(op operators.Evaluator) (operators.Value, error)
	FixLengthParameterScale(value float64) error
}

func fitted(t *testing.T, ip evaluable, scale float64, samples [][]float64, values []float64) evaluable {
	t.Helper()
	require.NoError(t, ip.FixLengthParameterScale(scale))
	require.NoError(t, ip.Compute(samples, values))
	return ip
}

func bothInterpolators(t *testing.T) map[string]evaluable {
	plain, err := NewRBFInterpolator(DefaultConfig())
	require.NoError(t, err)
	poly, err := NewPolynomialInterpolator(DefaultConfig())
	require.NoError(t, err)
	return map[string]evaluable{"plain": plain, "polynomial": poly}
}

func TestGradient1D(t *testing.T) {
	samples := linspace(11, 0, 1)
	values := sampleValues(samples, func(x []float64) float64 { return cosPi(x[0]) })
	for name, ip := range bothInterpolators(t) {
		t.Run(name, func(t *testing.T) {
			ip = fitted(t, ip, 2, samples, values)
			q := []float64{0.55}
			g, err := ip.Evaluate(operators.Gradient{Q: q})
			require.NoError(t, err)
			require.Len(t, g.Vector(), 1)
			assert.InDelta(t, exactGradient1D(0.55), g.Vector()[0], 1.e-2)

			p, err := ip.Evaluate(operators.PartialDerivative{Q: q, Dim: 0})
			require.NoError(t, err)
			assert.InDelta(t, g.Vector()[0], p.Scalar(), 1.e-10)

			f, err := ip.Evaluate(operators.FunctionValue{Q: q})
			require.NoError(t, err)
			v, err := ip.Interpolate(q)
			require.NoError(t, err)
			assert.InDelta(t, v, f.Scalar(), 1.e-10)
		})
	}
}

func TestHigherOrder1D(t *testing.T) {
	samples, err := utils.GenerateHaltonNodes(1, 30)
	require.NoError(t, err)
	values := sampleValues(samples, func(x []float64) float64 { return cosPi(x[0]) })
	pi2 := math.Pi * math.Pi
	q := []float64{0.5}
	for name, ip := range bothInterpolators(t) {
		t.Run(name, func(t *testing.T) {
			ip = fitted(t, ip, 10, samples, values)

			lap, err := ip.Evaluate(operators.Laplacian{Q: q})
			require.NoError(t, err)
			assert.InDelta(t, -pi2*math.Cos(math.Pi/2), lap.Scalar(), 1.e-2)

			lg, err := ip.Evaluate(operators.LaplacianGradient{Q: q})
			require.NoError(t, err)
			require.Len(t, lg.Vector(), 1)
			assert.InDelta(t, pi2*math.Pi, lg.Vector()[0], 1.e-2)

			third, err := ip.Evaluate(operators.ThirdOrderDerivative{Q: q})
			require.NoError(t, err)
			assert.InDelta(t, lg.Vector()[0], third.Scalar(), 1.e-4)

			bih, err := ip.Evaluate(operators.Biharmonic{Q: q})
			require.NoError(t, err)
			assert.InDelta(t, pi2*pi2*math.Cos(math.Pi/2), bih.Scalar(), 1.e-2)
		})
	}
}

func TestDerivatives2D(t *testing.T) {
	samples, err := utils.GenerateHaltonNodes(2, 100)
	require.NoError(t, err)
	values := sampleValues(samples, squaredNorm)
	q := []float64{0.3, 0.4}
	for name, ip := range bothInterpolators(t) {
		t.Run(name, func(t *testing.T) {
			ip = fitted(t, ip, 2, samples, values)
			g, err := ip.Evaluate(operators.Gradient{Q: q})
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{0.6, 0.8}, g.Vector(), 1.e-2)

			h, err := ip.Evaluate(operators.Hessian{Q: q})
			require.NoError(t, err)
			H := h.Matrix()
			assert.InDelta(t, 2., H.At(0, 0), 5.e-2)
			assert.InDelta(t, 2., H.At(1, 1), 5.e-2)
			assert.InDelta(t, 0., H.At(0, 1), 5.e-2)
			assert.Equal(t, H.At(0, 1), H.At(1, 0))

			lap, err := ip.Evaluate(operators.Laplacian{Q: q})
			require.NoError(t, err)
			assert.InDelta(t, H.At(0, 0)+H.At(1, 1), lap.Scalar(), 1.e-6)

			_, err = ip.Evaluate(operators.ThirdOrderDerivative{Q: q})
			assert.ErrorIs(t, err, utils.ErrInvalidArgument)
			_, err = ip.Evaluate(operators.Gradient{Q: []float64{0.3}})
			assert.ErrorIs(t, err, utils.ErrInvalidArgument)
		})
	}
}
