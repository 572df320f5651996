package rbfs

import (
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/ALTree/bigfloat"
	"github.com/notargets/RBFKernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prec = 256

func bf(x float64) *big.Float { return new(big.Float).SetPrec(prec).SetFloat64(x) }

func bfNew() *big.Float { return new(big.Float).SetPrec(prec) }

// psiReference returns -phi'(r)/r from a central difference evaluated in
// 256 bit arithmetic, so the truncation and rounding errors stay far below
// double precision.
func psiReference(phi func(*big.Float) *big.Float, r float64) float64 {
	h := bfNew().SetMantExp(bf(1), -70)
	rp := bfNew().Add(bf(r), h)
	rm := bfNew().Sub(bf(r), h)
	d := bfNew().Sub(phi(rp), phi(rm))
	d.Quo(d, bfNew().Mul(bf(2), h))
	d.Quo(d, bf(r))
	d.Neg(d)
	f, _ := d.Float64()
	return f
}

func bigGaussian(c float64) func(*big.Float) *big.Float {
	return func(r *big.Float) *big.Float {
		r2 := bfNew().Mul(r, r)
		return bfNew().Mul(bf(c), bigfloat.Exp(r2.Neg(r2)))
	}
}

func bigGaussianM1(r *big.Float) *big.Float {
	r2 := bfNew().Mul(r, r)
	e := bigfloat.Exp(bfNew().Neg(r2))
	return e.Sub(e, bf(1))
}

func bigGaussianFromSquare(r *big.Float) *big.Float {
	r2 := bfNew().Mul(r, r)
	v := bigGaussianM1(r)
	return v.Add(v, r2)
}

func bigInversePower(c, p float64) func(*big.Float) *big.Float {
	return func(r *big.Float) *big.Float {
		base := bfNew().Mul(r, r)
		base.Add(base, bf(1))
		return bfNew().Mul(bf(c), bigfloat.Pow(base, bf(-p)))
	}
}

func bigIntPow(r *big.Float, k int) *big.Float {
	result := bf(1)
	for i := 0; i < k; i++ {
		result.Mul(result, r)
	}
	for i := 0; i > k; i-- {
		result.Quo(result, r)
	}
	return result
}

func bigLogPower(lp LogPower) func(*big.Float) *big.Float {
	return func(r *big.Float) *big.Float {
		v := bfNew().Mul(bf(lp.B), bigfloat.Log(r))
		v.Add(v, bf(lp.A))
		return v.Mul(v, bigIntPow(r, lp.K))
	}
}

func bigWendland(l, k int) func(*big.Float) *big.Float {
	return func(r *big.Float) *big.Float {
		lf := float64(l)
		oneMinus := bfNew().Sub(bf(1), r)
		switch k {
		case 0:
			return bigIntPow(oneMinus, l)
		case 1:
			poly := bfNew().Mul(bf(lf+1), r)
			poly.Add(poly, bf(1))
			v := bfNew().Mul(bigIntPow(oneMinus, l+1), poly)
			return v.Quo(v, bf((lf+1)*(lf+2)))
		default:
			r2 := bfNew().Mul(r, r)
			poly := bfNew().Mul(bf((lf+1)*(lf+3)), r2)
			poly.Add(poly, bfNew().Mul(bf(3*(lf+2)), r))
			poly.Add(poly, bf(3))
			v := bfNew().Mul(bigIntPow(oneMinus, l+2), poly)
			return v.Quo(v, bf((lf+1)*(lf+2)*(lf+3)*(lf+4)))
		}
	}
}

func assertRelClose(t *testing.T, expected, actual float64, msg string) {
	t.Helper()
	tol := 1.e-10 * math.Max(1, math.Abs(expected))
	assert.InDeltaf(t, expected, actual, tol, msg)
}

func TestKernelDerivatives(t *testing.T) {
	tps2, err := NewThinPlateSpline(2, 2)
	require.NoError(t, err)
	tps3, err := NewThinPlateSpline(3, 3)
	require.NoError(t, err)
	cases := []struct {
		name   string
		kernel Kernel
		phi    func(*big.Float) *big.Float
	}{
		{"gaussian", NewGaussian(), bigGaussian(1)},
		{"gaussian_m1", NewGaussianM1(), bigGaussianM1},
		{"gaussian_from_square", NewGaussianFromSquare(), bigGaussianFromSquare},
		{"inverse_quadratic", NewInverseQuadratic(), bigInversePower(1, 1)},
		{"inverse_multiquadric", NewInverseMultiquadric(), bigInversePower(1, 0.5)},
		{"multiquadric", NewMultiquadric(), bigInversePower(-1, -0.5)},
		{"inverse_power_1.5", NewInversePower(2, 1.5), bigInversePower(2, 1.5)},
		{"tps_2d_2", tps2, bigLogPower(tps2)},
		{"tps_2d_2_derivative", tps2.Derivative(), bigLogPower(tps2.Derivative().(LogPower))},
		{"tps_3d_3", tps3, bigLogPower(tps3)},
		{"log_power", LogPower{A: 0.3, B: -1.2, K: 5}, bigLogPower(LogPower{A: 0.3, B: -1.2, K: 5})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			psi := tc.kernel.(Differentiable).Derivative()
			for _, r := range []float64{0.3, 0.7, 1.5} {
				assertRelClose(t, psiReference(tc.phi, r), psi.Evaluate(r), fmt.Sprintf("r=%v", r))
			}
		})
	}
	for l := 1; l <= 4; l++ {
		for k := 0; k <= 2; k++ {
			t.Run(fmt.Sprintf("wendland_L=%d_K=%d", l, k), func(t *testing.T) {
				w, err := NewWendland(l, k)
				require.NoError(t, err)
				psi := w.Derivative()
				for _, r := range []float64{0.2, 0.5, 0.8} {
					assertRelClose(t, psiReference(bigWendland(l, k), r), psi.Evaluate(r), fmt.Sprintf("r=%v", r))
				}
			})
		}
	}
}

func TestKernelValues(t *testing.T) {
	assert.Equal(t, 1., NewGaussian().Evaluate(0))
	assert.InDeltaf(t, math.Exp(-0.25), NewGaussian().Evaluate(0.5), 1.e-15, "")
	assert.Equal(t, 0., NewGaussianM1().Evaluate(0))
	assert.Equal(t, 0., NewGaussianFromSquare().Evaluate(0))
	// No cancellation near the origin: exp(-r^2) - 1 + r^2 ~ r^4/2.
	assert.InDeltaf(t, 0.5e-12, NewGaussianFromSquare().Evaluate(1.e-3), 1.e-18, "")
	assert.InDeltaf(t, 0.8, NewInverseQuadratic().Evaluate(0.5), 1.e-15, "")
	assert.InDeltaf(t, -math.Sqrt(1.25), NewMultiquadric().Evaluate(0.5), 1.e-15, "")

	t.Run("thin plate spline", func(t *testing.T) {
		assert.InDeltaf(t, 1/(8*math.Pi), ThinPlateSplineCoefficient(2, 2), 1.e-15, "")
		assert.InDeltaf(t, 1./12, ThinPlateSplineCoefficient(1, 2), 1.e-15, "")
		tps, err := NewThinPlateSpline(2, 2)
		require.NoError(t, err)
		assert.Equal(t, 0., tps.Evaluate(0))
		r := 0.7
		assert.InDeltaf(t, r*r*math.Log(r)/(8*math.Pi), tps.Evaluate(r), 1.e-15, "")
		_, err = NewThinPlateSpline(2, 1)
		assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	})

	t.Run("log power origin", func(t *testing.T) {
		assert.Equal(t, 0., LogPower{A: 1, B: 1, K: 2}.Evaluate(0))
		assert.Equal(t, 3., LogPower{A: 3, B: 1, K: 0}.Evaluate(0))
		assert.InDeltaf(t, 2e50, LogPower{A: 2, B: 0, K: -1}.Evaluate(0), 1e36, "")
	})

	t.Run("wendland", func(t *testing.T) {
		w, err := NewWendland(3, 1)
		require.NoError(t, err)
		assert.InDeltaf(t, 1./20, w.Evaluate(0), 1.e-15, "")
		assert.Equal(t, 0., w.Evaluate(1))
		assert.Equal(t, 0., w.Evaluate(1.5))
		boundary, ok := SupportBoundary(w)
		assert.True(t, ok)
		assert.Equal(t, 1., boundary)
		assert.False(t, InSupport(w, 1))
		assert.True(t, InSupport(NewGaussian(), 100))
		_, err = NewWendland(0, 1)
		assert.ErrorIs(t, err, utils.ErrInvalidArgument)
		assert.Equal(t, 0., WendlandBase{L: 3}.Evaluate(0))
	})
}

func TestDerivativeChain(t *testing.T) {
	w, err := NewWendland(3, 2)
	require.NoError(t, err)
	chain, err := DerivativeChain(w, 3)
	require.NoError(t, err)
	assert.Equal(t, Wendland{L: 3, K: 1}, chain[1])
	assert.Equal(t, Wendland{L: 3, K: 0}, chain[2])
	assert.Equal(t, WendlandBase{L: 3}, chain[3])
	for _, k := range chain {
		_, ok := k.(CompactlySupported)
		assert.True(t, ok)
	}
	_, err = Differentiate(w, 4)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)

	g, err := Differentiate(NewGaussian(), 4)
	require.NoError(t, err)
	assert.Equal(t, 16., g.(Gaussian).Coefficient())

	ip, err := Differentiate(NewInverseQuadratic(), 2)
	require.NoError(t, err)
	assert.Equal(t, NewInversePower(8, 3), ip)
}
