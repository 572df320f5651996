package solver

import (
	"fmt"
	"math"
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/notargets/RBFKernel/builder"
	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/polynomial"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// spdMatrix returns A A^T + n I for a fixed, non-trivial A
func spdMatrix(n int) *mat.Dense {
	A := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			A.Set(i, j, math.Sin(float64(i*n+j+1)))
		}
	}
	var K mat.Dense
	K.Mul(A, A.T())
	for i := 0; i < n; i++ {
		K.Set(i, i, K.At(i, i)+float64(n))
	}
	return &K
}

func testData(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Cos(float64(i) * 0.7)
	}
	return data
}

func kernelSystem(t *testing.T, samples [][]float64, lp lengthparam.Calculator) *mat.Dense {
	t.Helper()
	K, err := builder.ComputeDense(utils.EuclideanDistance{}, rbfs.NewGaussian(), lp, samples)
	require.NoError(t, err)
	return K
}

func TestEigenSolver(t *testing.T) {
	for _, n := range []int{1, 5, 20} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			K := spdMatrix(n)
			data := testData(n)
			s := NewEigenSolver()
			require.NoError(t, s.Compute(K, data))

			coeffs, err := s.Solve(0)
			require.NoError(t, err)
			var Kc mat.VecDense
			Kc.MulVec(K, coeffs)
			assert.InDeltaSlice(t, data, Kc.RawVector().Data, 1.e-10)

			// MLE objective against a direct evaluation
			var x mat.VecDense
			require.NoError(t, x.SolveVec(K, mat.NewVecDense(n, data)))
			quad := mat.Dot(mat.NewVecDense(n, data), &x)
			logDet, sign := mat.LogDet(K)
			require.Equal(t, 1., sign)
			expected := float64(n)*math.Log(quad) + logDet
			assert.InDelta(t, expected, s.CalcMLEObjective(0), 1.e-9*math.Max(1, math.Abs(expected)))

			assert.InDelta(t, quad/float64(n), s.CalcCommonCoeff(0), 1.e-10)
			assert.InDelta(t, quad, s.CalcRegTerm(data, 0), 1.e-10)
		})
	}
}

func TestEigenSolverRegularization(t *testing.T) {
	n := 6
	K := spdMatrix(n)
	data := testData(n)
	s := NewEigenSolver()
	require.NoError(t, s.Compute(K, data))
	reg := 0.5
	coeffs, err := s.Solve(reg)
	require.NoError(t, err)
	var shifted mat.Dense
	shifted.Add(K, scaledIdentity(n, reg))
	var residual mat.VecDense
	residual.MulVec(&shifted, coeffs)
	assert.InDeltaSlice(t, data, residual.RawVector().Data, 1.e-10)
}

func scaledIdentity(n int, v float64) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, v)
	}
	return I
}

func TestRegParamFloor(t *testing.T) {
	// Duplicated samples make the Gaussian kernel matrix singular.
	samples := utils.Scalars([]float64{0, 0.2, 0.2 + 1e-12, 0.5, 0.9, 1})
	lp := lengthparam.NewGlobal()
	K := kernelSystem(t, samples, lp)
	data := testData(len(samples))
	s := NewEigenSolver()
	require.NoError(t, s.Compute(K, data))

	values := s.Eigenvalues()
	corrected := s.CorrectRegParam(0)
	assert.Greater(t, values[0]+corrected, 0.)
	assert.Equal(t, 1., s.CorrectRegParam(1), "a large parameter is kept")
	for i := 1; i < len(values); i++ {
		assert.LessOrEqual(t, values[i-1], values[i])
	}
	coeffs, err := s.Solve(0)
	require.NoError(t, err)
	for _, c := range coeffs.RawVector().Data {
		assert.False(t, math.IsNaN(c) || math.IsInf(c, 0))
	}
	assert.Less(t, s.CalcMLEObjective(0), MLELimit)
}

func TestMLELimit(t *testing.T) {
	s := NewEigenSolver()
	require.NoError(t, s.Compute(scaledIdentity(3, -1), testData(3)))
	assert.Equal(t, MLELimit, s.CalcMLEObjective(0))

	require.NoError(t, s.Compute(mat.NewDense(2, 2, nil), testData(2)))
	assert.Equal(t, MLELimit, s.CalcMLEObjective(0))
}

func TestSolverErrors(t *testing.T) {
	_, err := NewEigenSolver().Solve(0)
	assert.ErrorIs(t, err, ErrPreconditionNotSatisfied)
	_, err = NewLUSolver().Solve(0)
	assert.ErrorIs(t, err, ErrPreconditionNotSatisfied)
	_, err = NewBiCGSTABSolver().Solve(0)
	assert.ErrorIs(t, err, ErrPreconditionNotSatisfied)
	_, _, err = NewSplineSolver().Solve(0)
	assert.ErrorIs(t, err, ErrPreconditionNotSatisfied)

	rect := mat.NewDense(2, 3, nil)
	assert.ErrorIs(t, NewEigenSolver().Compute(rect, testData(2)), ErrInvalidArgument)
	assert.ErrorIs(t, NewLUSolver().Compute(rect, testData(2)), ErrInvalidArgument)
	assert.ErrorIs(t, NewBiCGSTABSolver().Compute(rect, testData(2)), ErrInvalidArgument)
	assert.ErrorIs(t, NewEigenSolver().Compute(spdMatrix(3), testData(2)), ErrInvalidArgument)
}

func TestLUSolver(t *testing.T) {
	samples := utils.Scalars(utils.Generate1DHaltonNodes(12))
	lp := lengthparam.NewLocal()
	require.NoError(t, lp.SetScale(2))
	K := kernelSystem(t, samples, lp)
	data := testData(len(samples))
	s := NewLUSolver()
	require.NoError(t, s.Compute(K, data))
	coeffs, err := s.Solve(0)
	require.NoError(t, err)
	var Kc mat.VecDense
	Kc.MulVec(K, coeffs)
	assert.InDeltaSlice(t, data, Kc.RawVector().Data, 1.e-8)

	_, err = s.Solve(1e-3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBiCGSTABSolver(t *testing.T) {
	n := 40
	var rows, cols []int
	var vals []float64
	dense := mat.NewDense(n, n, nil)
	add := func(i, j int, v float64) {
		rows, cols, vals = append(rows, i), append(cols, j), append(vals, v)
		dense.Set(i, j, v)
	}
	for i := 0; i < n; i++ {
		add(i, i, 4)
		if i > 0 {
			add(i, i-1, -1)
		}
		if i+2 < n {
			add(i, i+2, 0.5)
		}
	}
	K := sparse.NewCOO(n, n, rows, cols, vals).ToCSR()
	data := testData(n)

	s := NewBiCGSTABSolver()
	require.NoError(t, s.Compute(K, data))
	coeffs, err := s.Solve(0)
	require.NoError(t, err)
	assert.LessOrEqual(t, s.Residual(), DefaultBiCGSTABTolerance)
	assert.Greater(t, s.Iterations(), 0)

	var expected mat.VecDense
	require.NoError(t, expected.SolveVec(dense, mat.NewVecDense(n, data)))
	assert.InDeltaSlice(t, expected.RawVector().Data, coeffs.RawVector().Data, 1.e-8)

	_, err = s.Solve(0.1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	require.NoError(t, s.Compute(K, make([]float64, n)))
	zero, err := s.Solve(0)
	require.NoError(t, err)
	assert.Equal(t, 0., mat.Norm(zero, 2))
}

func TestSplineSolver(t *testing.T) {
	for _, tc := range []struct {
		dims, n, degree int
	}{
		{1, 10, 1},
		{1, 10, 2},
		{2, 25, 1},
		{2, 40, 2},
	} {
		t.Run(fmt.Sprintf("dims=%d_N=%d_degree=%d", tc.dims, tc.n, tc.degree), func(t *testing.T) {
			samples, err := utils.GenerateHaltonNodes(tc.dims, tc.n)
			require.NoError(t, err)
			lp := lengthparam.NewGlobal()
			require.NoError(t, lp.SetScale(1))
			K := kernelSystem(t, samples, lp)
			gen, err := polynomial.NewGenerator(tc.dims, tc.degree)
			require.NoError(t, err)
			P := gen.TermMatrix(samples)
			data := testData(tc.n)

			s := NewSplineSolver()
			require.NoError(t, s.Compute(K, P, data))
			kc, pc, err := s.Solve(0)
			require.NoError(t, err)

			// Side condition P' c = 0
			var side mat.VecDense
			side.MulVec(P.T(), kc)
			assert.InDeltaSlice(t, make([]float64, gen.NumTerms()), side.RawVector().Data, 1.e-8)

			// Reproduction K c + P d = data
			var fit, poly mat.VecDense
			fit.MulVec(K, kc)
			poly.MulVec(P, pc)
			fit.AddVec(&fit, &poly)
			assert.InDeltaSlice(t, data, fit.RawVector().Data, 1.e-6)

			assert.Less(t, s.CalcMLEObjective(0), MLELimit)
			assert.Len(t, s.Eigenvalues(), tc.n-gen.NumTerms())
		})
	}
}

func TestSplineSolverErrors(t *testing.T) {
	samples := utils.Scalars([]float64{0, 0.3, 0.6, 1})
	lp := lengthparam.NewGlobal()
	K := kernelSystem(t, samples, lp)
	data := testData(4)

	// Two identical columns
	P := mat.NewDense(4, 2, []float64{1, 1, 1, 1, 1, 1, 1, 1})
	assert.ErrorIs(t, NewSplineSolver().Compute(K, P, data), ErrAlgorithmFailure)

	// 2D samples on a line cannot support the linear terms
	line := [][]float64{{0, 0}, {0.25, 0.5}, {0.5, 1}, {0.75, 1.5}}
	gen, err := polynomial.NewGenerator(2, 1)
	require.NoError(t, err)
	lineK := kernelSystem(t, line, lengthparam.NewGlobal())
	assert.ErrorIs(t, NewSplineSolver().Compute(lineK, gen.TermMatrix(line), data), ErrAlgorithmFailure)

	gen, err = polynomial.NewGenerator(1, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, NewSplineSolver().Compute(K, gen.TermMatrix(samples), data), ErrInvalidArgument)

	assert.ErrorIs(t, NewSplineSolver().Compute(mat.NewDense(4, 3, nil), P, data), ErrInvalidArgument)
	assert.ErrorIs(t, NewSplineSolver().Compute(K, mat.NewDense(3, 1, nil), data), ErrInvalidArgument)
}

func TestSelectKind(t *testing.T) {
	k, err := SelectKind(false, false)
	require.NoError(t, err)
	assert.Equal(t, PlainDense, k)
	k, err = SelectKind(true, false)
	require.NoError(t, err)
	assert.Equal(t, PlainSparse, k)
	k, err = SelectKind(false, true)
	require.NoError(t, err)
	assert.Equal(t, SplineDense, k)
	_, err = SelectKind(true, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	s, err := NewPlainSolver(PlainDense, true)
	require.NoError(t, err)
	assert.IsType(t, &EigenSolver{}, s)
	s, err = NewPlainSolver(PlainDense, false)
	require.NoError(t, err)
	assert.IsType(t, &LUSolver{}, s)
	s, err = NewPlainSolver(PlainSparse, false)
	require.NoError(t, err)
	assert.IsType(t, &BiCGSTABSolver{}, s)
	_, err = NewPlainSolver(SplineDense, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "spline-dense", SplineDense.String())
}
