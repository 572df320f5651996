package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultBiCGSTABTolerance is the relative residual at which iteration stops
	DefaultBiCGSTABTolerance = 1e-10
	minBiCGSTABIterations    = 100
)

// BiCGSTABSolver iteratively solves sparse, generally non-symmetric kernel
// systems. Like LUSolver it does not support regularization.
type BiCGSTABSolver struct {
	// Tolerance on ||b - Ax|| / ||b||, DefaultBiCGSTABTolerance when zero
	Tolerance float64
	// MaxIterations defaults to max(10 N, 100) when zero
	MaxIterations int

	K        mat.Matrix
	data     []float64
	computed bool

	iterations int
	residual   float64
}

func NewBiCGSTABSolver() *BiCGSTABSolver { return &BiCGSTABSolver{} }

func (s *BiCGSTABSolver) Compute(K mat.Matrix, data []float64) error {
	s.computed = false
	n, c := K.Dims()
	if n != c {
		return fmt.Errorf("kernel matrix must be square, got %dx%d: %w", n, c, ErrInvalidArgument)
	}
	if len(data) != n {
		return fmt.Errorf("data has %d values for a %dx%d kernel matrix: %w",
			len(data), n, n, ErrInvalidArgument)
	}
	s.K = K
	s.data = append([]float64(nil), data...)
	s.computed = true
	return nil
}

// mulVec sets dst = K x, walking only the stored entries of sparse
// matrices.
func (s *BiCGSTABSolver) mulVec(dst, x []float64) {
	for i := range dst {
		dst[i] = 0
	}
	if nz, ok := s.K.(mat.NonZeroDoer); ok {
		nz.DoNonZero(func(i, j int, v float64) {
			dst[i] += v * x[j]
		})
		return
	}
	n := len(dst)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += s.K.At(i, j) * x[j]
		}
		dst[i] = sum
	}
}

// Solve runs BiCGSTAB from a zero initial guess. The iterate with the
// smallest residual is returned; Iterations and Residual report how the
// run ended. Stagnation above the tolerance is not an error, a breakdown
// producing non-finite residuals is.
func (s *BiCGSTABSolver) Solve(reg float64) (*mat.VecDense, error) {
	if !s.computed {
		return nil, fmt.Errorf("Compute must be called before solving: %w", ErrPreconditionNotSatisfied)
	}
	if reg != 0 {
		return nil, fmt.Errorf("regularization is not supported by the iterative solver: %w",
			ErrInvalidArgument)
	}
	n := len(s.data)
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultBiCGSTABTolerance
	}
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 10 * n
		if maxIter < minBiCGSTABIterations {
			maxIter = minBiCGSTABIterations
		}
	}

	b := s.data
	bNorm := floats.Norm(b, 2)
	x := make([]float64, n)
	if bNorm == 0 {
		s.iterations, s.residual = 0, 0
		return mat.NewVecDense(n, x), nil
	}
	r := append([]float64(nil), b...)
	rHat := append([]float64(nil), r...)
	p := make([]float64, n)
	v := make([]float64, n)
	sv := make([]float64, n)
	t := make([]float64, n)
	best := append([]float64(nil), x...)
	bestRes := 1.

	rho, alpha, omega := 1., 1., 1.
	var iter int
	for iter = 1; iter <= maxIter; iter++ {
		rhoNew := floats.Dot(rHat, r)
		if rhoNew == 0 || omega == 0 {
			// Breakdown, restart the shadow residual.
			copy(rHat, r)
			rhoNew = floats.Dot(rHat, r)
			for i := range p {
				p[i], v[i] = 0, 0
			}
			rho, alpha, omega = 1, 1, 1
			if rhoNew == 0 {
				break
			}
		}
		beta := (rhoNew / rho) * (alpha / omega)
		for i := range p {
			p[i] = r[i] + beta*(p[i]-omega*v[i])
		}
		s.mulVec(v, p)
		alpha = rhoNew / floats.Dot(rHat, v)
		for i := range sv {
			sv[i] = r[i] - alpha*v[i]
		}
		if res := floats.Norm(sv, 2) / bNorm; res <= tol {
			floats.AddScaled(x, alpha, p)
			copy(best, x)
			bestRes = res
			break
		}
		s.mulVec(t, sv)
		tt := floats.Dot(t, t)
		if tt == 0 {
			omega = 0
		} else {
			omega = floats.Dot(t, sv) / tt
		}
		for i := range x {
			x[i] += alpha*p[i] + omega*sv[i]
			r[i] = sv[i] - omega*t[i]
		}
		rho = rhoNew
		res := floats.Norm(r, 2) / bNorm
		if math.IsNaN(res) || math.IsInf(res, 0) {
			return nil, fmt.Errorf("BiCGSTAB broke down after %d iterations: %w", iter, ErrAlgorithmFailure)
		}
		if res < bestRes {
			copy(best, x)
			bestRes = res
		}
		if res <= tol {
			break
		}
	}
	if iter > maxIter {
		iter = maxIter
	}
	s.iterations = iter
	s.residual = bestRes
	return mat.NewVecDense(n, best), nil
}

// Iterations used by the last Solve
func (s *BiCGSTABSolver) Iterations() int { return s.iterations }

// Residual is the relative residual of the returned solution
func (s *BiCGSTABSolver) Residual() float64 { return s.residual }
