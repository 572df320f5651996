package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RankTolerance is the relative size below which a diagonal entry of R
// marks the polynomial term matrix as rank deficient.
const RankTolerance = 1e-12

// SplineSolver solves the polynomial augmented system
//
//	[K  P] [c]   [data]
//	[P' 0] [d] = [0   ]
//
// by restricting K to the null space of P' (spanned by Q2, the trailing
// N-M columns of the full Q of P = QR), eigen-decomposing Q2' K Q2 and
// recovering d from the least squares problem P d = data - K c.
type SplineSolver struct {
	spectralSystem
	K             *mat.Dense
	P             *mat.Dense
	data          *mat.VecDense
	qr            mat.QR
	dataTransform *mat.Dense // E' Q2', (N-M) x N
	computed      bool
}

func NewSplineSolver() *SplineSolver { return &SplineSolver{} }

func (s *SplineSolver) Compute(K, P *mat.Dense, data []float64) error {
	s.computed = false
	n, c := K.Dims()
	if n != c {
		return fmt.Errorf("kernel matrix must be square, got %dx%d: %w", n, c, ErrInvalidArgument)
	}
	pr, m := P.Dims()
	if pr != n {
		return fmt.Errorf("polynomial term matrix has %d rows, kernel matrix %d: %w",
			pr, n, ErrInvalidArgument)
	}
	if n <= m {
		return fmt.Errorf("number of samples %d must exceed the number of polynomial terms %d: %w",
			n, m, ErrInvalidArgument)
	}
	if len(data) != n {
		return fmt.Errorf("data has %d values for %d samples: %w", len(data), n, ErrInvalidArgument)
	}

	s.qr.Factorize(P)
	if rank := s.rank(m); rank != m {
		return fmt.Errorf("polynomial term matrix must have full column rank (columns=%d, rank=%d): %w",
			m, rank, ErrAlgorithmFailure)
	}
	var Q mat.Dense
	s.qr.QTo(&Q)
	Q2 := Q.Slice(0, n, m, n)

	var KQ2, projected mat.Dense
	KQ2.Mul(K, Q2)
	projected.Mul(Q2.T(), &KQ2)
	values, vectors, ok := eigenDecompose(&projected)
	if !ok {
		return fmt.Errorf("eigen decomposition of the projected kernel matrix did not converge: %w",
			ErrAlgorithmFailure)
	}

	s.dataTransform = &mat.Dense{}
	s.dataTransform.Mul(vectors.T(), Q2.T())
	s.data = mat.NewVecDense(n, append([]float64(nil), data...))
	spectre := mat.NewVecDense(n-m, nil)
	spectre.MulVec(s.dataTransform, s.data)

	s.values = values
	s.spectre = spectre.RawVector().Data
	s.K = K
	s.P = P
	s.computed = true
	return nil
}

func (s *SplineSolver) rank(m int) int {
	var R mat.Dense
	s.qr.RTo(&R)
	var maxDiag float64
	for k := 0; k < m; k++ {
		maxDiag = math.Max(maxDiag, math.Abs(R.At(k, k)))
	}
	rank := 0
	for k := 0; k < m; k++ {
		if math.Abs(R.At(k, k)) > RankTolerance*maxDiag {
			rank++
		}
	}
	return rank
}

// Solve returns the kernel and polynomial coefficients for a
// regularization parameter, raised to the safe floor when needed.
func (s *SplineSolver) Solve(reg float64) (kernelCoeffs, polyCoeffs *mat.VecDense, err error) {
	if !s.computed {
		return nil, nil, fmt.Errorf("Compute must be called before solving: %w", ErrPreconditionNotSatisfied)
	}
	reg = s.correctRegParam(reg)
	n, _ := s.K.Dims()
	_, m := s.P.Dims()

	kernelCoeffs = mat.NewVecDense(n, nil)
	kernelCoeffs.MulVec(s.dataTransform.T(), s.scaledSpectre(reg))

	residual := mat.NewVecDense(n, nil)
	residual.MulVec(s.K, kernelCoeffs)
	residual.SubVec(s.data, residual)

	polyCoeffs = mat.NewVecDense(m, nil)
	if err := s.qr.SolveVecTo(polyCoeffs, false, residual); err != nil && !usableCondition(err) {
		return nil, nil, fmt.Errorf("least squares solve for polynomial coefficients: %v: %w",
			err, ErrAlgorithmFailure)
	}
	return kernelCoeffs, polyCoeffs, nil
}

func (s *SplineSolver) CorrectRegParam(reg float64) float64 { return s.correctRegParam(reg) }

// CalcMLEObjective is the objective of the projected system, of dimension
// N-M.
func (s *SplineSolver) CalcMLEObjective(reg float64) float64 { return s.mleObjective(reg) }

// Eigenvalues of the projected kernel matrix in ascending order
func (s *SplineSolver) Eigenvalues() []float64 { return s.values }
