package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MLELimit caps the maximum likelihood objective. It is returned when the
// regularized kernel matrix is not positive definite.
const MLELimit = math.MaxFloat64 * 1e-20

// machineEpsilon is the spacing of float64 values at 1
const machineEpsilon = 0x1p-52

// spectralSystem is an eigen-decomposed symmetric system together with the
// data vector expressed in the eigenbasis. Eigenvalues are ascending.
type spectralSystem struct {
	values  []float64
	spectre []float64
}

// correctRegParam raises reg to the floor largest*eps - smallest, which
// keeps every regularized eigenvalue positive.
func (s *spectralSystem) correctRegParam(reg float64) float64 {
	smallest := s.values[0]
	largest := s.values[len(s.values)-1]
	limit := largest*machineEpsilon - smallest
	if reg < limit {
		return limit
	}
	return reg
}

// regTerm is sum_i spectre_i^2 / (lambda_i + reg), reg already corrected
func (s *spectralSystem) regTerm(reg float64) float64 {
	return weightedSquares(s.spectre, s.values, reg)
}

func (s *spectralSystem) logDeterminant(reg float64) float64 {
	var sum float64
	for _, v := range s.values {
		sum += math.Log(v + reg)
	}
	return sum
}

func (s *spectralSystem) mleObjective(reg float64) float64 {
	reg = s.correctRegParam(reg)
	if s.values[0]+reg <= 0 {
		return MLELimit
	}
	value := float64(len(s.spectre))*math.Log(s.regTerm(reg)) + s.logDeterminant(reg)
	if value < MLELimit {
		return value
	}
	// Also catches NaN from a zero data vector.
	return MLELimit
}

// scaledSpectre returns spectre_i / (lambda_i + reg), reg already corrected
func (s *spectralSystem) scaledSpectre(reg float64) *mat.VecDense {
	out := mat.NewVecDense(len(s.spectre), nil)
	for i, v := range s.spectre {
		out.SetVec(i, v/(s.values[i]+reg))
	}
	return out
}

func weightedSquares(x, values []float64, reg float64) float64 {
	var sum float64
	for i, v := range x {
		sum += v * v / (values[i] + reg)
	}
	return sum
}

// symmetricOf views K as a symmetric matrix, averaging the off-diagonal
// pairs when K is not already a mat.Symmetric.
func symmetricOf(K mat.Matrix) mat.Symmetric {
	if sym, ok := K.(mat.Symmetric); ok {
		return sym
	}
	n, _ := K.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		sym.SetSym(i, i, K.At(i, i))
		for j := i + 1; j < n; j++ {
			sym.SetSym(i, j, 0.5*(K.At(i, j)+K.At(j, i)))
		}
	}
	return sym
}

func eigenDecompose(K mat.Matrix) (values []float64, vectors *mat.Dense, ok bool) {
	var es mat.EigenSym
	if !es.Factorize(symmetricOf(K), true) {
		return nil, nil, false
	}
	values = es.Values(nil)
	vectors = &mat.Dense{}
	es.VectorsTo(vectors)
	return values, vectors, true
}
