package operators

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type ValueKind uint8

const (
	ScalarValue ValueKind = iota
	VectorValue
	MatrixValue
)

func (k ValueKind) String() string {
	switch k {
	case ScalarValue:
		return "scalar"
	case VectorValue:
		return "vector"
	case MatrixValue:
		return "matrix"
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is the result of an operator: a scalar, a vector (gradients) or a
// matrix (Hessians).
type Value struct {
	kind   ValueKind
	scalar float64
	vector []float64
	matrix *mat.Dense
}

func NewScalar(v float64) Value    { return Value{kind: ScalarValue, scalar: v} }
func NewVector(v []float64) Value  { return Value{kind: VectorValue, vector: v} }
func NewMatrix(m *mat.Dense) Value { return Value{kind: MatrixValue, matrix: m} }
func (v Value) Kind() ValueKind    { return v.kind }
func (v Value) Scalar() float64    { return v.scalar }
func (v Value) Vector() []float64  { return v.vector }
func (v Value) Matrix() *mat.Dense { return v.matrix }

// Add accumulates o into v. Vector and matrix storage of v is reused.
func (v *Value) Add(o Value) {
	if v.kind != o.kind {
		panic(fmt.Sprintf("adding a %v value to a %v value", o.kind, v.kind))
	}
	switch v.kind {
	case ScalarValue:
		v.scalar += o.scalar
	case VectorValue:
		floats.Add(v.vector, o.vector)
	case MatrixValue:
		v.matrix.Add(v.matrix, o.matrix)
	}
}

func (v Value) String() string {
	switch v.kind {
	case VectorValue:
		return fmt.Sprint(v.vector)
	case MatrixValue:
		return fmt.Sprintf("%v", mat.Formatted(v.matrix, mat.Squeeze()))
	}
	return fmt.Sprint(v.scalar)
}
