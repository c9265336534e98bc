package field

import "fmt"

// Vector is an ordered sequence of field elements.
type Vector []Element

// Matrix is a row-major grid of field elements with a fixed shape.
type Matrix [][]Element

// AddVec returns the element-wise sum of two equal-length vectors.
func AddVec(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("field: vector length mismatch %d != %d", len(a), len(b))
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i].Add(b[i])
	}
	return out, nil
}

// SubVec returns the element-wise difference of two equal-length vectors.
func SubVec(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("field: vector length mismatch %d != %d", len(a), len(b))
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i].Sub(b[i])
	}
	return out, nil
}

// MulVec returns the element-wise (Hadamard) product of two equal-length vectors.
func MulVec(a, b Vector) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("field: vector length mismatch %d != %d", len(a), len(b))
	}
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i].Mul(b[i])
	}
	return out, nil
}

// ScaleVec multiplies every element of v by scalar.
func ScaleVec(v Vector, scalar Element) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i].Mul(scalar)
	}
	return out
}

// Column extracts column j from a row-major matrix.
func (m Matrix) Column(j int) Vector {
	out := make(Vector, len(m))
	for i, row := range m {
		out[i] = row[j]
	}
	return out
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the width of the first row, or 0 if empty.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// GetPowerCycle produces [1, g, g^2, ..., g^(k-1)].
func (f *Field) GetPowerCycle(g Element, k int) Vector {
	out := make(Vector, k)
	if k == 0 {
		return out
	}
	out[0] = f.One()
	for i := 1; i < k; i++ {
		out[i] = out[i-1].Mul(g)
	}
	return out
}
