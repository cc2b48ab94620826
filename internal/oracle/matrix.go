package oracle

import (
	"fmt"
	"math"
)

// Matrix is a dense real-valued square matrix. All operations return a
// new matrix; values are never shared or mutated after construction.
type Matrix struct {
	dim int
	a   [][]float64
}

// NewMatrix returns a zero matrix of the given dimension.
func NewMatrix(dim int) *Matrix {
	a := make([][]float64, dim)
	for i := range a {
		a[i] = make([]float64, dim)
	}
	return &Matrix{dim: dim, a: a}
}

// Identity returns the identity matrix of the given dimension.
func Identity(dim int) *Matrix {
	m := NewMatrix(dim)
	for i := 0; i < dim; i++ {
		m.a[i][i] = 1
	}
	return m
}

// Projector returns |idx><idx|, the rank-1 projector onto basis vector
// idx in a dim-dimensional space.
func Projector(dim int, idx uint64) *Matrix {
	m := NewMatrix(dim)
	m.a[idx][idx] = 1
	return m
}

// PauliX returns the single-bit flip operator.
func PauliX() *Matrix {
	m := NewMatrix(2)
	m.a[0][1] = 1
	m.a[1][0] = 1
	return m
}

// Dim returns the matrix dimension.
func (m *Matrix) Dim() int {
	return m.dim
}

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.a[i][j]
}

// Add returns m + o.
func (m *Matrix) Add(o *Matrix) *Matrix {
	if m.dim != o.dim {
		panic(fmt.Sprintf("oracle: dimension mismatch %d != %d", m.dim, o.dim))
	}
	out := NewMatrix(m.dim)
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out.a[i][j] = m.a[i][j] + o.a[i][j]
		}
	}
	return out
}

// Tensor returns the Kronecker product m ⊗ o. The receiver indexes the
// more significant register.
func (m *Matrix) Tensor(o *Matrix) *Matrix {
	out := NewMatrix(m.dim * o.dim)
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			if m.a[i][j] == 0 {
				continue
			}
			for k := 0; k < o.dim; k++ {
				for l := 0; l < o.dim; l++ {
					out.a[i*o.dim+k][j*o.dim+l] = m.a[i][j] * o.a[k][l]
				}
			}
		}
	}
	return out
}

// Mul returns the matrix product m * o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.dim != o.dim {
		panic(fmt.Sprintf("oracle: dimension mismatch %d != %d", m.dim, o.dim))
	}
	out := NewMatrix(m.dim)
	for i := 0; i < m.dim; i++ {
		for k := 0; k < m.dim; k++ {
			v := m.a[i][k]
			if v == 0 {
				continue
			}
			for j := 0; j < m.dim; j++ {
				out.a[i][j] += v * o.a[k][j]
			}
		}
	}
	return out
}

// Scale returns c * m.
func (m *Matrix) Scale(c float64) *Matrix {
	out := NewMatrix(m.dim)
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out.a[i][j] = c * m.a[i][j]
		}
	}
	return out
}

// Equal reports whether two matrices match entrywise within eps.
func (m *Matrix) Equal(o *Matrix, eps float64) bool {
	if m.dim != o.dim {
		return false
	}
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			if math.Abs(m.a[i][j]-o.a[i][j]) > eps {
				return false
			}
		}
	}
	return true
}

// Rows returns a deep copy of the entries, row by row, for transport
// to the circuit layer.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, m.dim)
	for i := range m.a {
		out[i] = make([]float64, m.dim)
		copy(out[i], m.a[i])
	}
	return out
}

// FromRows builds a matrix from dense rows, validating squareness.
func FromRows(rows [][]float64) (*Matrix, error) {
	dim := len(rows)
	if dim == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	m := NewMatrix(dim)
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), dim)
		}
		copy(m.a[i], r)
	}
	return m, nil
}
