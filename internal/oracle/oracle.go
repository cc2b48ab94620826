// Package oracle synthesizes explicit black-box matrices from truth
// tables over bit-strings, for handoff to a quantum circuit layer.
package oracle

import (
	"errors"
	"fmt"
	"math"

	"qvm-workbench/internal/bitvec"
)

// Common errors
var (
	ErrIncompleteMapping = errors.New("truth table does not cover the full domain")
	ErrMalformedOutput   = errors.New("truth table output has wrong length")
	ErrNotReversible     = errors.New("matrix is not a basis permutation")
)

// MaxRegisterBits caps the combined register width; the synthesized
// matrix is dense and 2^(n+m) on a side.
const MaxRegisterBits = 12

// TruthTable maps every length-n input bit-string to its length-m
// output. Synthesize requires the domain to be exhaustive.
type TruthTable map[bitvec.Vector]bitvec.Vector

// Synthesize builds the unitary matrix implementing the reversible map
// |x>|b> -> |x>|b XOR f(x)> as a sum over the domain: for each input x,
// the projector |x><x| on the control register is tensored with the
// per-bit target transform (identity for a 0 output bit, X for a 1).
//
// Register convention: the control register is the most significant, so
// basis state |x>|b> has index x*2^m + b. Rows and columns follow the
// big-endian bit-string enumeration "000", "001", ...
func Synthesize(n, m int, f TruthTable) (*Matrix, error) {
	if n < 1 || m < 1 {
		return nil, fmt.Errorf("register sizes must be positive, got n=%d m=%d", n, m)
	}
	if n+m > MaxRegisterBits {
		return nil, fmt.Errorf("combined register of %d bits exceeds limit %d", n+m, MaxRegisterBits)
	}

	domain := bitvec.All(n)
	for _, x := range domain {
		out, ok := f[x]
		if !ok {
			return nil, fmt.Errorf("%w: no output for %s", ErrIncompleteMapping, x)
		}
		if out.Len() != m {
			return nil, fmt.Errorf("%w: f(%s) = %s, want %d bits", ErrMalformedOutput, x, out, m)
		}
	}

	acc := NewMatrix(1 << (n + m))
	for _, x := range domain {
		target := Identity(1)
		out := f[x]
		for j := 0; j < m; j++ {
			if out.Bit(j) == 1 {
				target = target.Tensor(PauliX())
			} else {
				target = target.Tensor(Identity(2))
			}
		}
		acc = acc.Add(Projector(1<<n, x.Uint()).Tensor(target))
	}
	return acc, nil
}

// DecodeTable reads the truth table back off a synthesized matrix by
// following where each |x>|0> column maps. It fails with
// ErrNotReversible if any column is not a single unit entry or moves
// amplitude out of its control block.
func DecodeTable(mat *Matrix, n, m int) (TruthTable, error) {
	if mat.Dim() != 1<<(n+m) {
		return nil, fmt.Errorf("matrix dimension %d, want %d", mat.Dim(), 1<<(n+m))
	}

	const eps = 1e-9
	f := make(TruthTable, 1<<n)
	for _, x := range bitvec.All(n) {
		col := int(x.Uint()) << m
		unit := -1
		for row := 0; row < mat.Dim(); row++ {
			v := mat.At(row, col)
			switch {
			case math.Abs(v) <= eps:
			case math.Abs(v-1) <= eps:
				if unit >= 0 {
					return nil, fmt.Errorf("%w: column %d has multiple unit entries", ErrNotReversible, col)
				}
				unit = row
			default:
				return nil, fmt.Errorf("%w: entry (%d,%d) = %v", ErrNotReversible, row, col, v)
			}
		}
		if unit < 0 {
			return nil, fmt.Errorf("%w: column %d is zero", ErrNotReversible, col)
		}
		if uint64(unit)>>m != x.Uint() {
			return nil, fmt.Errorf("%w: column %d leaves its control block", ErrNotReversible, col)
		}
		f[x] = bitvec.FromUint(uint64(unit)&((1<<m)-1), m)
	}
	return f, nil
}

// SearchOracle builds the Grover oracle for one marked string: the
// synthesized black box of the indicator function, dimension 2^(n+1).
func SearchOracle(marked bitvec.Vector) (*Matrix, error) {
	return Synthesize(marked.Len(), 1, IndicatorTable(marked))
}

// Diffusion builds the Grover diffusion operator 2|psi><psi| - I over
// the uniform superposition on n bits: the sum of every |i><j| basis
// pair scaled by 2/2^n, minus the identity.
func Diffusion(n int) *Matrix {
	dim := 1 << n
	psi := NewMatrix(dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			psi.a[i][j] = 1
		}
	}
	return psi.Scale(2 / float64(dim)).Add(Identity(dim).Scale(-1))
}
