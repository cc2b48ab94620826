package gf2

import (
	"errors"
	"fmt"

	"qvm-workbench/internal/bitvec"
)

// Common errors
var (
	// ErrUnderdetermined means the basis does not yet pin down a unique
	// non-trivial solution; callers should keep feeding samples.
	ErrUnderdetermined = errors.New("underdetermined system")
	// ErrDegenerate means the system reached full rank, so only the
	// trivial all-zero solution exists. This points at a broken oracle or
	// a zero hidden vector upstream and is never recovered silently.
	ErrDegenerate = errors.New("degenerate system: only the trivial solution exists")
)

// System accumulates homogeneous linear equations over GF(2)^n and
// maintains them in reduced row-echelon form. Each accepted sample z
// becomes the equation z . s = 0 for the hidden vector s.
//
// Stored rows are n+1 bits wide; the trailing bit is the homogeneous
// right-hand side and stays 0 through every row operation. Rows are kept
// sorted by pivot column, pairwise independent, with every pivot column
// zeroed in all other rows.
type System struct {
	n    int
	rows []bitvec.Vector
}

// NewSystem creates an empty solving session for hidden vectors of
// length n.
func NewSystem(n int) (*System, error) {
	if n < 2 {
		return nil, fmt.Errorf("system needs at least 2 variables, got %d", n)
	}
	if n+1 > bitvec.MaxLen {
		return nil, bitvec.ErrTooLong
	}
	return &System{n: n}, nil
}

// AddSample offers one measured bit-vector of length n as a candidate
// equation. It returns true if the sample increased the rank and false
// if it was rejected as linearly dependent (which includes duplicates
// and the all-zero vector). Whether a particular sample is accepted
// depends on what arrived before it; the final basis does not.
func (s *System) AddSample(z bitvec.Vector) (bool, error) {
	if z.Len() != s.n {
		return false, fmt.Errorf("sample length %d, want %d", z.Len(), s.n)
	}

	// Homogeneous RHS: the measurement contract fixes z . s = 0.
	row := z.Append(0)

	// Reduce against every stored pivot.
	for _, r := range s.rows {
		if row.Bit(r.Leading()) == 1 {
			row = row.Xor(r)
		}
	}
	if row.IsZero() {
		return false, nil
	}

	// Insert in pivot order, then clear the new pivot column in every
	// older row to restore strict reduced row-echelon form.
	pivot := row.Leading()
	at := len(s.rows)
	for i, r := range s.rows {
		if r.Leading() > pivot {
			at = i
			break
		}
	}
	s.rows = append(s.rows, bitvec.Vector{})
	copy(s.rows[at+1:], s.rows[at:])
	s.rows[at] = row

	for i, r := range s.rows {
		if i == at {
			continue
		}
		if r.Bit(pivot) == 1 {
			s.rows[i] = r.Xor(row)
		}
	}

	return true, nil
}

// Rank returns the number of independent equations collected so far.
// It never decreases.
func (s *System) Rank() int {
	return len(s.rows)
}

// Sufficient reports whether enough independent samples have been seen.
// Rank n-1 leaves a one-dimensional null space, which guarantees a
// unique non-zero solution.
func (s *System) Sufficient() bool {
	return len(s.rows) >= s.n-1
}

// Rows returns a snapshot of the current basis, pivot order, including
// the trailing homogeneous bit.
func (s *System) Rows() []bitvec.Vector {
	out := make([]bitvec.Vector, len(s.rows))
	copy(out, s.rows)
	return out
}

// Solve back-substitutes the basis into the unique non-zero vector of
// the null space. The free variable is fixed to 1 and each pivot
// variable resolved by XOR against the bits to its right.
func (s *System) Solve() (bitvec.Vector, error) {
	rank := len(s.rows)
	if rank < s.n-1 {
		return bitvec.Vector{}, ErrUnderdetermined
	}
	if rank >= s.n {
		return bitvec.Vector{}, ErrDegenerate
	}

	pivots := make(map[int]bool, rank)
	for _, r := range s.rows {
		pivots[r.Leading()] = true
	}

	x := bitvec.Zero(s.n)
	for col := 0; col < s.n; col++ {
		if !pivots[col] {
			x = x.Set(col, 1)
		}
	}

	for i := rank - 1; i >= 0; i-- {
		row := s.rows[i]
		p := row.Leading()
		var acc uint8
		for j := p + 1; j < s.n; j++ {
			acc ^= row.Bit(j) & x.Bit(j)
		}
		x = x.Set(p, acc)
	}

	return x, nil
}
