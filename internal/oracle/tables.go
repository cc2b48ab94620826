package oracle

import (
	"errors"

	"qvm-workbench/internal/bitvec"
)

// ErrZeroPeriod is returned for a Simon table with the all-zero period,
// which would make f injective instead of two-to-one.
var ErrZeroPeriod = errors.New("period must be non-zero")

// ConstantTable maps every length-n input to the same length-m output.
func ConstantTable(n int, out bitvec.Vector) TruthTable {
	f := make(TruthTable, 1<<n)
	for _, x := range bitvec.All(n) {
		f[x] = out
	}
	return f
}

// AffineTable builds the single-bit table f(x) = s.x XOR bias. With a
// non-zero s the table is balanced, with s = 0 constant; this covers
// the Deutsch, Deutsch-Jozsa and Bernstein-Vazirani black boxes.
func AffineTable(s bitvec.Vector, bias uint8) TruthTable {
	f := make(TruthTable, 1<<s.Len())
	for _, x := range bitvec.All(s.Len()) {
		f[x] = bitvec.FromUint(uint64(x.Dot(s)^(bias&1)), 1)
	}
	return f
}

// IndicatorTable builds the single-bit table that is 1 exactly on the
// marked string.
func IndicatorTable(marked bitvec.Vector) TruthTable {
	f := make(TruthTable, 1<<marked.Len())
	for _, x := range bitvec.All(marked.Len()) {
		var b uint64
		if x == marked {
			b = 1
		}
		f[x] = bitvec.FromUint(b, 1)
	}
	return f
}

// PeriodicTable builds a two-to-one table with hidden period s:
// f(x) = f(x XOR s) for every x, realized by mapping each pair to its
// smaller member. This is the Simon's-problem black box.
func PeriodicTable(s bitvec.Vector) (TruthTable, error) {
	if s.IsZero() {
		return nil, ErrZeroPeriod
	}
	n := s.Len()
	f := make(TruthTable, 1<<n)
	for _, x := range bitvec.All(n) {
		rep := x
		if other := x.Xor(s); other.Uint() < rep.Uint() {
			rep = other
		}
		f[x] = rep
	}
	return f, nil
}
