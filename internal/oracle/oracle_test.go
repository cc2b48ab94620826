package oracle

import (
	"errors"
	"testing"

	"qvm-workbench/internal/bitvec"
)

const eps = 1e-12

func TestSynthesizeZeroTableIsIdentity(t *testing.T) {
	for _, tc := range []struct{ n, m int }{{1, 1}, {2, 1}, {2, 2}, {3, 2}} {
		f := ConstantTable(tc.n, bitvec.Zero(tc.m))
		mat, err := Synthesize(tc.n, tc.m, f)
		if err != nil {
			t.Fatalf("Synthesize(n=%d,m=%d) failed: %v", tc.n, tc.m, err)
		}
		if !mat.Equal(Identity(1<<(tc.n+tc.m)), eps) {
			t.Errorf("n=%d m=%d: constant-zero oracle is not the identity", tc.n, tc.m)
		}
	}
}

func TestSynthesizeDeutschBalanced(t *testing.T) {
	// n=1, f(0)=1, f(1)=0. Basis order |x b>: 00, 01, 10, 11.
	mat, err := Synthesize(1, 1, AffineTable(bitvec.MustParse("1"), 1))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	want := [][]float64{
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	expected, _ := FromRows(want)
	if !mat.Equal(expected, eps) {
		t.Errorf("unexpected matrix:\n%v\nwant:\n%v", mat.Rows(), want)
	}
}

func TestSynthesizeIsInvolution(t *testing.T) {
	// Any single-target-bit oracle must square to the identity.
	tables := map[string]TruthTable{
		"balanced": AffineTable(bitvec.MustParse("101"), 0),
		"biased":   AffineTable(bitvec.MustParse("110"), 1),
		"constant": ConstantTable(3, bitvec.MustParse("1")),
		"marked":   IndicatorTable(bitvec.MustParse("011")),
	}

	for name, f := range tables {
		t.Run(name, func(t *testing.T) {
			mat, err := Synthesize(3, 1, f)
			if err != nil {
				t.Fatalf("Synthesize failed: %v", err)
			}
			if !mat.Mul(mat).Equal(Identity(mat.Dim()), eps) {
				t.Error("oracle squared is not the identity")
			}
		})
	}
}

func TestSynthesizeControlRegisterOrdering(t *testing.T) {
	// The control register is the most significant: |x>|b> = x*2^m + b.
	// For s=11, f(10)=1, so column |10>|0> (index 4) maps to |10>|1>
	// (index 5).
	mat, err := Synthesize(2, 1, AffineTable(bitvec.MustParse("11"), 0))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if mat.At(5, 4) != 1 || mat.At(4, 5) != 1 {
		t.Error("f(10)=1 should swap |10>|0> and |10>|1>")
	}
	// f(11)=0 leaves its block alone.
	if mat.At(6, 6) != 1 || mat.At(7, 7) != 1 {
		t.Error("f(11)=0 should act as identity on the |11> block")
	}
}

func TestSynthesizeValidation(t *testing.T) {
	f := AffineTable(bitvec.MustParse("10"), 0)

	delete(f, bitvec.MustParse("01"))
	if _, err := Synthesize(2, 1, f); !errors.Is(err, ErrIncompleteMapping) {
		t.Errorf("missing input: err = %v, want ErrIncompleteMapping", err)
	}

	f[bitvec.MustParse("01")] = bitvec.MustParse("10")
	if _, err := Synthesize(2, 1, f); !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("wrong output width: err = %v, want ErrMalformedOutput", err)
	}
}

func TestDecodeTableRoundTrip(t *testing.T) {
	s := bitvec.MustParse("1011")
	f, err := PeriodicTable(s)
	if err != nil {
		t.Fatalf("PeriodicTable failed: %v", err)
	}
	mat, err := Synthesize(4, 4, f)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	got, err := DecodeTable(mat, 4, 4)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	for x, want := range f {
		if got[x] != want {
			t.Errorf("decoded f(%s) = %s, want %s", x, got[x], want)
		}
	}
}

func TestDecodeTableRejectsNonPermutation(t *testing.T) {
	// The diffusion operator has fractional entries everywhere.
	if _, err := DecodeTable(Diffusion(2), 1, 1); !errors.Is(err, ErrNotReversible) {
		t.Errorf("err = %v, want ErrNotReversible", err)
	}
}

func TestSearchOracle(t *testing.T) {
	marked := bitvec.MustParse("101")
	mat, err := SearchOracle(marked)
	if err != nil {
		t.Fatalf("SearchOracle failed: %v", err)
	}
	if mat.Dim() != 16 {
		t.Fatalf("dimension %d, want 16", mat.Dim())
	}

	f, err := DecodeTable(mat, 3, 1)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	for x, out := range f {
		want := uint64(0)
		if x == marked {
			want = 1
		}
		if out.Uint() != want {
			t.Errorf("f(%s) = %d, want %d", x, out.Uint(), want)
		}
	}
}

func TestDiffusion(t *testing.T) {
	n := 3
	dim := 1 << n
	d := Diffusion(n)

	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			want := 2.0 / float64(dim)
			if i == j {
				want -= 1
			}
			if diff := d.At(i, j) - want; diff > eps || diff < -eps {
				t.Fatalf("entry (%d,%d) = %v, want %v", i, j, d.At(i, j), want)
			}
		}
	}

	// A reflection: D squared is the identity.
	if !d.Mul(d).Equal(Identity(dim), eps) {
		t.Error("diffusion operator is not an involution")
	}
}

func TestPeriodicTableIsTwoToOne(t *testing.T) {
	s := bitvec.MustParse("110")
	f, err := PeriodicTable(s)
	if err != nil {
		t.Fatalf("PeriodicTable failed: %v", err)
	}

	counts := make(map[bitvec.Vector]int)
	for _, x := range bitvec.All(3) {
		if f[x] != f[x.Xor(s)] {
			t.Errorf("f(%s) != f(%s XOR s)", x, x)
		}
		counts[f[x]]++
	}
	for out, c := range counts {
		if c != 2 {
			t.Errorf("image %s hit %d times, want 2", out, c)
		}
	}

	if _, err := PeriodicTable(bitvec.Zero(3)); !errors.Is(err, ErrZeroPeriod) {
		t.Errorf("zero period: err = %v, want ErrZeroPeriod", err)
	}
}
