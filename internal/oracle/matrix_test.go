package oracle

import "testing"

func TestTensorOrdering(t *testing.T) {
	// X (x) I acts on the more significant bit: it swaps the |0b> and
	// |1b> blocks.
	xi := PauliX().Tensor(Identity(2))

	want := [][]float64{
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	}
	expected, _ := FromRows(want)
	if !xi.Equal(expected, 0) {
		t.Errorf("X (x) I = %v, want %v", xi.Rows(), want)
	}

	// I (x) X acts on the less significant bit.
	ix := Identity(2).Tensor(PauliX())
	if ix.At(0, 1) != 1 || ix.At(1, 0) != 1 || ix.At(2, 3) != 1 || ix.At(3, 2) != 1 {
		t.Errorf("I (x) X = %v", ix.Rows())
	}
}

func TestMul(t *testing.T) {
	// X * X = I
	if !PauliX().Mul(PauliX()).Equal(Identity(2), 0) {
		t.Error("X squared should be the identity")
	}
}

func TestProjectorSum(t *testing.T) {
	// Projectors onto every basis vector sum to the identity.
	sum := NewMatrix(4)
	for i := uint64(0); i < 4; i++ {
		sum = sum.Add(Projector(4, i))
	}
	if !sum.Equal(Identity(4), 0) {
		t.Error("projector sum should be the identity")
	}
}

func TestFromRowsValidation(t *testing.T) {
	if _, err := FromRows(nil); err == nil {
		t.Error("expected error for empty rows")
	}
	if _, err := FromRows([][]float64{{1, 0}, {0}}); err == nil {
		t.Error("expected error for ragged rows")
	}
}

func TestRowsAreACopy(t *testing.T) {
	m := Identity(2)
	rows := m.Rows()
	rows[0][0] = 42
	if m.At(0, 0) != 1 {
		t.Error("Rows() must not alias the matrix storage")
	}
}
