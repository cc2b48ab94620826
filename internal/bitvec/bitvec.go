package bitvec

import (
	"errors"
	"fmt"
	"strings"
)

// MaxLen is the largest supported vector length. Registers in this
// service are a handful of qubits wide, so a single word is plenty.
const MaxLen = 64

// ErrTooLong is returned when a vector would exceed MaxLen bits.
var ErrTooLong = errors.New("bit vector too long")

// Vector is a fixed-length bit string, semantically a vector over GF(2)^n.
// Bit 0 is the leftmost (most significant) bit, matching the big-endian
// basis enumeration "000", "001", ... used by the circuit layer.
// Vector is an immutable value type and is comparable, so it can be used
// directly as a map key.
type Vector struct {
	bits uint64
	n    int
}

// Zero returns the all-zero vector of length n.
func Zero(n int) Vector {
	return Vector{n: n}
}

// FromUint builds a length-n vector from the low n bits of v,
// most significant bit first.
func FromUint(v uint64, n int) Vector {
	if n < MaxLen {
		v &= (1 << n) - 1
	}
	return Vector{bits: v, n: n}
}

// Parse converts a string of '0' and '1' characters into a Vector.
func Parse(s string) (Vector, error) {
	if len(s) == 0 {
		return Vector{}, errors.New("empty bit string")
	}
	if len(s) > MaxLen {
		return Vector{}, ErrTooLong
	}
	var bits uint64
	for _, c := range s {
		switch c {
		case '0':
			bits <<= 1
		case '1':
			bits = bits<<1 | 1
		default:
			return Vector{}, fmt.Errorf("invalid bit character %q", c)
		}
	}
	return Vector{bits: bits, n: len(s)}, nil
}

// MustParse is Parse for hardcoded literals; it panics on bad input.
func MustParse(s string) Vector {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the number of bits.
func (v Vector) Len() int {
	return v.n
}

// Uint returns the vector as an integer, leftmost bit most significant.
func (v Vector) Uint() uint64 {
	return v.bits
}

// Bit returns bit i (0 = leftmost) as 0 or 1.
func (v Vector) Bit(i int) uint8 {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bitvec: index %d out of range [0,%d)", i, v.n))
	}
	return uint8(v.bits >> (v.n - 1 - i) & 1)
}

// Set returns a copy of v with bit i set to b.
func (v Vector) Set(i int, b uint8) Vector {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bitvec: index %d out of range [0,%d)", i, v.n))
	}
	mask := uint64(1) << (v.n - 1 - i)
	if b&1 == 1 {
		v.bits |= mask
	} else {
		v.bits &^= mask
	}
	return v
}

// Xor returns the bitwise XOR of two vectors of equal length.
func (v Vector) Xor(o Vector) Vector {
	if v.n != o.n {
		panic(fmt.Sprintf("bitvec: length mismatch %d != %d", v.n, o.n))
	}
	return Vector{bits: v.bits ^ o.bits, n: v.n}
}

// Dot returns the GF(2) inner product (parity of the AND) of two
// vectors of equal length.
func (v Vector) Dot(o Vector) uint8 {
	if v.n != o.n {
		panic(fmt.Sprintf("bitvec: length mismatch %d != %d", v.n, o.n))
	}
	x := v.bits & o.bits
	var p uint8
	for x != 0 {
		p ^= 1
		x &= x - 1
	}
	return p
}

// IsZero reports whether every bit is 0.
func (v Vector) IsZero() bool {
	return v.bits == 0
}

// Leading returns the index of the first set bit from the left,
// or -1 for the zero vector.
func (v Vector) Leading() int {
	for i := 0; i < v.n; i++ {
		if v.bits>>(v.n-1-i)&1 == 1 {
			return i
		}
	}
	return -1
}

// Append returns a copy of v extended on the right by one bit.
func (v Vector) Append(b uint8) Vector {
	if v.n+1 > MaxLen {
		panic(ErrTooLong)
	}
	return Vector{bits: v.bits<<1 | uint64(b&1), n: v.n + 1}
}

// String renders the vector as a '0'/'1' string, leftmost bit first.
func (v Vector) String() string {
	var sb strings.Builder
	sb.Grow(v.n)
	for i := 0; i < v.n; i++ {
		if v.bits>>(v.n-1-i)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// All enumerates every vector of length n in ascending order
// ("000", "001", ...).
func All(n int) []Vector {
	if n > 16 {
		panic("bitvec: enumeration over more than 16 bits")
	}
	out := make([]Vector, 1<<n)
	for i := range out {
		out[i] = FromUint(uint64(i), n)
	}
	return out
}
