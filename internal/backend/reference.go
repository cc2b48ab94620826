package backend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"qvm-workbench/internal/bitvec"
	"qvm-workbench/internal/oracle"
)

// Common errors
var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrMissingOracle    = errors.New("program carries no oracle")
	ErrBrokenOracle     = errors.New("oracle violates the algorithm's precondition")
)

// Reference is an in-process stand-in for the QVM, used in demo mode
// and in tests. It performs no quantum-state simulation; it reproduces
// each algorithm's measurement contract classically, working only from
// the oracle matrix the program carries, exactly as a real backend
// would receive it.
type Reference struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewReference creates a reference backend. The same seed yields the
// same measurement stream.
func NewReference(seed int64) *Reference {
	return &Reference{rng: rand.New(rand.NewSource(seed))}
}

// Name identifies the backend in stats and logs.
func (r *Reference) Name() string {
	return "reference"
}

// Close is a no-op.
func (r *Reference) Close() error {
	return nil
}

// Measure dispatches on the program's algorithm.
func (r *Reference) Measure(ctx context.Context, prog *Program) (bitvec.Vector, error) {
	if err := ctx.Err(); err != nil {
		return bitvec.Vector{}, err
	}

	switch prog.Algorithm {
	case AlgoDeutsch, AlgoDeutschJozsa, AlgoBernsteinVazirani:
		return r.measureAffine(prog)
	case AlgoSimon:
		return r.measureSimon(prog)
	case AlgoGrover:
		return r.measureGrover(prog)
	case AlgoSuperdense:
		return bitvec.Parse(prog.Payload)
	default:
		return bitvec.Vector{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, prog.Algorithm)
	}
}

func (r *Reference) decode(prog *Program) (oracle.TruthTable, error) {
	if len(prog.Oracle) == 0 {
		return nil, ErrMissingOracle
	}
	mat, err := oracle.FromRows(prog.Oracle)
	if err != nil {
		return nil, err
	}
	return oracle.DecodeTable(mat, prog.Qubits, prog.Ancilla)
}

// measureAffine covers Deutsch, Deutsch-Jozsa and Bernstein-Vazirani:
// for f(x) = s.x XOR bias, the Hadamard sandwich collapses the control
// register onto s with certainty. The mask is read off the oracle via
// s_i = f(e_i) XOR f(0); a constant f yields the all-zero outcome.
func (r *Reference) measureAffine(prog *Program) (bitvec.Vector, error) {
	f, err := r.decode(prog)
	if err != nil {
		return bitvec.Vector{}, err
	}

	n := prog.Qubits
	f0 := f[bitvec.Zero(n)]
	s := bitvec.Zero(n)
	for i := 0; i < n; i++ {
		e := bitvec.Zero(n).Set(i, 1)
		s = s.Set(i, f[e].Bit(0)^f0.Bit(0))
	}
	return s, nil
}

// measureSimon recovers the period s hidden in the two-to-one oracle,
// then draws one vector uniformly from the subspace orthogonal to s —
// the exact distribution of the control-register measurement. The
// all-zero outcome is a legitimate draw.
func (r *Reference) measureSimon(prog *Program) (bitvec.Vector, error) {
	f, err := r.decode(prog)
	if err != nil {
		return bitvec.Vector{}, err
	}

	n := prog.Qubits
	f0 := f[bitvec.Zero(n)]
	var period bitvec.Vector
	found := false
	for _, x := range bitvec.All(n) {
		if !x.IsZero() && f[x] == f0 {
			period = x
			found = true
			break
		}
	}
	if !found {
		return bitvec.Vector{}, fmt.Errorf("%w: no period in Simon oracle", ErrBrokenOracle)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		y := bitvec.FromUint(uint64(r.rng.Intn(1<<n)), n)
		if y.Dot(period) == 0 {
			return y, nil
		}
	}
}

// measureGrover returns the marked string with the amplified success
// probability sin^2((2k+1)*theta), theta = asin(2^(-n/2)), and an
// unmarked string drawn uniformly otherwise.
func (r *Reference) measureGrover(prog *Program) (bitvec.Vector, error) {
	f, err := r.decode(prog)
	if err != nil {
		return bitvec.Vector{}, err
	}

	n := prog.Qubits
	var marked bitvec.Vector
	found := false
	for _, x := range bitvec.All(n) {
		if f[x].Bit(0) == 1 {
			if found {
				return bitvec.Vector{}, fmt.Errorf("%w: more than one marked string", ErrBrokenOracle)
			}
			marked = x
			found = true
		}
	}
	if !found {
		return bitvec.Vector{}, fmt.Errorf("%w: no marked string", ErrBrokenOracle)
	}

	iters := prog.Iterations
	if iters < 1 {
		iters = OptimalGroverIterations(n)
	}
	theta := math.Asin(1 / math.Sqrt(float64(int(1)<<n)))
	pSuccess := math.Pow(math.Sin(float64(2*iters+1)*theta), 2)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rng.Float64() < pSuccess {
		return marked, nil
	}
	for {
		y := bitvec.FromUint(uint64(r.rng.Intn(1<<n)), n)
		if y != marked {
			return y, nil
		}
	}
}

// OptimalGroverIterations returns floor(pi/4 * sqrt(2^n)), the
// amplification count that maximizes the success probability for a
// single marked string.
func OptimalGroverIterations(n int) int {
	k := int(math.Pi / 4 * math.Sqrt(float64(int(1)<<n)))
	if k < 1 {
		k = 1
	}
	return k
}
