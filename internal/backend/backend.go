// Package backend abstracts the measurement side of the workbench: a
// remote quantum virtual machine reached over JSON-RPC, or an
// in-process classical reference used when no QVM is configured.
package backend

import (
	"context"

	"qvm-workbench/internal/bitvec"
)

// Supported algorithm names, as carried in Program.Algorithm.
const (
	AlgoDeutsch           = "deutsch"
	AlgoDeutschJozsa      = "deutsch-jozsa"
	AlgoBernsteinVazirani = "bernstein-vazirani"
	AlgoSimon             = "simon"
	AlgoGrover            = "grover"
	AlgoSuperdense        = "superdense"
)

// Program describes one circuit execution request. The oracle and
// diffusion operators are dense row-major matrices produced by the
// oracle package; the backend owns instruction sequencing and state
// evolution.
type Program struct {
	Algorithm  string      `json:"algorithm"`
	Qubits     int         `json:"qubits"`
	Ancilla    int         `json:"ancilla"`
	Oracle     [][]float64 `json:"oracle,omitempty"`
	Diffusion  [][]float64 `json:"diffusion,omitempty"`
	Iterations int         `json:"iterations,omitempty"`
	Payload    string      `json:"payload,omitempty"`
}

// Backend executes programs and returns one control-register
// measurement per call.
type Backend interface {
	Name() string
	Measure(ctx context.Context, prog *Program) (bitvec.Vector, error)
	Close() error
}

// Ensure both implementations satisfy the interface
var _ Backend = (*QVM)(nil)
var _ Backend = (*Reference)(nil)
