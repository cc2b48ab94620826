package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"qvm-workbench/internal/bitvec"
)

const measureTimeout = 30 * time.Second

// QVM talks to a remote quantum virtual machine over JSON-RPC. The
// server is expected to expose qvm_measure, taking a Program and
// returning the measured control register as a '0'/'1' string.
type QVM struct {
	client *rpc.Client
	url    string
}

// Dial connects to a QVM endpoint (http, ws or ipc URL).
func Dial(url string) (*QVM, error) {
	client, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("qvm dial failed: %w", err)
	}
	return &QVM{client: client, url: url}, nil
}

// Name identifies the backend in stats and logs.
func (q *QVM) Name() string {
	return "qvm:" + q.url
}

// Measure runs the program remotely and parses the returned bit string.
func (q *QVM) Measure(ctx context.Context, prog *Program) (bitvec.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, measureTimeout)
	defer cancel()

	var out string
	if err := q.client.CallContext(ctx, &out, "qvm_measure", prog); err != nil {
		return bitvec.Vector{}, fmt.Errorf("qvm_measure failed: %w", err)
	}

	v, err := bitvec.Parse(out)
	if err != nil {
		return bitvec.Vector{}, fmt.Errorf("qvm returned malformed measurement %q: %w", out, err)
	}
	if v.Len() != prog.Qubits {
		return bitvec.Vector{}, fmt.Errorf("qvm returned %d bits, want %d", v.Len(), prog.Qubits)
	}
	return v, nil
}

// Close tears down the RPC connection.
func (q *QVM) Close() error {
	q.client.Close()
	return nil
}
