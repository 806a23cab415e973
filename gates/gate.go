// Package gates holds the single and two qubit gates that act on an
// operator tensor, and the contraction routines that apply them.
package gates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeu5/gate-synth-rl/tensor"
)

var ErrUnsupportedGateShape = errors.New("unsupported gate shape")

// Gate is either a *SingleQubitGate or a *TwoQubitGate
type Gate interface {
	Name() string
	// Number of qubits the gate acts on
	Arity() int
	// Copy of the gate tensor
	Tensor() *tensor.Tensor
	// Conjugate transpose of the gate
	Inverse() Gate
	String() string

	sealed()
}

// SingleQubitGate is a rank 2 tensor indexed (row, column)
type SingleQubitGate struct {
	name string
	t    *tensor.Tensor
}

var _ Gate = &SingleQubitGate{}

func NewSingleQubitGate(name string, m [2][2]complex128) *SingleQubitGate {
	t := tensor.New(2, 2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			t.Set(m[i][j], i, j)
		}
	}
	return &SingleQubitGate{name: name, t: t}
}

func (g *SingleQubitGate) Name() string           { return g.name }
func (g *SingleQubitGate) Arity() int             { return 1 }
func (g *SingleQubitGate) Tensor() *tensor.Tensor { return g.t.Clone() }
func (g *SingleQubitGate) String() string         { return g.name }
func (g *SingleQubitGate) sealed()                {}

func (g *SingleQubitGate) Inverse() Gate {
	return &SingleQubitGate{name: inverseName(g.name), t: g.t.Transpose(1, 0).Conj()}
}

// Apply returns op with the gate applied on the given qubit
func (g *SingleQubitGate) Apply(op *tensor.Tensor, qubit int) *tensor.Tensor {
	return applySingle(op, g.t, qubit)
}

// TwoQubitGate is a rank 4 tensor indexed (out-A, out-B, in-A, in-B)
type TwoQubitGate struct {
	name string
	t    *tensor.Tensor
}

var _ Gate = &TwoQubitGate{}

// NewTwoQubitGate builds the gate from its 4x4 matrix where qubit A is the
// most significant bit of both the row and the column index.
func NewTwoQubitGate(name string, m [4][4]complex128) *TwoQubitGate {
	data := make([]complex128, 0, 16)
	for i := 0; i < 4; i++ {
		data = append(data, m[i][:]...)
	}
	t, _ := tensor.FromData(data, 2, 2, 2, 2)
	return &TwoQubitGate{name: name, t: t}
}

func (g *TwoQubitGate) Name() string           { return g.name }
func (g *TwoQubitGate) Arity() int             { return 2 }
func (g *TwoQubitGate) Tensor() *tensor.Tensor { return g.t.Clone() }
func (g *TwoQubitGate) String() string         { return g.name }
func (g *TwoQubitGate) sealed()                {}

func (g *TwoQubitGate) Inverse() Gate {
	return &TwoQubitGate{name: inverseName(g.name), t: g.t.Transpose(2, 3, 0, 1).Conj()}
}

// Apply returns op with the gate applied on the ordered pair (a, b):
// in-A/out-A bind to qubit a and in-B/out-B to qubit b.
func (g *TwoQubitGate) Apply(op *tensor.Tensor, a, b int) *tensor.Tensor {
	return applyTwo(op, g.t, a, b)
}

func inverseName(name string) string {
	if strings.HasSuffix(name, "dg") {
		return strings.TrimSuffix(name, "dg")
	}
	return name + "dg"
}

// FromTensor wraps t as a gate, choosing the variant from its rank
func FromTensor(name string, t *tensor.Tensor) (Gate, error) {
	for _, d := range t.Shape() {
		if d != 2 {
			return nil, fmt.Errorf("%w: gate %s has shape %v", ErrUnsupportedGateShape, name, t.Shape())
		}
	}
	switch t.Rank() {
	case 2:
		return &SingleQubitGate{name: name, t: t.Clone()}, nil
	case 4:
		return &TwoQubitGate{name: name, t: t.Clone()}, nil
	}
	return nil, fmt.Errorf("%w: gate %s has rank %d", ErrUnsupportedGateShape, name, t.Rank())
}

// FromMatrix builds a gate from a 2x2 or 4x4 matrix
func FromMatrix(name string, m [][]complex128) (Gate, error) {
	n := len(m)
	if n != 2 && n != 4 {
		return nil, fmt.Errorf("%w: gate %s has %d rows", ErrUnsupportedGateShape, name, n)
	}
	data := make([]complex128, 0, n*n)
	for _, row := range m {
		if len(row) != n {
			return nil, fmt.Errorf("%w: gate %s is not square", ErrUnsupportedGateShape, name)
		}
		data = append(data, row...)
	}
	var t *tensor.Tensor
	if n == 2 {
		t, _ = tensor.FromData(data, 2, 2)
	} else {
		t, _ = tensor.FromData(data, 2, 2, 2, 2)
	}
	return FromTensor(name, t)
}
