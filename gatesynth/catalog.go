package gatesynth

import (
	"fmt"

	"github.com/zeu5/gate-synth-rl/gates"
	"github.com/zeu5/gate-synth-rl/tensor"
)

// Action is a gate placed on a target qubit or on an ordered qubit pair
type Action struct {
	index  int
	gate   gates.Gate
	qubits []int
}

func (a Action) Index() int {
	return a.index
}

func (a Action) Gate() gates.Gate {
	return a.gate
}

func (a Action) Qubits() []int {
	return append([]int{}, a.qubits...)
}

// Target renders the qubits the way they appear in action descriptions
func (a Action) Target() string {
	if len(a.qubits) == 1 {
		return fmt.Sprintf("%d", a.qubits[0])
	}
	return fmt.Sprintf("(%d, %d)", a.qubits[0], a.qubits[1])
}

func (a Action) String() string {
	return fmt.Sprintf("%d. - applying %s on %s", a.index, a.gate.Name(), a.Target())
}

// Apply returns a new operator with the action's gate contracted into op
func (a Action) Apply(op *tensor.Tensor) *tensor.Tensor {
	switch g := a.gate.(type) {
	case *gates.SingleQubitGate:
		return g.Apply(op, a.qubits[0])
	case *gates.TwoQubitGate:
		return g.Apply(op, a.qubits[0], a.qubits[1])
	}
	panic(fmt.Sprintf("unknown gate variant %T", a.gate))
}

// Catalog is the indexed enumeration of every action of an environment.
// It is never modified after NewCatalog.
type Catalog struct {
	actions []Action
	qubits  int
}

// NewCatalog lists single qubit actions gate-major then qubit-minor, followed
// (for more than one qubit) by two qubit actions gate-major over every
// ordered pair (a, b) with a != b in lexicographic order.
func NewCatalog(single []*gates.SingleQubitGate, two []*gates.TwoQubitGate, qubits int) *Catalog {
	c := &Catalog{
		actions: make([]Action, 0, len(single)*qubits+len(two)*qubits*(qubits-1)),
		qubits:  qubits,
	}
	for _, g := range single {
		for q := 0; q < qubits; q++ {
			c.add(g, q)
		}
	}
	if qubits > 1 {
		for _, g := range two {
			for a := 0; a < qubits; a++ {
				for b := 0; b < qubits; b++ {
					if a != b {
						c.add(g, a, b)
					}
				}
			}
		}
	}
	return c
}

func (c *Catalog) add(g gates.Gate, qubits ...int) {
	c.actions = append(c.actions, Action{
		index:  len(c.actions),
		gate:   g,
		qubits: qubits,
	})
}

func (c *Catalog) Len() int {
	return len(c.actions)
}

func (c *Catalog) Qubits() int {
	return c.qubits
}

func (c *Catalog) Get(i int) (Action, error) {
	if i < 0 || i >= len(c.actions) {
		return Action{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidActionIndex, i, len(c.actions))
	}
	return c.actions[i], nil
}

// Find returns the action applying the named gate on the given qubits
func (c *Catalog) Find(gateName string, qubits ...int) (Action, bool) {
	for _, a := range c.actions {
		if a.gate.Name() != gateName || len(a.qubits) != len(qubits) {
			continue
		}
		match := true
		for i, q := range qubits {
			if a.qubits[i] != q {
				match = false
				break
			}
		}
		if match {
			return a, true
		}
	}
	return Action{}, false
}

// Indices returns 0..Len()-1
func (c *Catalog) Indices() []int {
	out := make([]int, len(c.actions))
	for i := range out {
		out[i] = i
	}
	return out
}
