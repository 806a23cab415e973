package gatesynth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeu5/gate-synth-rl/gates"
	"github.com/zeu5/gate-synth-rl/tensor"
	"golang.org/x/exp/rand"
)

// CircuitStep is one gate placement of a circuit description
type CircuitStep struct {
	Gate   gates.Gate
	Qubits []int
}

// GateLookup resolves gate names used in circuit descriptions
type GateLookup func(name string) (gates.Gate, bool)

// ParseCircuit reads steps of the form "H 0; CNOT 0 1; T 1"
func ParseCircuit(desc string, lookup GateLookup) ([]CircuitStep, error) {
	steps := make([]CircuitStep, 0)
	for _, part := range strings.Split(desc, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		g, ok := lookup(fields[0])
		if !ok {
			return nil, fmt.Errorf("%w: unknown gate %q", ErrConfiguration, fields[0])
		}
		qubits := make([]int, 0, len(fields)-1)
		for _, f := range fields[1:] {
			q, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: bad qubit %q in %q", ErrConfiguration, f, strings.TrimSpace(part))
			}
			qubits = append(qubits, q)
		}
		if len(qubits) != g.Arity() {
			return nil, fmt.Errorf("%w: gate %s takes %d qubits, got %d", ErrConfiguration, g.Name(), g.Arity(), len(qubits))
		}
		steps = append(steps, CircuitStep{Gate: g, Qubits: qubits})
	}
	return steps, nil
}

// BuildOperator applies the steps in order to the identity on n qubits
func BuildOperator(n int, steps []CircuitStep) (*tensor.Tensor, error) {
	op := Identity(n)
	for _, s := range steps {
		for _, q := range s.Qubits {
			if q < 0 || q >= n {
				return nil, fmt.Errorf("%w: qubit %d out of range for %d qubits", ErrConfiguration, q, n)
			}
		}
		next, err := gates.Apply(op, s.Gate.Tensor(), s.Qubits...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfiguration, err)
		}
		op = next
	}
	return op, nil
}

// ScrambledTarget applies depth uniformly drawn catalog actions to initial.
// The result is reachable by construction, in at most depth steps.
func ScrambledTarget(c *Catalog, initial *tensor.Tensor, depth int, src rand.Source) (*tensor.Tensor, []int, error) {
	if c.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: cannot scramble with an empty catalog", ErrConfiguration)
	}
	r := rand.New(src)
	op := initial.Clone()
	used := make([]int, depth)
	for i := 0; i < depth; i++ {
		a, _ := c.Get(r.Intn(c.Len()))
		op = a.Apply(op)
		used[i] = a.Index()
	}
	return op, used, nil
}
