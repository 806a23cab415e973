// Package gatesynth implements the gate synthesis environment: an operator
// tensor evolved by discrete gate actions until it matches a target unitary.
package gatesynth

import (
	"fmt"
	"strings"

	"github.com/zeu5/gate-synth-rl/gates"
	"github.com/zeu5/gate-synth-rl/tensor"
)

type Status int

const (
	Running Status = iota
	Won
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Won:
		return "won"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Config holds everything an environment needs; it is consumed once by
// NewEnvironment and may be reused to build independent instances.
type Config struct {
	SingleQubitGates []*gates.SingleQubitGate
	TwoQubitGates    []*gates.TwoQubitGate

	Initial *tensor.Tensor
	Target  *tensor.Tensor

	FinalReward float64
	MaxSteps    int
	// relative tolerance of the convergence test
	Tolerance float64
	// absolute slack of the convergence test, DefaultAbsTolerance when zero
	AbsTolerance float64
}

// Environment owns the operator of one episode stream. It is not safe for
// concurrent use; hosts running episodes in parallel build one per worker.
type Environment struct {
	catalog *Catalog
	qubits  int

	initial *tensor.Tensor
	target  *tensor.Tensor
	current *tensor.Tensor

	finalReward float64
	maxSteps    int
	tol         float64
	atol        float64

	steps     int
	status    Status
	distances []float64
}

func NewEnvironment(cfg Config) (*Environment, error) {
	n, err := QubitsOf(cfg.Initial)
	if err != nil {
		return nil, fmt.Errorf("initial operator: %w", err)
	}
	tn, err := QubitsOf(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("target operator: %w", err)
	}
	if tn != n {
		return nil, fmt.Errorf("%w: initial operator has %d qubits, target has %d", ErrConfiguration, n, tn)
	}
	if cfg.MaxSteps <= 0 {
		return nil, fmt.Errorf("%w: max steps must be positive, got %d", ErrConfiguration, cfg.MaxSteps)
	}
	if cfg.Tolerance < 0 || cfg.AbsTolerance < 0 {
		return nil, fmt.Errorf("%w: tolerances must not be negative", ErrConfiguration)
	}
	atol := cfg.AbsTolerance
	if atol == 0 {
		atol = DefaultAbsTolerance
	}

	e := &Environment{
		catalog:     NewCatalog(cfg.SingleQubitGates, cfg.TwoQubitGates, n),
		qubits:      n,
		initial:     cfg.Initial.Clone(),
		target:      cfg.Target.Clone(),
		finalReward: cfg.FinalReward,
		maxSteps:    cfg.MaxSteps,
		tol:         cfg.Tolerance,
		atol:        atol,
	}
	e.Reset()
	return e, nil
}

// Reset restores the initial operator and starts a new episode
func (e *Environment) Reset() Observation {
	e.current = e.initial.Clone()
	e.steps = 0
	e.status = Running
	e.distances = make([]float64, 0)
	return e.Observation()
}

// Step applies the action at index i. The returned reward is the final
// reward when the operator matches the target and zero otherwise; done is
// set once the target is matched or the step count exceeds max steps.
func (e *Environment) Step(i int) (Observation, float64, bool, error) {
	if e.status != Running {
		return Observation{}, 0, true, fmt.Errorf("%w: status %s", ErrEpisodeOver, e.status)
	}
	action, err := e.catalog.Get(i)
	if err != nil {
		return Observation{}, 0, false, err
	}

	e.current = action.Apply(e.current)
	e.steps += 1
	e.distances = append(e.distances, e.Distance())

	reward := 0.0
	if e.HaveWinner() {
		reward = e.finalReward
		e.status = Won
	} else if e.steps > e.maxSteps {
		e.status = Exhausted
	}
	return e.Observation(), reward, e.status != Running, nil
}

// LegalActions is always the whole catalog, no move is pruned
func (e *Environment) LegalActions() []int {
	return e.catalog.Indices()
}

func (e *Environment) ActionToString(i int) (string, error) {
	a, err := e.catalog.Get(i)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

func (e *Environment) HaveWinner() bool {
	return Converged(e.current, e.target, e.tol, e.atol)
}

// Distance is the Frobenius distance between the current and target operators
func (e *Environment) Distance() float64 {
	return tensor.Distance(e.current, e.target)
}

func (e *Environment) Observation() Observation {
	return Encode(e.current)
}

// Render dumps the current operator as its matrix
func (e *Environment) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "step %d/%d, status %s, distance %.6f\n", e.steps, e.maxSteps, e.status, e.Distance())
	b.WriteString(e.Observation().String())
	return b.String()
}

func (e *Environment) Catalog() *Catalog {
	return e.catalog
}

func (e *Environment) Qubits() int {
	return e.qubits
}

func (e *Environment) Steps() int {
	return e.steps
}

func (e *Environment) MaxSteps() int {
	return e.maxSteps
}

func (e *Environment) Status() Status {
	return e.status
}

func (e *Environment) FinalReward() float64 {
	return e.finalReward
}

// Current returns a copy of the current operator
func (e *Environment) Current() *tensor.Tensor {
	return e.current.Clone()
}

// Target returns a copy of the target operator
func (e *Environment) Target() *tensor.Tensor {
	return e.target.Clone()
}

// DistanceHistory returns the distance to the target after every step of
// the current episode. It is diagnostic only.
func (e *Environment) DistanceHistory() []float64 {
	return append([]float64{}, e.distances...)
}
