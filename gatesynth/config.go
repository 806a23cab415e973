package gatesynth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zeu5/gate-synth-rl/gates"
	"github.com/zeu5/gate-synth-rl/tensor"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// MatrixConfig is a complex matrix written as separate real and imaginary parts.
// A missing imaginary part is read as zero.
type MatrixConfig struct {
	Real [][]float64 `yaml:"real"`
	Imag [][]float64 `yaml:"imag"`
}

func (m MatrixConfig) Complex() ([][]complex128, error) {
	if m.Imag != nil && len(m.Imag) != len(m.Real) {
		return nil, fmt.Errorf("%w: real and imaginary parts differ in size", ErrConfiguration)
	}
	out := make([][]complex128, len(m.Real))
	for i, row := range m.Real {
		out[i] = make([]complex128, len(row))
		if m.Imag != nil && len(m.Imag[i]) != len(row) {
			return nil, fmt.Errorf("%w: real and imaginary parts differ in size", ErrConfiguration)
		}
		for j, re := range row {
			im := 0.0
			if m.Imag != nil {
				im = m.Imag[i][j]
			}
			out[i][j] = complex(re, im)
		}
	}
	return out, nil
}

type CustomGateConfig struct {
	Name         string `yaml:"name"`
	MatrixConfig `yaml:",inline"`
}

// FileConfig is the YAML form of an environment configuration.
// The target is taken from the first of target_matrix, random_target_depth,
// target_candidates and target_circuit that is set, so the default circuit
// only applies when nothing else is configured.
type FileConfig struct {
	Qubits           int                `yaml:"qubits"`
	SingleQubitGates []string           `yaml:"single_qubit_gates"`
	TwoQubitGates    []string           `yaml:"two_qubit_gates"`
	CustomGates      []CustomGateConfig `yaml:"custom_gates"`

	InitialCircuit string `yaml:"initial_circuit"`

	TargetMatrix      *MatrixConfig `yaml:"target_matrix"`
	TargetCircuit     string        `yaml:"target_circuit"`
	RandomTargetDepth int           `yaml:"random_target_depth"`
	TargetCandidates  []string      `yaml:"target_candidates"`
	Seed              uint64        `yaml:"seed"`

	FinalReward  float64 `yaml:"final_reward"`
	MaxSteps     int     `yaml:"max_steps"`
	Tolerance    float64 `yaml:"tolerance"`
	AbsTolerance float64 `yaml:"abs_tolerance"`
}

// DefaultFileConfig is the one qubit task of synthesizing X from the
// identity with the default gate set.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Qubits:           1,
		SingleQubitGates: gateNames(gates.DefaultSingleQubitGates()),
		TwoQubitGates:    gateNames(gates.DefaultTwoQubitGates()),
		TargetCircuit:    "X 0",
		FinalReward:      100,
		MaxSteps:         1000,
		Tolerance:        1e-3,
	}
}

func gateNames[G gates.Gate](gs []G) []string {
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.Name()
	}
	return names
}

// LoadConfig reads a YAML file on top of the defaults
func LoadConfig(path string) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	if path == "" {
		return cfg, errors.New("config path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *FileConfig) Validate() error {
	if c.Qubits < 1 {
		return fmt.Errorf("%w: qubits must be at least 1, got %d", ErrConfiguration, c.Qubits)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max_steps must be positive", ErrConfiguration)
	}
	if c.Tolerance < 0 || c.AbsTolerance < 0 {
		return fmt.Errorf("%w: tolerances must not be negative", ErrConfiguration)
	}
	if c.RandomTargetDepth < 0 {
		return fmt.Errorf("%w: random_target_depth must not be negative", ErrConfiguration)
	}
	for _, g := range c.CustomGates {
		if g.Name == "" {
			return fmt.Errorf("%w: custom gate without a name", ErrConfiguration)
		}
	}
	return nil
}

// lookup resolves custom gates first, then the standard library
func (c *FileConfig) lookup() (GateLookup, error) {
	custom := make(map[string]gates.Gate)
	for _, cg := range c.CustomGates {
		m, err := cg.Complex()
		if err != nil {
			return nil, err
		}
		g, err := gates.FromMatrix(cg.Name, m)
		if err != nil {
			return nil, err
		}
		custom[cg.Name] = g
	}
	return func(name string) (gates.Gate, bool) {
		if g, ok := custom[name]; ok {
			return g, true
		}
		return gates.Lookup(name)
	}, nil
}

// Build resolves names, circuits and matrices into an environment Config
func (c *FileConfig) Build() (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	lookup, err := c.lookup()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		FinalReward:  c.FinalReward,
		MaxSteps:     c.MaxSteps,
		Tolerance:    c.Tolerance,
		AbsTolerance: c.AbsTolerance,
	}
	for _, name := range c.SingleQubitGates {
		g, ok := lookup(name)
		single, isSingle := g.(*gates.SingleQubitGate)
		if !ok || !isSingle {
			return Config{}, fmt.Errorf("%w: %q is not a single qubit gate (standard gates: %s)", ErrConfiguration, name, strings.Join(gates.Names(), ", "))
		}
		cfg.SingleQubitGates = append(cfg.SingleQubitGates, single)
	}
	for _, name := range c.TwoQubitGates {
		g, ok := lookup(name)
		two, isTwo := g.(*gates.TwoQubitGate)
		if !ok || !isTwo {
			return Config{}, fmt.Errorf("%w: %q is not a two qubit gate (standard gates: %s)", ErrConfiguration, name, strings.Join(gates.Names(), ", "))
		}
		cfg.TwoQubitGates = append(cfg.TwoQubitGates, two)
	}

	initialSteps, err := ParseCircuit(c.InitialCircuit, lookup)
	if err != nil {
		return Config{}, fmt.Errorf("initial_circuit: %w", err)
	}
	if cfg.Initial, err = BuildOperator(c.Qubits, initialSteps); err != nil {
		return Config{}, fmt.Errorf("initial_circuit: %w", err)
	}

	if cfg.Target, err = c.buildTarget(cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *FileConfig) buildTarget(cfg Config, lookup GateLookup) (*tensor.Tensor, error) {
	src := rand.NewSource(c.Seed)
	switch {
	case c.TargetMatrix != nil:
		m, err := c.TargetMatrix.Complex()
		if err != nil {
			return nil, fmt.Errorf("target_matrix: %w", err)
		}
		op, err := OperatorFromMatrix(m)
		if err != nil {
			return nil, fmt.Errorf("target_matrix: %w", err)
		}
		if n, _ := QubitsOf(op); n != c.Qubits {
			return nil, fmt.Errorf("%w: target_matrix acts on %d qubits, want %d", ErrConfiguration, n, c.Qubits)
		}
		return op, nil
	case c.RandomTargetDepth > 0:
		catalog := NewCatalog(cfg.SingleQubitGates, cfg.TwoQubitGates, c.Qubits)
		op, _, err := ScrambledTarget(catalog, cfg.Initial, c.RandomTargetDepth, src)
		return op, err
	case len(c.TargetCandidates) > 0:
		pick := c.TargetCandidates[rand.New(src).Intn(len(c.TargetCandidates))]
		steps, err := ParseCircuit(pick, lookup)
		if err != nil {
			return nil, fmt.Errorf("target_candidates: %w", err)
		}
		return BuildOperator(c.Qubits, steps)
	case c.TargetCircuit != "":
		steps, err := ParseCircuit(c.TargetCircuit, lookup)
		if err != nil {
			return nil, fmt.Errorf("target_circuit: %w", err)
		}
		return BuildOperator(c.Qubits, steps)
	}
	return nil, fmt.Errorf("%w: no target configured", ErrConfiguration)
}

// NewEnvironmentFromFile loads, builds and instantiates in one go
func NewEnvironmentFromFile(path string) (*Environment, error) {
	fc, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg, err := fc.Build()
	if err != nil {
		return nil, err
	}
	return NewEnvironment(cfg)
}
