package gatesynth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/gate-synth-rl/gates"
	"github.com/zeu5/gate-synth-rl/tensor"
	"golang.org/x/exp/rand"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigBuilds(t *testing.T) {
	cfg, err := DefaultFileConfig().Build()
	require.NoError(t, err)
	env, err := NewEnvironment(cfg)
	require.NoError(t, err)
	assert.Equal(t, 7, env.Catalog().Len())
	assert.Equal(t, []string{"I", "X", "Y", "Z", "H", "S", "T"}, DefaultFileConfig().SingleQubitGates)
	assert.Equal(t, []string{"CNOT"}, DefaultFileConfig().TwoQubitGates)
	assert.Equal(t, 1000, env.MaxSteps())
	assert.True(t, tensor.AllClose(env.Target(), gates.X.Tensor(), 0, 1e-12))
}

func TestLoadConfigWithCircuitTarget(t *testing.T) {
	path := writeConfig(t, `
qubits: 2
single_qubit_gates: [H, X]
two_qubit_gates: [CNOT]
target_circuit: "H 0; CNOT 0 1"
final_reward: 10
max_steps: 50
tolerance: 0.001
`)
	env, err := NewEnvironmentFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2*2+2, env.Catalog().Len())
	assert.Equal(t, 50, env.MaxSteps())

	h, _ := env.Catalog().Find("H", 0)
	cx, _ := env.Catalog().Find("CNOT", 0, 1)
	_, _, done, err := env.Step(h.Index())
	require.NoError(t, err)
	require.False(t, done)
	_, reward, done, err := env.Step(cx.Index())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 10.0, reward)
}

func TestLoadConfigWithCustomGateAndMatrixTarget(t *testing.T) {
	path := writeConfig(t, `
qubits: 1
single_qubit_gates: [I, SX]
custom_gates:
  - name: SX
    real: [[0.5, 0.5], [0.5, 0.5]]
    imag: [[0.5, -0.5], [-0.5, 0.5]]
target_matrix:
  real: [[0, 1], [1, 0]]
max_steps: 10
tolerance: 0.001
`)
	env, err := NewEnvironmentFromFile(path)
	require.NoError(t, err)
	sx, ok := env.Catalog().Find("SX", 0)
	require.True(t, ok)

	// SX squared is X
	_, _, done, err := env.Step(sx.Index())
	require.NoError(t, err)
	require.False(t, done)
	_, _, done, err = env.Step(sx.Index())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, Won, env.Status())
}

func TestConfigErrors(t *testing.T) {
	for name, content := range map[string]string{
		"unknown gate":         "single_qubit_gates: [NOPE]",
		"two qubit as single":  "single_qubit_gates: [CNOT]",
		"bad circuit qubit":    "target_circuit: \"X 3\"",
		"bad circuit arity":    "target_circuit: \"X 0 1\"",
		"zero qubits":          "qubits: 0",
		"matrix size mismatch": "qubits: 2\ntarget_matrix:\n  real: [[0, 1], [1, 0]]",
		"negative depth":       "random_target_depth: -1",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewEnvironmentFromFile(writeConfig(t, content))
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}

	_, err := NewEnvironmentFromFile(writeConfig(t, "custom_gates:\n  - name: bad\n    real: [[1, 0, 0], [0, 1, 0], [0, 0, 1]]"))
	require.ErrorIs(t, err, gates.ErrUnsupportedGateShape)

	_, err = NewEnvironmentFromFile(writeConfig(t, "single_qubit_gates: [NOPE]"))
	assert.ErrorContains(t, err, "standard gates: CNOT, CX, CZ, H, I, S, SWAP, Sdg, T, Tdg, X, Y, Z")

	_, err = LoadConfig("")
	require.Error(t, err)
}

func TestScrambledTargetIsReachable(t *testing.T) {
	c := NewCatalog([]*gates.SingleQubitGate{gates.H, gates.T}, []*gates.TwoQubitGate{gates.CNOT}, 2)
	target, used, err := ScrambledTarget(c, Identity(2), 4, rand.NewSource(7))
	require.NoError(t, err)
	require.Len(t, used, 4)

	env, err := NewEnvironment(Config{
		SingleQubitGates: []*gates.SingleQubitGate{gates.H, gates.T},
		TwoQubitGates:    []*gates.TwoQubitGate{gates.CNOT},
		Initial:          Identity(2),
		Target:           target,
		FinalReward:      1,
		MaxSteps:         10,
		Tolerance:        1e-6,
	})
	require.NoError(t, err)
	done := false
	for _, i := range used {
		_, _, done, err = env.Step(i)
		require.NoError(t, err)
		if done {
			break
		}
	}
	assert.True(t, done)
	assert.Equal(t, Won, env.Status())

	_, _, err = ScrambledTarget(NewCatalog(nil, nil, 1), Identity(1), 2, rand.NewSource(1))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestTargetCandidatesAreSeeded(t *testing.T) {
	fc := DefaultFileConfig()
	fc.TargetCandidates = []string{"X 0", "H 0", "S 0; H 0"}
	fc.Seed = 3
	a, err := fc.Build()
	require.NoError(t, err)
	b, err := fc.Build()
	require.NoError(t, err)
	assert.True(t, tensor.AllClose(a.Target, b.Target, 0, 0))
}

func TestParseCircuit(t *testing.T) {
	steps, err := ParseCircuit(" H 0 ;CNOT 1 0;; T 1 ", func(name string) (gates.Gate, bool) { return gates.Lookup(name) })
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "CNOT", steps[1].Gate.Name())
	assert.Equal(t, []int{1, 0}, steps[1].Qubits)

	_, err = ParseCircuit("H x", func(name string) (gates.Gate, bool) { return gates.Lookup(name) })
	require.ErrorIs(t, err, ErrConfiguration)
}
