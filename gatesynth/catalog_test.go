package gatesynth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/gate-synth-rl/gates"
)

func TestCatalogCardinality(t *testing.T) {
	single := [][]*gates.SingleQubitGate{
		{},
		{gates.X},
		{gates.I, gates.X, gates.H},
		gates.DefaultSingleQubitGates(),
	}
	two := [][]*gates.TwoQubitGate{
		{},
		{gates.CNOT},
		{gates.CNOT, gates.CZ, gates.SWAP},
	}
	for n := 1; n <= 4; n++ {
		for _, g1 := range single {
			for _, g2 := range two {
				name := fmt.Sprintf("n=%d/g1=%d/g2=%d", n, len(g1), len(g2))
				t.Run(name, func(t *testing.T) {
					c := NewCatalog(g1, g2, n)
					want := len(g1)*n + len(g2)*n*(n-1)
					assert.Equal(t, want, c.Len())
					for i := 0; i < c.Len(); i++ {
						a, err := c.Get(i)
						require.NoError(t, err)
						assert.Equal(t, i, a.Index())
					}
				})
			}
		}
	}
}

func TestCatalogOrder(t *testing.T) {
	c := NewCatalog([]*gates.SingleQubitGate{gates.X, gates.H}, []*gates.TwoQubitGate{gates.CNOT, gates.CZ}, 3)
	want := []string{
		"0. - applying X on 0",
		"1. - applying X on 1",
		"2. - applying X on 2",
		"3. - applying H on 0",
		"4. - applying H on 1",
		"5. - applying H on 2",
		"6. - applying CNOT on (0, 1)",
		"7. - applying CNOT on (0, 2)",
		"8. - applying CNOT on (1, 0)",
		"9. - applying CNOT on (1, 2)",
		"10. - applying CNOT on (2, 0)",
		"11. - applying CNOT on (2, 1)",
		"12. - applying CZ on (0, 1)",
	}
	for i, w := range want {
		a, err := c.Get(i)
		require.NoError(t, err)
		assert.Equal(t, w, a.String())
	}
	assert.Equal(t, 18, c.Len())
}

func TestCatalogSingleQubitHasNoPairs(t *testing.T) {
	c := NewCatalog([]*gates.SingleQubitGate{gates.I, gates.X}, []*gates.TwoQubitGate{gates.CNOT}, 1)
	assert.Equal(t, 2, c.Len())
}

func TestCatalogEmpty(t *testing.T) {
	c := NewCatalog(nil, nil, 2)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Indices())
	_, err := c.Get(0)
	require.ErrorIs(t, err, ErrInvalidActionIndex)
}

func TestCatalogFind(t *testing.T) {
	c := NewCatalog([]*gates.SingleQubitGate{gates.X}, []*gates.TwoQubitGate{gates.CNOT}, 2)
	a, ok := c.Find("CNOT", 1, 0)
	require.True(t, ok)
	assert.Equal(t, []int{1, 0}, a.Qubits())
	assert.Equal(t, 3, a.Index())

	_, ok = c.Find("CNOT", 0)
	assert.False(t, ok)
	_, ok = c.Find("H", 0)
	assert.False(t, ok)
}

func TestActionQubitsIsACopy(t *testing.T) {
	c := NewCatalog(nil, []*gates.TwoQubitGate{gates.CNOT}, 2)
	a, _ := c.Get(0)
	q := a.Qubits()
	q[0] = 7
	again, _ := c.Get(0)
	assert.Equal(t, []int{0, 1}, again.Qubits())
}
