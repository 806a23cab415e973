package policies

import (
	"github.com/zeu5/gate-synth-rl/types"
	"golang.org/x/exp/rand"
)

// SoftMaxPolicy shares the learning rule of GreedyPolicy but samples
// actions from a softmax over the learned values
type SoftMaxPolicy struct {
	*GreedyPolicy
	temperature float64
	rand        rand.Source
}

var _ types.Policy = &SoftMaxPolicy{}

func NewSoftMaxPolicy(config GreedyConfig, temperature float64) *SoftMaxPolicy {
	config.Epsilon = 0
	g := NewGreedyPolicy(config)
	return &SoftMaxPolicy{
		GreedyPolicy: g,
		temperature:  temperature,
		rand:         rand.NewSource(g.config.Seed + 1),
	}
}

func (b *SoftMaxPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	stateHash := state.Hash()
	vals := make([]float64, len(actions))
	for i, action := range actions {
		vals[i] = b.qTable.Get(stateHash, action.Hash(), b.config.Init)
	}
	i, ok := types.SoftMaxSample(vals, b.temperature, b.rand)
	if !ok {
		return nil, false
	}
	return actions[i], true
}
