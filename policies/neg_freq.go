package policies

import (
	"math"

	"github.com/zeu5/gate-synth-rl/types"
)

// SoftMaxNegFreqPolicy penalizes a transition by how often its next state
// has been reached, so rarely seen operators are preferred
type SoftMaxNegFreqPolicy struct {
	*types.SoftMaxNegPolicy
	Freq  map[string]int
	Max   bool // if updates with max instead of plus
	alpha float64
	gamma float64
}

var _ types.Policy = &SoftMaxNegFreqPolicy{}

func NewSoftMaxNegFreqPolicy(alpha, gamma float64, max bool, seed uint64) *SoftMaxNegFreqPolicy {
	return &SoftMaxNegFreqPolicy{
		SoftMaxNegPolicy: types.NewSoftMaxNegPolicy(alpha, gamma, seed),
		Freq:             make(map[string]int),
		Max:              max,
		alpha:            alpha,
		gamma:            gamma,
	}
}

func (t *SoftMaxNegFreqPolicy) Reset() {
	t.SoftMaxNegPolicy.Reset()
	t.Freq = make(map[string]int)
}

func (t *SoftMaxNegFreqPolicy) Update(step int, state types.State, action types.Action, nextState types.State) {
	stateHash := state.Hash()

	nextStateHash := nextState.Hash()
	actionKey := action.Hash()
	if _, ok := t.QTable[stateHash]; !ok {
		t.QTable[stateHash] = make(map[string]float64)
	}
	curVal := t.QTable[stateHash][actionKey]
	max := float64(0)
	if _, ok := t.QTable[nextStateHash]; ok {
		for _, val := range t.QTable[nextStateHash] {
			if val > max {
				max = val
			}
		}
	}
	t.Freq[nextStateHash] += 1
	reward := float64(-1 * t.Freq[nextStateHash])

	nextVal := float64(0)
	if t.Max {
		nextVal = (1-t.alpha)*curVal + t.alpha*math.Max(reward, t.gamma*max)
	} else {
		nextVal = (1-t.alpha)*curVal + t.alpha*(reward+t.gamma*max)
	}
	t.QTable[stateHash][actionKey] = nextVal
}
