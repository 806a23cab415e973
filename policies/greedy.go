package policies

import (
	"time"

	"github.com/zeu5/gate-synth-rl/types"
	"golang.org/x/exp/rand"
)

// GreedyConfig configures the tabular Q-learners
type GreedyConfig struct {
	Alpha    float64
	Discount float64
	Epsilon  float64
	// weight of the 1/visits exploration bonus added to the reward
	Bonus float64
	// initial value of unseen (state, action) pairs,
	// 1 when left at zero with a bonus so that visits lower a pair's value
	Init float64
	Seed uint64
}

// GreedyPolicy is epsilon-greedy Q-learning over the rewards carried by the
// states, with an optional count based exploration bonus
type GreedyPolicy struct {
	qTable *QTable
	visits *QTable
	config GreedyConfig
	rand   *rand.Rand
}

var _ types.Policy = &GreedyPolicy{}

func NewGreedyPolicy(config GreedyConfig) *GreedyPolicy {
	if config.Seed == 0 {
		config.Seed = uint64(time.Now().UnixNano())
	}
	if config.Bonus > 0 && config.Init == 0 {
		config.Init = 1
	}
	return &GreedyPolicy{
		qTable: NewQTable(),
		visits: NewQTable(),
		config: config,
		rand:   rand.New(rand.NewSource(config.Seed)),
	}
}

func (b *GreedyPolicy) Record(path string) {
	b.qTable.Record(path)
}

func (b *GreedyPolicy) Reset() {
	b.qTable = NewQTable()
	b.visits = NewQTable()
}

// QTable learned so far
func (b *GreedyPolicy) QTable() *QTable {
	return b.qTable
}

func (b *GreedyPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if b.rand.Float64() < b.config.Epsilon {
		i := b.rand.Intn(len(actions))
		return actions[i], true
	}
	return b.greedy(state, actions)
}

func (b *GreedyPolicy) greedy(state types.State, actions []types.Action) (types.Action, bool) {
	actionsMap := make(map[string]types.Action)
	availableActions := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		availableActions[i] = aHash
	}
	maxAction, _ := b.qTable.MaxAmong(state.Hash(), availableActions, b.config.Init)
	if maxAction == "" {
		return nil, false
	}
	return actionsMap[maxAction], true
}

func (b *GreedyPolicy) Update(step int, state types.State, action types.Action, nextState types.State) {
	stateHash := state.Hash()
	actionHash := action.Hash()
	t := b.visits.Get(stateHash, actionHash, 0) + 1
	b.visits.Set(stateHash, actionHash, t)

	reward := types.RewardOf(nextState) + b.config.Bonus/t
	nextStateVal := 0.0
	// terminal states have no future value
	if len(nextState.Actions()) > 0 {
		_, nextStateVal = b.qTable.Max(nextState.Hash(), b.config.Init)
	}
	curVal := b.qTable.Get(stateHash, actionHash, b.config.Init)

	newVal := (1-b.config.Alpha)*curVal + b.config.Alpha*(reward+b.config.Discount*nextStateVal)
	b.qTable.Set(stateHash, actionHash, newVal)
}

func (b *GreedyPolicy) UpdateIteration(iteration int, trace *types.Trace) {

}
