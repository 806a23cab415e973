package types

import "encoding/json"

// Trace of an episode as triplets (state, action, nextState)
type Trace struct {
	states     []State
	actions    []Action
	nextStates []State
	// set when the episode was cut short by an environment error
	Err error
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]State, 0),
		actions:    make([]Action, 0),
		nextStates: make([]State, 0),
	}
}

func (t *Trace) Append(step int, state State, action Action, nextState State) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.nextStates = append(t.nextStates, nextState)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, Action, State, bool) {
	if i < 0 || i >= len(t.states) {
		return nil, nil, nil, false
	}
	return t.states[i], t.actions[i], t.nextStates[i], true
}

func (t *Trace) Last() (State, Action, State, bool) {
	if len(t.states) < 1 {
		return nil, nil, nil, false
	}
	lastIndex := len(t.states) - 1
	return t.states[lastIndex], t.actions[lastIndex], t.nextStates[lastIndex], true
}

// TotalReward sums the rewards carried by the next states
func (t *Trace) TotalReward() float64 {
	total := 0.0
	for _, s := range t.nextStates {
		total += RewardOf(s)
	}
	return total
}

// Terminated reports whether the episode ended in a state with no actions
func (t *Trace) Terminated() bool {
	_, _, last, ok := t.Last()
	return ok && len(last.Actions()) == 0
}

type traceJSON struct {
	States  []string  `json:"states"`
	Actions []string  `json:"actions"`
	Rewards []float64 `json:"rewards"`
	Err     string    `json:"error,omitempty"`
}

func (t *Trace) MarshalJSON() ([]byte, error) {
	out := traceJSON{
		States:  make([]string, 0, len(t.states)+1),
		Actions: make([]string, len(t.actions)),
		Rewards: make([]float64, len(t.nextStates)),
	}
	for i := range t.states {
		out.States = append(out.States, t.states[i].Hash())
		out.Actions[i] = t.actions[i].Hash()
		out.Rewards[i] = RewardOf(t.nextStates[i])
	}
	if _, _, last, ok := t.Last(); ok {
		out.States = append(out.States, last.Hash())
	}
	if t.Err != nil {
		out.Err = t.Err.Error()
	}
	return json.Marshal(out)
}
