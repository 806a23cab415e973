package gatesynth

import (
	"strconv"

	"github.com/zeu5/gate-synth-rl/types"
)

// SynthAction wraps a catalog action for the RL driver.
// It hashes to its catalog index.
type SynthAction struct {
	Action
}

var _ types.Action = &SynthAction{}

func (a *SynthAction) Hash() string {
	return strconv.Itoa(a.Index())
}

// SynthState is the state the RL driver sees after a reset or a step
type SynthState struct {
	Observation Observation
	Status      Status
	Steps       int
	Distance    float64
	reward      float64
	actions     []types.Action
}

var _ types.RewardedState = &SynthState{}

// Hash keys the state by its rounded operator only
func (s *SynthState) Hash() string {
	return s.Observation.Hash()
}

func (s *SynthState) Actions() []types.Action {
	if s.Status != Running {
		return []types.Action{}
	}
	return s.actions
}

func (s *SynthState) Reward() float64 {
	return s.reward
}

// RLEnvironment adapts an Environment to types.Environment
type RLEnvironment struct {
	env     *Environment
	actions []types.Action
}

var _ types.Environment = &RLEnvironment{}

func NewRLEnvironment(env *Environment) *RLEnvironment {
	c := env.Catalog()
	actions := make([]types.Action, c.Len())
	for i := range actions {
		a, _ := c.Get(i)
		actions[i] = &SynthAction{Action: a}
	}
	return &RLEnvironment{
		env:     env,
		actions: actions,
	}
}

// Env is the wrapped environment
func (r *RLEnvironment) Env() *Environment {
	return r.env
}

func (r *RLEnvironment) Reset() (types.State, error) {
	obs := r.env.Reset()
	return r.state(obs, 0), nil
}

func (r *RLEnvironment) Step(a types.Action) (types.State, error) {
	index, err := r.indexOf(a)
	if err != nil {
		return nil, err
	}
	obs, reward, _, err := r.env.Step(index)
	if err != nil {
		return nil, err
	}
	return r.state(obs, reward), nil
}

func (r *RLEnvironment) indexOf(a types.Action) (int, error) {
	if sa, ok := a.(*SynthAction); ok {
		return sa.Index(), nil
	}
	index, err := strconv.Atoi(a.Hash())
	if err != nil {
		return 0, ErrInvalidActionIndex
	}
	return index, nil
}

func (r *RLEnvironment) state(obs Observation, reward float64) *SynthState {
	return &SynthState{
		Observation: obs,
		Status:      r.env.Status(),
		Steps:       r.env.Steps(),
		Distance:    r.env.Distance(),
		reward:      reward,
		actions:     r.actions,
	}
}

// Outcome describes how a traced episode ended
type Outcome struct {
	Won           bool
	Steps         int
	Reward        float64
	FinalDistance float64
	Actions       []int
}

// OutcomeOf reads the outcome of an episode from its trace
func OutcomeOf(t *types.Trace) Outcome {
	o := Outcome{
		Actions: make([]int, 0, t.Len()),
		Reward:  t.TotalReward(),
	}
	for i := 0; i < t.Len(); i++ {
		_, a, _, _ := t.Get(i)
		if sa, ok := a.(*SynthAction); ok {
			o.Actions = append(o.Actions, sa.Index())
		}
	}
	if _, _, last, ok := t.Last(); ok {
		if s, ok := last.(*SynthState); ok {
			o.Won = s.Status == Won
			o.Steps = s.Steps
			o.FinalDistance = s.Distance
		}
	}
	return o
}
