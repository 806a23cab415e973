package types

// Environment driven by the Agent, one episode at a time
type Environment interface {
	// Reset called at the start of each episode
	Reset() (State, error)
	// Step applies the action to the current state
	Step(Action) (State, error)
}

// State of the system that RL policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state
	// Terminal states have none
	Actions() []Action
}

// And Action that RL policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// RewardedState carries the reward of the transition that led into it
type RewardedState interface {
	State
	Reward() float64
}

// RewardOf returns the reward carried by s, zero when it carries none
func RewardOf(s State) float64 {
	if r, ok := s.(RewardedState); ok {
		return r.Reward()
	}
	return 0
}
