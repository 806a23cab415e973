package types

type AgentConfig struct {
	Episodes    int
	Horizon     int
	Policy      Policy
	Environment Environment
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config *AgentConfig
	// collects the traces of the run
	// Only populated if the Run function is invoked
	traces      []*Trace
	policy      Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		traces:      make([]*Trace, config.Episodes),
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// Run the agent for the specified number of episodes and horizon
func (a *Agent) Run() []*Trace {
	for i := 0; i < a.config.Episodes; i++ {
		a.traces[i] = a.RunEpisode(i)
	}
	return a.traces
}

// RunEpisode runs a single episode and returns the resulting trace.
// An environment error ends the episode early and is kept on the trace.
func (a *Agent) RunEpisode(episode int) *Trace {
	trace := NewTrace()
	state, err := a.environment.Reset()
	if err != nil {
		trace.Err = err
		return trace
	}
	actions := state.Actions()

	for i := 0; i < a.config.Horizon; i++ {
		if len(actions) == 0 {
			break
		}
		nextAction, ok := a.policy.NextAction(i, state, actions)
		if !ok {
			break
		}
		nextState, err := a.environment.Step(nextAction)
		if err != nil {
			trace.Err = err
			break
		}
		a.policy.Update(i, state, nextAction, nextState)

		trace.Append(i, state, nextAction, nextState)
		state = nextState
		actions = nextState.Actions()
	}
	a.policy.UpdateIteration(episode, trace)

	return trace
}
