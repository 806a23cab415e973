package types

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moveAction string

func (m moveAction) Hash() string { return string(m) }

type lineState struct {
	pos    int
	length int
	reward float64
}

func (l *lineState) Hash() string { return strconv.Itoa(l.pos) }

func (l *lineState) Actions() []Action {
	if l.pos == l.length {
		return []Action{}
	}
	return []Action{moveAction("left"), moveAction("right")}
}

func (l *lineState) Reward() float64 { return l.reward }

// lineEnv walks along [0, length]; reaching length ends the episode
type lineEnv struct {
	length  int
	cur     *lineState
	failAt  int
	stepped int
}

func (l *lineEnv) Reset() (State, error) {
	l.cur = &lineState{pos: 0, length: l.length}
	l.stepped = 0
	return l.cur, nil
}

func (l *lineEnv) Step(a Action) (State, error) {
	l.stepped++
	if l.failAt > 0 && l.stepped == l.failAt {
		return nil, errors.New("boom")
	}
	pos := l.cur.pos
	if a.Hash() == "right" {
		pos++
	} else if pos > 0 {
		pos--
	}
	reward := 0.0
	if pos == l.length {
		reward = 1
	}
	l.cur = &lineState{pos: pos, length: l.length, reward: reward}
	return l.cur, nil
}

type alwaysRight struct{ RandomPolicy }

func (alwaysRight) NextAction(_ int, _ State, actions []Action) (Action, bool) {
	return actions[len(actions)-1], true
}

func TestAgentStopsAtTerminalState(t *testing.T) {
	agent := NewAgent(&AgentConfig{
		Episodes:    3,
		Horizon:     10,
		Policy:      &alwaysRight{},
		Environment: &lineEnv{length: 4},
	})
	traces := agent.Run()
	require.Len(t, traces, 3)
	for _, tr := range traces {
		assert.Equal(t, 4, tr.Len())
		assert.True(t, tr.Terminated())
		assert.Equal(t, 1.0, tr.TotalReward())
		assert.NoError(t, tr.Err)
	}
}

func TestAgentRespectsHorizon(t *testing.T) {
	agent := NewAgent(&AgentConfig{
		Episodes:    1,
		Horizon:     2,
		Policy:      &alwaysRight{},
		Environment: &lineEnv{length: 4},
	})
	tr := agent.RunEpisode(0)
	assert.Equal(t, 2, tr.Len())
	assert.False(t, tr.Terminated())
}

func TestAgentKeepsEnvironmentError(t *testing.T) {
	agent := NewAgent(&AgentConfig{
		Episodes:    1,
		Horizon:     10,
		Policy:      &alwaysRight{},
		Environment: &lineEnv{length: 4, failAt: 2},
	})
	tr := agent.RunEpisode(0)
	assert.Equal(t, 1, tr.Len())
	assert.EqualError(t, tr.Err, "boom")
}

func TestTraceAccessors(t *testing.T) {
	env := &lineEnv{length: 3}
	agent := NewAgent(&AgentConfig{Episodes: 1, Horizon: 10, Policy: &alwaysRight{}, Environment: env})
	tr := agent.RunEpisode(0)

	s, a, ns, ok := tr.Get(1)
	require.True(t, ok)
	assert.Equal(t, "1", s.Hash())
	assert.Equal(t, "right", a.Hash())
	assert.Equal(t, "2", ns.Hash())
	_, _, _, ok = tr.Get(3)
	assert.False(t, ok)

	bs, err := json.Marshal(tr)
	require.NoError(t, err)
	var out traceJSON
	require.NoError(t, json.Unmarshal(bs, &out))
	assert.Equal(t, []string{"0", "1", "2", "3"}, out.States)
	assert.Equal(t, []float64{0, 0, 1}, out.Rewards)
}

func TestSoftMaxNegPolicyPenalizesVisits(t *testing.T) {
	p := NewSoftMaxNegPolicy(0.5, 0.9, 1)
	s := &lineState{pos: 0, length: 3}
	a, ok := p.NextAction(0, s, s.Actions())
	require.True(t, ok)
	p.Update(0, s, a, &lineState{pos: 1, length: 3})
	assert.Less(t, p.QTable["0"][a.Hash()], 0.0)

	_, ok = p.NextAction(0, s, []Action{})
	assert.False(t, ok)
}

func TestSoftMaxSample(t *testing.T) {
	p := NewSeededRandomPolicy(1)
	counts := make([]int, 2)
	for i := 0; i < 1000; i++ {
		j, ok := SoftMaxSample([]float64{0, 10}, 1, p.rand)
		require.True(t, ok)
		counts[j]++
	}
	assert.Greater(t, counts[1], 950)

	_, ok := SoftMaxSample(nil, 1, p.rand)
	assert.False(t, ok)
}

func TestComparisonRun(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run("parallel="+strconv.FormatBool(parallel), func(t *testing.T) {
			dir := t.TempDir()
			c, err := NewComparison(&ComparisonConfig{
				Runs:         2,
				Episodes:     5,
				Horizon:      20,
				RecordPath:   dir,
				RecordTraces: true,
				RecordPolicy: true,
				Parallel:     parallel,
			})
			require.NoError(t, err)

			var lengths [][]DataSet
			c.AddAnalysis("length", EpisodeLength, func(_ int, _ int, names []string, ds []DataSet) {
				assert.Equal(t, []string{"right", "negative"}, names)
				lengths = append(lengths, ds)
			})
			c.AddAnalysis("coverage", NewPureCoverage, SeriesPlotter(path.Join(dir, "plots"), "States covered", "coverage"))
			c.AddExperiment(NewExperiment("right", &alwaysRight{}, &lineEnv{length: 3}))
			c.AddExperiment(NewExperiment("negative", NewSoftMaxNegPolicy(0.3, 0.9, 2), &lineEnv{length: 3}))

			stats, err := c.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, stats, 2)
			assert.Equal(t, 5, stats[0][0].Terminated)
			assert.Equal(t, 15, stats[0][0].Timesteps)

			require.Len(t, lengths, 2)
			assert.Equal(t, []float64{3, 3, 3, 3, 3}, lengths[0][0])

			_, err = os.Stat(path.Join(dir, "comparison_config.json"))
			assert.NoError(t, err)
			_, err = os.Stat(path.Join(dir, "traces", "right_0.jsonl"))
			assert.NoError(t, err)
			_, err = os.Stat(path.Join(dir, "policies", "negative_1.json"))
			assert.NoError(t, err)
			_, err = os.Stat(path.Join(dir, "plots", "1_coverage.png"))
			assert.NoError(t, err)
		})
	}
}

func TestComparisonStopsOnCancel(t *testing.T) {
	c, err := NewComparison(&ComparisonConfig{Runs: 3, Episodes: 5, Horizon: 5, RecordPath: t.TempDir()})
	require.NoError(t, err)
	c.AddExperiment(NewExperiment("right", &alwaysRight{}, &lineEnv{length: 3}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stats)
}

func TestVisitGraph(t *testing.T) {
	agent := NewAgent(&AgentConfig{Episodes: 1, Horizon: 10, Policy: &alwaysRight{}, Environment: &lineEnv{length: 2}})
	g := NewVisitGraph()
	for run := 0; run < 2; run++ {
		tr := agent.RunEpisode(run)
		for i := 0; i < tr.Len(); i++ {
			s, a, ns, _ := tr.Get(i)
			g.Update(s, a.Hash(), ns)
		}
	}
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, map[string]int{"0": 2, "1": 2, "2": 0}, g.GetVisits())
	assert.True(t, g.Nodes["2"].Terminal)
	assert.False(t, g.Nodes["0"].Terminal)
	assert.Equal(t, []string{"0", "1", "2"}, g.Path("0", []string{"right", "right", "right"}))
	assert.Equal(t, []string{"0"}, g.Path("0", []string{"left"}))

	p := path.Join(t.TempDir(), "graphs", "g.json")
	require.NoError(t, g.Record(p))
	loaded, err := ReadVisitGraph(p)
	require.NoError(t, err)
	assert.Equal(t, g.GetVisits(), loaded.GetVisits())
	assert.True(t, loaded.Nodes["1"].Next["right"]["2"])
	assert.True(t, loaded.Nodes["1"].Prev["right"]["0"])

	g.Clear()
	assert.Zero(t, g.Len())
	_, err = ReadVisitGraph(path.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
