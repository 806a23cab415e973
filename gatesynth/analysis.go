package gatesynth

import (
	"context"
	"fmt"
	"path"

	"github.com/zeu5/gate-synth-rl/store"
	"github.com/zeu5/gate-synth-rl/types"
	"github.com/zeu5/gate-synth-rl/util"
)

// SuccessRate tracks the fraction of episodes won so far, after every episode
type SuccessRate struct {
	won   int
	rates []float64
}

var _ types.Analyzer = &SuccessRate{}

func NewSuccessRate() types.Analyzer {
	return &SuccessRate{rates: make([]float64, 0)}
}

func (s *SuccessRate) Analyze(_ int, _ int, _ string, t *types.Trace) {
	if OutcomeOf(t).Won {
		s.won++
	}
	s.rates = append(s.rates, float64(s.won)/float64(len(s.rates)+1))
}

func (s *SuccessRate) DataSet() types.DataSet {
	out := make([]float64, len(s.rates))
	copy(out, s.rates)
	return out
}

func (s *SuccessRate) Reset() {
	s.won = 0
	s.rates = make([]float64, 0)
}

// FinalDistance records the distance to the target at the end of every episode
func FinalDistance() types.Analyzer {
	return types.NewSeriesAnalyzer(func(t *types.Trace) float64 {
		return OutcomeOf(t).FinalDistance
	})
}

// EpisodeRecorder saves the outcome of every analyzed episode to a store.
// Its dataset is a RecordedCount.
type EpisodeRecorder struct {
	ctx    context.Context
	store  store.Store
	saved  int
	failed int
}

var _ types.Analyzer = &EpisodeRecorder{}

// RecordEpisodes returns a factory of recorders writing to st
func RecordEpisodes(ctx context.Context, st store.Store) types.AnalyzerFactory {
	return func() types.Analyzer {
		return &EpisodeRecorder{ctx: ctx, store: st}
	}
}

func (r *EpisodeRecorder) Analyze(run int, episode int, experiment string, t *types.Trace) {
	o := OutcomeOf(t)
	record := store.NewEpisodeRecord(experiment, run, episode)
	record.Steps = o.Steps
	record.Won = o.Won
	record.Reward = o.Reward
	record.FinalDistance = o.FinalDistance
	record.Actions = o.Actions
	if err := r.store.SaveEpisode(r.ctx, record); err != nil {
		r.failed++
		return
	}
	r.saved++
}

// RecordedCount is the number of episodes saved and those the store rejected
type RecordedCount struct {
	Saved  int
	Failed int
}

func (r *EpisodeRecorder) DataSet() types.DataSet {
	return RecordedCount{Saved: r.saved, Failed: r.failed}
}

func (r *EpisodeRecorder) Reset() {
	r.saved = 0
	r.failed = 0
}

// RecordedComparator prints how many episodes every experiment stored
func RecordedComparator() types.Comparator {
	return func(run int, _ int, names []string, ds []types.DataSet) {
		for i, name := range names {
			count, ok := ds[i].(RecordedCount)
			if !ok {
				continue
			}
			fmt.Printf("Run %d: stored %d episodes for %s\n", run, count.Saved, name)
			if count.Failed > 0 {
				fmt.Printf("Run %d: failed to store %d episodes for %s\n", run, count.Failed, name)
			}
		}
	}
}

// StateGraph builds the graph of operator states visited by an experiment in a
// run and writes it to savePath/visit_graph_<experiment>_<run>.json.
// Its dataset is the number of distinct states in the graph.
type StateGraph struct {
	savePath   string
	graph      *types.VisitGraph
	experiment string
	run        int
}

var _ types.Analyzer = &StateGraph{}

func RecordStateGraph(savePath string) types.AnalyzerFactory {
	util.EnsureDir(savePath)
	return func() types.Analyzer {
		return &StateGraph{savePath: savePath, graph: types.NewVisitGraph()}
	}
}

func (g *StateGraph) Analyze(run int, _ int, experiment string, t *types.Trace) {
	g.experiment = experiment
	g.run = run
	for i := 0; i < t.Len(); i++ {
		s, a, ns, _ := t.Get(i)
		g.graph.Update(s, a.Hash(), ns)
	}
}

func (g *StateGraph) DataSet() types.DataSet {
	if g.experiment != "" {
		name := fmt.Sprintf("visit_graph_%s_%d.json", g.experiment, g.run)
		g.graph.Record(path.Join(g.savePath, name))
	}
	return g.graph.Len()
}

func (g *StateGraph) Reset() {
	g.graph.Clear()
	g.experiment = ""
}

// StateGraphComparator prints the number of states each experiment reached
func StateGraphComparator() types.Comparator {
	return func(run int, _ int, names []string, ds []types.DataSet) {
		for i, name := range names {
			fmt.Printf("Run %d: visited %v states for %s\n", run, ds[i], name)
		}
	}
}
