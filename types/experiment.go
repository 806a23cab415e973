package types

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"

	"github.com/zeu5/gate-synth-rl/util"
)

type experimentRunConfig struct {
	CurrentRun int
	Episodes   int
	Horizon    int
	Analyzers  map[string]Analyzer
	Context    context.Context

	// abort after this many episodes in a row end with an error
	ConsecutiveErrorsAbort int

	RecordTraces   bool
	RecordPolicy   bool
	ReportSavePath string

	// progress lines are skipped for parallel runs
	Quiet             bool
	LongestExpNameLen int
}

// Experiment encapsulates the different parameters to configure an agent and analyze the traces
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		return
	}
	util.AppendToFile(tracesFile, string(bs))
}

// ExperimentStats summarizes how the episodes of a run ended
type ExperimentStats struct {
	Episodes   int
	Terminated int
	Horizon    int
	Errors     int
	Timesteps  int
}

// Run the experiment for the specified number of episodes,
// feeding every trace to the analyzers
func (e *Experiment) Run(rConfig *experimentRunConfig) ExperimentStats {
	stats := ExperimentStats{}
	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})

	consecutiveErrors := 0
	EPPadding := len(strconv.Itoa(rConfig.Episodes))
	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			return stats
		default:
		}

		trace := agent.RunEpisode(episode)
		stats.Episodes += 1
		stats.Timesteps += trace.Len()

		switch {
		case trace.Err != nil:
			stats.Errors += 1
			consecutiveErrors += 1
		case trace.Terminated():
			stats.Terminated += 1
			consecutiveErrors = 0
		default:
			stats.Horizon += 1
			consecutiveErrors = 0
		}

		if rConfig.RecordTraces {
			e.recordTrace(rConfig, trace)
		}
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, episode, e.Name, trace)
		}

		if !rConfig.Quiet {
			fmt.Printf("\rExp:%*s, Eps:%*d/%d, TSteps:%d || Terminal:%*d, Horizon:%*d, Err:%*d",
				rConfig.LongestExpNameLen, e.Name, EPPadding, stats.Episodes, rConfig.Episodes, stats.Timesteps,
				EPPadding, stats.Terminated, EPPadding, stats.Horizon, EPPadding, stats.Errors)
		}

		if rConfig.ConsecutiveErrorsAbort > 0 && consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			fmt.Printf("\n Aborting experiment %s : %d consecutive errors\n", e.Name, consecutiveErrors)
			break
		}
	}

	if rConfig.RecordPolicy {
		e.policy.Record(path.Join(rConfig.ReportSavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)))
	}
	if !rConfig.Quiet {
		fmt.Println("")
	}
	return stats
}

// Reset cleans the learned state of the policy between runs
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// Run, episode, experiment, trace
	Analyze(int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// AnalyzerFactory creates a fresh analyzer for every experiment of a run
type AnalyzerFactory func() Analyzer

// Comparator differentiates between different datasets with associated names
// run, total episodes, experiment names, datasets
type Comparator func(int, int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(_, _ int, _ []string, _ []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // number of steps

	RecordPath string // path to store the results

	ConsecutiveErrorsAbort int

	// record flags
	RecordTraces bool
	RecordPolicy bool

	// run the experiments of a run concurrently
	Parallel bool
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["record_traces"] = cfg.RecordTraces
	out["record_policy"] = cfg.RecordPolicy
	out["parallel"] = cfg.Parallel

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments
	out["analyzers"] = c.names

	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(cfg.RecordPath, "comparison_config.json"), bs, 0644)
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	names       []string
	analyzers   map[string]AnalyzerFactory
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance and prepares the record folders
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if _, err := os.Stat(config.RecordPath); err == nil {
		if err := util.RemoveContents(config.RecordPath); err != nil {
			return nil, err
		}
	}
	foldersToCreate := []string{""}
	if config.RecordTraces {
		foldersToCreate = append(foldersToCreate, "traces")
	}
	if config.RecordPolicy {
		foldersToCreate = append(foldersToCreate, "policies")
	}
	for _, s := range foldersToCreate {
		if err := util.EnsureDir(path.Join(config.RecordPath, s)); err != nil {
			return nil, err
		}
	}

	return &Comparison{
		Experiments: make([]*Experiment, 0),
		names:       make([]string, 0),
		analyzers:   make(map[string]AnalyzerFactory),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer AnalyzerFactory, comparator Comparator) {
	if _, ok := c.analyzers[name]; !ok {
		c.names = append(c.names, name)
	}
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run the comparison, returning the stats of every experiment per run
func (c *Comparison) Run(ctx context.Context) ([][]ExperimentStats, error) {
	if err := c.recordConfig(); err != nil {
		return nil, err
	}

	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	allStats := make([][]ExperimentStats, 0, c.cConfig.Runs)
	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Printf("Run %d\n", run+1)
		datasets := make(map[string][]DataSet)
		for _, name := range c.names {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}
		names := make([]string, len(c.Experiments))
		stats := make([]ExperimentStats, len(c.Experiments))

		runOne := func(i int, e *Experiment) {
			rConfig := c.prepareRunConfig(ctx, run, longestNameLen)
			stats[i] = e.Run(rConfig)
			for name, a := range rConfig.Analyzers {
				datasets[name][i] = a.DataSet()
			}
			names[i] = e.Name
			e.Reset()
		}

		if c.cConfig.Parallel {
			var wg sync.WaitGroup
			for i, e := range c.Experiments {
				wg.Add(1)
				go func(i int, e *Experiment) {
					defer wg.Done()
					runOne(i, e)
				}(i, e)
			}
			wg.Wait()
			for i, e := range c.Experiments {
				fmt.Printf("Exp:%*s, Eps:%d, Terminal:%d, Horizon:%d, Err:%d\n",
					longestNameLen, e.Name, stats[i].Episodes, stats[i].Terminated, stats[i].Horizon, stats[i].Errors)
			}
		} else {
			for i, e := range c.Experiments {
				runOne(i, e)
			}
		}

		select {
		case <-ctx.Done():
			return allStats, ctx.Err()
		default:
		}

		for _, name := range c.names {
			c.comparators[name](run, c.cConfig.Episodes, names, datasets[name])
		}
		allStats = append(allStats, stats)
	}
	return allStats, nil
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run, longestExpNameLen int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:             run,
		Episodes:               c.cConfig.Episodes,
		Horizon:                c.cConfig.Horizon,
		Analyzers:              make(map[string]Analyzer),
		Context:                ctx,
		ConsecutiveErrorsAbort: c.cConfig.ConsecutiveErrorsAbort,
		RecordTraces:           c.cConfig.RecordTraces,
		RecordPolicy:           c.cConfig.RecordPolicy,
		ReportSavePath:         c.cConfig.RecordPath,
		Quiet:                  c.cConfig.Parallel,
		LongestExpNameLen:      longestExpNameLen,
	}
	if rCfg.ConsecutiveErrorsAbort == 0 {
		rCfg.ConsecutiveErrorsAbort = 10
	}
	for name, f := range c.analyzers {
		rCfg.Analyzers[name] = f()
	}
	return rCfg
}
