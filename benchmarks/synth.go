package benchmarks

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/gate-synth-rl/gatesynth"
	"github.com/zeu5/gate-synth-rl/policies"
	"github.com/zeu5/gate-synth-rl/store"
	"github.com/zeu5/gate-synth-rl/types"
)

type synthFlags struct {
	alpha        float64
	discount     float64
	epsilon      float64
	bonus        float64
	temperature  float64
	seed         uint64
	parallel     bool
	recordTraces bool
	recordPolicy bool
	storeKind    string
	storeDSN     string
}

// Synth compares the random baseline against the tabular learners on the
// configured synthesis task
func Synth(ctx context.Context, cfg gatesynth.Config, flags synthFlags, logger *slog.Logger) error {
	c, err := types.NewComparison(&types.ComparisonConfig{
		Runs:         runs,
		Episodes:     episodes,
		Horizon:      horizon,
		RecordPath:   saveFile,
		RecordTraces: flags.recordTraces,
		RecordPolicy: flags.recordPolicy,
		Parallel:     flags.parallel,
	})
	if err != nil {
		return err
	}
	plots := path.Join(saveFile, "plots")
	c.AddAnalysis("SuccessRate", gatesynth.NewSuccessRate, types.SeriesPlotter(plots, "Success rate", "success_rate"))
	c.AddAnalysis("EpisodeLength", types.EpisodeLength, types.SeriesPlotter(plots, "Episode length", "episode_length"))
	c.AddAnalysis("Reward", types.EpisodeReward, types.SeriesPlotter(plots, "Reward", "reward"))
	c.AddAnalysis("FinalDistance", gatesynth.FinalDistance, types.SeriesPlotter(plots, "Final distance", "final_distance"))
	c.AddAnalysis("Coverage", types.NewPureCoverage, types.SeriesPlotter(plots, "States covered", "coverage"))
	c.AddAnalysis("StateGraph", gatesynth.RecordStateGraph(path.Join(saveFile, "graphs")), gatesynth.StateGraphComparator())

	if flags.storeKind != "" {
		st, err := store.NewStore(flags.storeKind, flags.storeDSN)
		if err != nil {
			return err
		}
		if err := st.Init(ctx); err != nil {
			return err
		}
		defer st.Close()
		logger.Info("recording episodes", slog.String("store", flags.storeKind))
		c.AddAnalysis("Recorder", gatesynth.RecordEpisodes(ctx, st), gatesynth.RecordedComparator())
	}

	if flags.seed == 0 {
		flags.seed = uint64(time.Now().UnixNano())
	}
	greedy := policies.GreedyConfig{
		Alpha:    flags.alpha,
		Discount: flags.discount,
		Epsilon:  flags.epsilon,
		Bonus:    flags.bonus,
		Seed:     flags.seed,
	}
	experiments := []struct {
		name   string
		policy types.Policy
	}{
		{"Random", types.NewSeededRandomPolicy(flags.seed)},
		{"NegReward", policies.NewSoftMaxNegFreqPolicy(flags.alpha, flags.discount, false, flags.seed)},
		{"Greedy", policies.NewGreedyPolicy(greedy)},
		{"SoftMax", policies.NewSoftMaxPolicy(greedy, flags.temperature)},
	}
	for _, e := range experiments {
		env, err := gatesynth.NewEnvironment(cfg)
		if err != nil {
			return err
		}
		c.AddExperiment(types.NewExperiment(e.name, e.policy, gatesynth.NewRLEnvironment(env)))
	}

	stats, err := c.Run(ctx)
	if err != nil {
		return err
	}
	for run, runStats := range stats {
		for i, s := range runStats {
			logger.Info("experiment finished",
				slog.Int("run", run),
				slog.String("experiment", experiments[i].name),
				slog.Int("episodes", s.Episodes),
				slog.Int("terminated", s.Terminated),
				slog.Int("errors", s.Errors))
		}
	}
	return nil
}

func SynthCommand() *cobra.Command {
	flags := synthFlags{}
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Compare learning policies on the synthesis task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return withProfiling(func() error {
				return Synth(ctx, cfg, flags, newLogger())
			})
		},
	}
	cmd.PersistentFlags().Float64Var(&flags.alpha, "alpha", 0.3, "Learning rate")
	cmd.PersistentFlags().Float64Var(&flags.discount, "discount", 0.95, "Discount factor")
	cmd.PersistentFlags().Float64Var(&flags.epsilon, "epsilon", 0.1, "Exploration rate of the greedy policy")
	cmd.PersistentFlags().Float64Var(&flags.bonus, "bonus", 1, "Weight of the visit count exploration bonus")
	cmd.PersistentFlags().Float64Var(&flags.temperature, "temperature", 1, "Temperature of the softmax policy")
	cmd.PersistentFlags().Uint64Var(&flags.seed, "seed", 0, "Seed of the policies, 0 picks one from the clock")
	cmd.PersistentFlags().BoolVar(&flags.parallel, "parallel", false, "Run the experiments of a run concurrently")
	cmd.PersistentFlags().BoolVar(&flags.recordTraces, "record-traces", false, "Record the traces of every episode")
	cmd.PersistentFlags().BoolVar(&flags.recordPolicy, "record-policy", false, "Record the learned q tables")
	cmd.PersistentFlags().StringVar(&flags.storeKind, "store", "", "Episode store backend: memory, sqlite or redis")
	cmd.PersistentFlags().StringVar(&flags.storeDSN, "store-dsn", "episodes.db", "Sqlite path or redis address of the episode store")
	cmd.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this file in the save folder")
	cmd.PersistentFlags().StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file in the save folder")
	return cmd
}
