package benchmarks

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/gate-synth-rl/gatesynth"
)

var (
	episodes   int
	horizon    int
	saveFile   string
	runs       int
	configFile string
	logLevel   string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "gate-synth-rl",
		Short:         "Reinforcement learning environment for quantum gate synthesis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 1000, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 100, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML environment configuration, defaults to the one qubit X task")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	// adding the subcommands here
	rootCommand.AddCommand(SynthCommand())
	rootCommand.AddCommand(ActionsCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(EpisodesCommand())
	return rootCommand
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config, or the defaults when it is not set
func loadConfig() (gatesynth.Config, error) {
	fc := gatesynth.DefaultFileConfig()
	if configFile != "" {
		var err error
		if fc, err = gatesynth.LoadConfig(configFile); err != nil {
			return gatesynth.Config{}, err
		}
	}
	return fc.Build()
}

func newEnvironment() (*gatesynth.Environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return gatesynth.NewEnvironment(cfg)
}
