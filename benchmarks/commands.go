package benchmarks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zeu5/gate-synth-rl/explorer"
	"github.com/zeu5/gate-synth-rl/server"
	"github.com/zeu5/gate-synth-rl/store"
	"github.com/zeu5/gate-synth-rl/types"
)

func ActionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "Print the action catalog of the configured environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Qubits: %d, Actions: %d\n", env.Qubits(), env.Catalog().Len())
			for _, i := range env.LegalActions() {
				s, _ := env.ActionToString(i)
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}

// Example invocation - ./gate-synth-rl play -c env.yaml --traces results/traces/Greedy_0.jsonl
func PlayCommand() *cobra.Command {
	var tracesFile, graphFile string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the environment interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			p := explorer.NewPlayer(env, cmd.InOrStdin(), cmd.OutOrStdout())
			if tracesFile != "" {
				if p.Traces, err = explorer.ReadTraces(tracesFile); err != nil {
					return err
				}
			}
			if graphFile != "" {
				if p.Graph, err = types.ReadVisitGraph(graphFile); err != nil {
					return err
				}
			}
			return p.Interact()
		},
	}
	cmd.PersistentFlags().StringVar(&tracesFile, "traces", "", "Recorded traces (.jsonl) to replay")
	cmd.PersistentFlags().StringVar(&graphFile, "graph", "", "Visit graph (.json) of a synth run to annotate replays with")
	return cmd
}

func ServeCommand() *cobra.Command {
	var addr string
	var storeKind string
	var storeDSN string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve environment sessions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			// fail early on a bad configuration
			if _, err := loadConfig(); err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			var st store.Store
			if storeKind != "" {
				var err error
				if st, err = store.NewStore(storeKind, storeDSN); err != nil {
					return err
				}
				if err := st.Init(ctx); err != nil {
					return err
				}
				defer st.Close()
				logger.Info("recording episodes", slog.String("store", storeKind))
			}
			return server.NewSessionServer(ctx, addr, newEnvironment, st, logger).Start()
		},
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "localhost:8080", "Address to listen on")
	cmd.PersistentFlags().StringVar(&storeKind, "store", "", "Episode store backend: memory, sqlite or redis")
	cmd.PersistentFlags().StringVar(&storeDSN, "store-dsn", "episodes.db", "Sqlite path or redis address of the episode store")
	return cmd
}

func EpisodesCommand() *cobra.Command {
	var storeKind string
	var storeDSN string
	cmd := &cobra.Command{
		Use:   "episodes [experiment]",
		Short: "List stored episodes, or the experiments when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, err := store.NewStore(storeKind, storeDSN)
			if err != nil {
				return err
			}
			if err := st.Init(ctx); err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names, err := st.Experiments(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			records, err := st.Episodes(ctx, args[0])
			if err != nil {
				return err
			}
			won := 0
			for _, r := range records {
				if r.Won {
					won++
				}
				fmt.Fprintf(out, "run %d episode %d: won=%t steps=%d reward=%g distance=%.6f actions=%v\n",
					r.Run, r.Episode, r.Won, r.Steps, r.Reward, r.FinalDistance, r.Actions)
			}
			fmt.Fprintf(out, "%d/%d episodes won\n", won, len(records))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&storeKind, "store", "sqlite", "Episode store backend: sqlite or redis")
	cmd.PersistentFlags().StringVar(&storeDSN, "store-dsn", "episodes.db", "Sqlite path or redis address of the episode store")
	return cmd
}
