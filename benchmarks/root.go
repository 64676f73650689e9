package benchmarks

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	episodes   int
	saveFile   string
	runs       int
	configFile string
	seed       uint64
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "subgoal-rl",
		SilenceUsage: true,
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 0, "Number of episodes to run, trains until convergence when not set")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Yaml file with the learning parameters")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed of the option choice, 0 picks one from the clock")
	// adding the subcommands here
	rootCommand.AddCommand(QLearningCommand())
	rootCommand.AddCommand(SweepingCommand())
	rootCommand.AddCommand(CompareCommand())
	rootCommand.AddCommand(DiscoverCommand())
	rootCommand.AddCommand(LayoutCommand())
	return rootCommand
}

// interruptible returns a context cancelled on ctrl-c or when done is called
func interruptible() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	doneCh := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}
