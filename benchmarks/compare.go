package benchmarks

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/subgoal-rl/analysis"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/rl"
)

// Compare trains Q-learning and prioritized sweeping on the same layout
// for a number of runs and plots episode lengths and visits
func Compare(ctx context.Context, layout *grid.Layout, params rl.Params, runs int, savePath string) ([][]*rl.Result, error) {
	rows, cols := layout.Dims()

	c := rl.NewComparison(runs)
	c.AddAnalysis("Episodes", analysis.NewEpisodeAnalyzer(), analysis.EpisodeLengthPlotter(savePath))
	c.AddAnalysis("Visits", analysis.NewVisitAnalyzer(rows, cols), analysis.VisitPlotComparator(path.Join(savePath, "visits")))

	c.AddExperiment(rl.NewExperiment("QL", layout, params, func() rl.Learner {
		return rl.NewQLearning()
	}))
	c.AddExperiment(rl.NewExperiment("PS", layout, params, func() rl.Learner {
		return rl.NewPrioritizedSweeping()
	}))
	return c.Run(ctx)
}

func CompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare Q-learning against prioritized sweeping",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			layout, err := loadLayout()
			if err != nil {
				return err
			}
			ctx, done := interruptible()
			defer done()
			results, err := Compare(ctx, layout, params, runs, saveFile)
			if err != nil {
				return err
			}
			for i, name := range []string{"QL", "PS"} {
				total := 0
				for _, run := range results {
					total += run[i].Episodes
				}
				fmt.Printf("%s: %.1f episodes on average\n", name, float64(total)/float64(len(results)))
			}
			return nil
		},
	}
	addGridFlags(cmd)
	return cmd
}
