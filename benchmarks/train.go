package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeu5/subgoal-rl/actionlog"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/rl"
	"github.com/zeu5/subgoal-rl/server"
)

var (
	serveAddr   string
	redisAddr   string
	actionsFile string
)

// Train runs a single learner on the layout and reports the outcome
func Train(ctx context.Context, layout *grid.Layout, learner rl.Learner, params rl.Params) (*rl.Result, error) {
	g, err := grid.FromLayout(layout)
	if err != nil {
		return nil, err
	}
	trainer := rl.NewTrainer(g, learner, params)
	trainer.Label = learner.Name()

	switch {
	case redisAddr != "":
		log := actionlog.NewRedisLog(redisAddr, actionlog.DefaultRedisKey)
		defer log.Close()
		trainer.SetActionLog(log)
	case actionsFile != "":
		trainer.SetActionLog(actionlog.NewFileLog(actionsFile))
	}
	if serveAddr != "" {
		server.NewServer(ctx, serveAddr, trainer).Start()
		fmt.Printf("Serving the trainer on http://%s\n", serveAddr)
	}

	p := newProgress(learner.Name())
	trainer.OnEpisode = p.Update
	p.Start()
	res, err := trainer.Run(ctx)
	p.Stop()
	if err != nil {
		return res, err
	}

	view := trainer.View()
	fmt.Println(res.Summary())
	best := view.BestPath(g.Rows * g.Cols)
	cells := make([]string, len(best))
	for i, c := range best {
		cells[i] = c.String()
	}
	fmt.Printf("Best path: %s\n", strings.Join(cells, " "))
	for _, sg := range res.Subgoals.Keys() {
		fmt.Printf("Subgoal %s offered in %d cells\n", sg, len(res.Subgoals[sg]))
	}

	if saveFile != "" {
		if err := saveView(saveFile, view); err != nil {
			fmt.Printf("could not save the run: %s\n", err)
		}
	}
	return res, nil
}

func saveView(savePath string, view *rl.View) error {
	os.MkdirAll(savePath, 0777)
	bs, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(savePath, view.Learner+"_"+view.RunID+".json"), bs, 0644)
}

func trainCommand(use, short string, newLearner func() rl.Learner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
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
			_, err = Train(ctx, layout, newLearner(), params)
			return err
		},
	}
	addGridFlags(cmd)
	cmd.Flags().StringVar(&serveAddr, "serve", "", "Serve the trainer state over http on this address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Push the action log to the redis server at this address")
	cmd.Flags().StringVar(&actionsFile, "actions", "", "Write the action log to this file")
	return cmd
}

func QLearningCommand() *cobra.Command {
	return trainCommand("ql", "Train with Q-learning", func() rl.Learner {
		return rl.NewQLearning()
	})
}

func SweepingCommand() *cobra.Command {
	return trainCommand("ps", "Train with prioritized sweeping and subgoal discovery", func() rl.Learner {
		return rl.NewPrioritizedSweeping()
	})
}
