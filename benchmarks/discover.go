package benchmarks

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/rl"
)

// DiscoverOffline runs subgoal discovery on the connectivity graph of the
// whole map, as if the agent had explored every passage
func DiscoverOffline(layout *grid.Layout, params explore.Params) (explore.Subgoals, *explore.Snapshot, error) {
	g, err := grid.FromLayout(layout)
	if err != nil {
		return nil, nil, err
	}
	goal, ok := g.Goal()
	if !ok {
		return nil, nil, fmt.Errorf("discover: %w", rl.ErrMissingGoal)
	}
	snapshot, err := explore.FromLayout(g).Snapshot()
	if err != nil {
		return nil, nil, err
	}
	return explore.Discover(snapshot, params, goal, nil), snapshot, nil
}

func DiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find the subgoals of the fully explored map",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			layout, err := loadLayout()
			if err != nil {
				return err
			}
			subgoals, snapshot, err := DiscoverOffline(layout, params.Discovery)
			if err != nil {
				return err
			}
			centrality := snapshot.Centrality()
			fmt.Printf("Graph with %d nodes, %d subgoals\n", snapshot.Len(), len(subgoals))
			for _, sg := range subgoals.Keys() {
				fmt.Printf("%s centrality %.4f, initiation set of %d cells\n", sg, centrality[sg], len(subgoals[sg]))
			}
			return nil
		},
	}
	addGridFlags(cmd)
	return cmd
}
