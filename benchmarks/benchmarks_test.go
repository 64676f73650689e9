package benchmarks

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/rl"
)

func TestReadParams(t *testing.T) {
	p := path.Join(t.TempDir(), "params.yaml")
	config := `alpha: 0.5
decay_mode: step
train_until_convergence: false
episodes: 42
discovery:
  min_nodes: 30
`
	require.NoError(t, os.WriteFile(p, []byte(config), 0644))

	params, err := ReadParams(p)
	require.NoError(t, err)
	assert.Equal(t, 0.5, params.Alpha)
	assert.Equal(t, rl.DecayPerStep, params.DecayMode)
	assert.False(t, params.TrainUntilConvergence)
	assert.Equal(t, 42, params.Episodes)
	assert.Equal(t, 30, params.Discovery.MinNodes)
	// untouched keys keep their defaults
	assert.Equal(t, 0.9, params.Discount)
	assert.Equal(t, 5, params.Discovery.SuppressionRadius)
	assert.NoError(t, params.Validate())

	defaults, err := ReadParams("")
	require.NoError(t, err)
	assert.Equal(t, rl.DefaultParams(), defaults)

	_, err = ReadParams(path.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLayoutFiles(t *testing.T) {
	g := grid.New(3, 4)
	_, err := g.ToggleWall(grid.Right, grid.Coord{Row: 1, Col: 1})
	require.NoError(t, err)

	p := path.Join(t.TempDir(), "maze.gwmap")
	require.NoError(t, WriteLayoutFile(p, g.Layout()))
	l, err := ReadLayoutFile(p)
	require.NoError(t, err)
	assert.Equal(t, g.Layout(), l)

	_, err = ReadLayoutFile(path.Join(t.TempDir(), "missing.gwmap"))
	assert.Error(t, err)
}

func TestDiscoverOffline(t *testing.T) {
	layout := grid.New(5, 5).Layout()
	subgoals, snapshot, err := DiscoverOffline(layout, rl.DefaultParams().Discovery)
	require.NoError(t, err)
	assert.Equal(t, 25, snapshot.Len())
	assert.Contains(t, subgoals, grid.Coord{Row: 4, Col: 4})

	g := grid.New(5, 5)
	g.ClearGoal()
	_, _, err = DiscoverOffline(g.Layout(), rl.DefaultParams().Discovery)
	assert.ErrorIs(t, err, rl.ErrMissingGoal)
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	params := rl.DefaultParams()
	params.TrainUntilConvergence = false
	params.Episodes = 15
	params.Seed = 9

	results, err := Compare(context.Background(), grid.New(5, 5).Layout(), params, 2, dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, run := range results {
		require.Len(t, run, 2)
		assert.Equal(t, "QL", run[0].Learner)
		assert.Equal(t, "PS", run[1].Learner)
		assert.Equal(t, 15, run[1].Episodes)
	}
	_, err = os.Stat(path.Join(dir, "1_episode_lengths.png"))
	assert.NoError(t, err)
	_, err = os.Stat(path.Join(dir, "visits", "0_PS_visits.png"))
	assert.NoError(t, err)
}
