package rl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
	"gonum.org/v1/gonum/stat"
)

type memoryLog struct {
	tokens  []string
	clears  int
	appends int
}

func (m *memoryLog) Append(tokens ...string) error {
	m.tokens = append(m.tokens, tokens...)
	m.appends += 1
	return nil
}

func (m *memoryLog) Clear() error {
	m.tokens = nil
	m.clears += 1
	return nil
}

func budgetParams(episodes int) Params {
	p := DefaultParams()
	p.TrainUntilConvergence = false
	p.Episodes = episodes
	p.Seed = 42
	return p
}

func TestQLearningFindsShortestPath(t *testing.T) {
	g := grid.New(5, 5)
	trainer := NewTrainer(g, NewQLearning(), budgetParams(1000))

	res, err := trainer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Episodes)
	assert.False(t, res.Converged)

	goal := grid.Coord{Row: 4, Col: 4}
	cur := grid.Coord{Row: 0, Col: 0}
	steps := 0
	for cur != goal && steps < 25 {
		best := trainer.Store().Best(cur, policies.Base)
		require.NotNil(t, best)
		next := g.Wrap(best.Destination())
		require.Less(t, next.Manhattan(goal), cur.Manhattan(goal), "step from %s", cur)
		cur = next
		steps += 1
	}
	assert.Equal(t, goal, cur)
	assert.Equal(t, 8, steps)

	path := trainer.View().BestPath(25)
	assert.Len(t, path, 9)
	assert.Equal(t, goal, path[len(path)-1])
}

func TestTrainerStopsAtConvergence(t *testing.T) {
	g := grid.New(4, 4)
	params := DefaultParams()
	params.Seed = 3
	params.EpsilonDecay = 0.9
	params.ConvergenceInterval = 10
	params.MaxEpisodes = 5000
	trainer := NewTrainer(g, NewQLearning(), params)

	res, err := trainer.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Len(t, res.Lengths, res.Episodes)

	converged := func(end int) bool {
		if end < params.ConvergenceInterval {
			return false
		}
		window := make([]float64, 0, params.ConvergenceInterval)
		for _, l := range res.Lengths[end-params.ConvergenceInterval : end] {
			window = append(window, float64(l))
		}
		return stat.Variance(window, nil) <= params.VarianceThreshold
	}
	for end := 1; end < res.Episodes; end++ {
		assert.False(t, converged(end), "window ending at episode %d", end)
	}
	assert.True(t, converged(res.Episodes))
	assert.Contains(t, res.Summary(), "QL converged in")
}

func TestTrainerRequiresStartAndGoal(t *testing.T) {
	g := grid.New(3, 3)
	g.ClearStart()
	_, err := NewTrainer(g, NewQLearning(), budgetParams(5)).Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingStart)

	g = grid.New(3, 3)
	g.ClearGoal()
	_, err = NewTrainer(g, NewQLearning(), budgetParams(5)).Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingGoal)
}

func TestTrainerRejectsInvalidParams(t *testing.T) {
	params := budgetParams(5)
	params.Alpha = 0
	_, err := NewTrainer(grid.New(3, 3), NewQLearning(), params).Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidParams)

	params = DefaultParams()
	params.ConvergenceInterval = 1
	assert.ErrorIs(t, params.Validate(), ErrInvalidParams)
	assert.NoError(t, DefaultParams().Validate())

	// budget runs still need a usable window
	for _, interval := range []int{0, -1} {
		params = budgetParams(5)
		params.ConvergenceInterval = interval
		assert.ErrorIs(t, params.Validate(), ErrInvalidParams, "interval %d", interval)

		var trainer *Trainer
		require.NotPanics(t, func() {
			trainer = NewTrainer(grid.New(3, 3), NewQLearning(), params)
		})
		_, err := trainer.Run(context.Background())
		assert.ErrorIs(t, err, ErrInvalidParams, "interval %d", interval)
	}
}

func TestTrainerStopAndReentry(t *testing.T) {
	trainer := NewTrainer(grid.New(4, 4), NewQLearning(), budgetParams(100))
	var reentry error
	trainer.OnEpisode = func(info EpisodeInfo) {
		if info.Episode == 1 {
			_, reentry = trainer.Run(context.Background())
		}
		if info.Episode == 3 {
			trainer.Stop()
		}
	}

	res, err := trainer.Run(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, reentry, ErrTrainingActive)
	assert.True(t, res.Stopped)
	assert.Equal(t, 3, res.Episodes)
	assert.False(t, trainer.Active())
}

func TestTrainerHorizon(t *testing.T) {
	params := budgetParams(5)
	params.Horizon = 2
	trainer := NewTrainer(grid.New(6, 6), NewQLearning(), params)

	res, err := trainer.Run(context.Background())
	require.NoError(t, err)
	for _, l := range res.Lengths {
		assert.LessOrEqual(t, l, 2)
	}
}

func TestTrainerReportsCellsWithoutOptions(t *testing.T) {
	g := grid.New(3, 3)
	require.NoError(t, g.SetWalls(grid.Coord{Row: 0, Col: 0}, "F"))
	_, err := NewTrainer(g, NewQLearning(), budgetParams(5)).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoOptions)
}

func TestActionLog(t *testing.T) {
	log := &memoryLog{}
	trainer := NewTrainer(grid.New(4, 4), NewQLearning(), budgetParams(20))
	trainer.SetActionLog(log)

	res, err := trainer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, log.clears)
	assert.Equal(t, 20, log.appends)
	assert.Len(t, log.tokens, res.Actions)
	for _, tok := range log.tokens {
		assert.Contains(t, []string{"1", "2", "3", "4"}, tok)
	}

	// a run that keeps learning appends to the same log
	trainer.Params.ResetLearning = false
	_, err = trainer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, log.clears)
	assert.Equal(t, 40, log.appends)
}

func TestViewIsPublished(t *testing.T) {
	g := grid.New(4, 4)
	trainer := NewTrainer(g, NewQLearning(), budgetParams(10))
	initial := trainer.View()
	require.NotNil(t, initial)

	res, err := trainer.Run(context.Background())
	require.NoError(t, err)
	v := trainer.View()
	assert.NotSame(t, initial, v)
	assert.Equal(t, res.RunID, v.RunID)
	assert.Equal(t, 10, v.Episode)
	assert.Len(t, v.QValues, 16)
	assert.Equal(t, 10, v.Visits[grid.Coord{Row: 0, Col: 0}])
	assert.Equal(t, "C", v.PartialMap[0][0])
	assert.False(t, v.Active)
}

func TestConvergenceWindow(t *testing.T) {
	c := NewConvergence(3, 0.3)
	assert.False(t, c.Add(5))
	assert.False(t, c.Add(5))
	assert.True(t, c.Add(5))

	c = NewConvergence(3, 0.3)
	lengths := []int{10, 20, 5, 5, 5, 9}
	expected := []bool{false, false, false, false, true, false}
	for i, l := range lengths {
		assert.Equal(t, expected[i], c.Add(l), "episode %d", i+1)
	}
	assert.Equal(t, 5, c.Min())

	for _, interval := range []int{0, -3} {
		var empty *Convergence
		require.NotPanics(t, func() {
			empty = NewConvergence(interval, 0.3)
			assert.False(t, empty.Add(4))
			assert.False(t, empty.Add(4))
		})
		assert.False(t, empty.Converged())
		assert.Zero(t, empty.Min())
	}
}
