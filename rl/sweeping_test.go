package rl

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
)

func c(row, col int) grid.Coord {
	return grid.Coord{Row: row, Col: col}
}

func TestReconcileIsIdempotent(t *testing.T) {
	g := grid.New(5, 5)
	store := policies.NewStore(g, 1)
	sg := c(2, 2)
	store.Available(sg, policies.Base)[0].Value = 4

	next := explore.Subgoals{sg: {c(0, 0), c(1, 1)}}
	stats := Reconcile(store, nil, next, nil)
	assert.Equal(t, ReconcileStats{Added: 2}, stats)
	assert.True(t, store.HasOption(c(1, 1), sg))

	macro := store.Available(c(1, 1), policies.Base)
	assert.Equal(t, 4.0, macro[len(macro)-1].Value)

	assert.False(t, Reconcile(store, next, next, nil).Changed())
	assert.False(t, Reconcile(store, nil, next, nil).Changed())
}

func TestReconcileDiff(t *testing.T) {
	g := grid.New(5, 5)
	store := policies.NewStore(g, 1)
	a, b := c(2, 2), c(4, 0)

	prev := explore.Subgoals{a: {c(0, 0), c(1, 1)}}
	Reconcile(store, nil, prev, nil)

	forgotten := make([]*policies.Option, 0)
	next := explore.Subgoals{a: {c(1, 1), c(3, 3)}, b: {c(0, 0)}}
	stats := Reconcile(store, prev, next, func(o *policies.Option) {
		forgotten = append(forgotten, o)
	})
	assert.Equal(t, ReconcileStats{Added: 2, Removed: 1}, stats)
	require.Len(t, forgotten, 1)
	assert.Equal(t, c(0, 0), forgotten[0].Origin)
	assert.Equal(t, a, forgotten[0].Subgoal)

	assert.False(t, store.HasOption(c(0, 0), a))
	assert.True(t, store.HasOption(c(0, 0), b))
	assert.True(t, store.HasOption(c(3, 3), a))

	stats = Reconcile(store, next, nil, nil)
	assert.Equal(t, ReconcileStats{Removed: 3}, stats)
	assert.Empty(t, store.Subgoals())
}

func TestModel(t *testing.T) {
	m := NewModel()
	o1 := policies.Primitive(c(0, 0), grid.Right)
	o2 := policies.Primitive(c(1, 1), grid.Up)

	m.Record(o1, c(0, 1), 0)
	m.Record(o2, c(0, 1), 0)
	m.Record(o1, c(0, 1), 5)
	require.Len(t, m.Predecessors(c(0, 1)), 2)
	assert.Equal(t, 5.0, m.Predecessors(c(0, 1))[0].Reward)

	m.Forget(o1)
	assert.Equal(t, 1, m.Len())
	m.Forget(o2)
	assert.Empty(t, m.Predecessors(c(0, 1)))
}

func TestSweepPropagatesGoalValue(t *testing.T) {
	g := grid.New(1, 4)
	params := budgetParams(1)
	trainer := NewTrainer(g, NewPrioritizedSweeping(), params)
	ps := trainer.learner.(*PrioritizedSweeping)

	// walk right along the corridor by hand
	for col := 0; col < 3; col++ {
		from := g.Cell(c(0, col))
		var right *policies.Option
		for _, o := range trainer.Store().Available(from.Coord, policies.Base) {
			if o.Direction == grid.Right {
				right = o
			}
		}
		require.NotNil(t, right)
		ps.Update(trainer, from, right, g.Step(right))
	}

	// only the step into the goal had an error, sweeping refines it alone
	last := trainer.Store().Best(c(0, 2), policies.Base)
	assert.Equal(t, grid.Right, last.Direction)
	assert.InDelta(t, 95*(1-math.Pow(0.8, 15)), last.Value, 1e-9)
	assert.Zero(t, trainer.Store().Best(c(0, 1), policies.Base).Value)

	assert.Equal(t, 1, ps.Queue().Len())
	p, ok := ps.Queue().Priority(last)
	require.True(t, ok)
	assert.InDelta(t, 95-last.Value, p, 1e-9)
	assert.Equal(t, 3, ps.Model().Len())
	assert.Len(t, trainer.Graph().Edges(), 3)
}

func TestPrioritizedSweepingRun(t *testing.T) {
	g := grid.New(6, 6)
	params := budgetParams(300)
	trainer := NewTrainer(g, NewPrioritizedSweeping(), params)

	res, err := trainer.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 300, res.Episodes)
	assert.Contains(t, res.Summary(), "PS trained for 300 episodes")

	ps := trainer.learner.(*PrioritizedSweeping)
	assert.Nil(t, ps.worker)
	assert.GreaterOrEqual(t, trainer.Graph().Len(), 15)

	// macro options follow the subgoals the trainer reports
	subgoals := trainer.Subgoals()
	for sg, members := range subgoals {
		for _, m := range members {
			assert.True(t, trainer.Store().HasOption(m, sg), "%s -> %s", m, sg)
		}
	}
	for _, sg := range trainer.Store().Subgoals() {
		assert.Contains(t, subgoals, sg)
	}

	path := trainer.View().BestPath(40)
	require.NotEmpty(t, path)
	assert.Equal(t, c(5, 5), path[len(path)-1])
}
