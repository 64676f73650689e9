package explore

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/subgoal-rl/grid"
)

func corridor(length int) *Graph {
	g := NewGraph()
	for i := 0; i < length-1; i++ {
		g.AddEdge(grid.Coord{Row: 0, Col: i}, grid.Coord{Row: 0, Col: i + 1})
	}
	return g
}

func at(col int) grid.Coord {
	return grid.Coord{Row: 0, Col: col}
}

func TestGraphEdges(t *testing.T) {
	g := NewGraph()
	assert.True(t, g.AddEdge(at(1), at(0)))
	assert.False(t, g.AddEdge(at(0), at(1)))
	assert.False(t, g.AddEdge(at(2), at(2)))

	assert.True(t, g.HasEdge(at(0), at(1)))
	assert.False(t, g.HasEdge(at(0), at(2)))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, [][2]grid.Coord{{at(0), at(1)}}, g.Edges())

	g.Reset()
	assert.Zero(t, g.Len())
}

func TestSnapshotIsIndependent(t *testing.T) {
	g := corridor(4)
	snap, err := g.Snapshot()
	require.NoError(t, err)

	g.AddEdge(at(3), at(4))
	assert.Equal(t, 4, snap.Len())
	assert.Equal(t, 5, g.Len())

	d, ok := snap.Distance(at(0), at(3))
	require.True(t, ok)
	assert.Equal(t, 3, d)
	assert.Equal(t, []grid.Coord{at(0), at(1), at(2), at(3)}, snap.Path(at(0), at(3)))
	assert.Nil(t, snap.Path(at(0), at(4)))
}

func TestFromLayout(t *testing.T) {
	g := FromLayout(grid.New(3, 3))
	assert.Equal(t, 9, g.Len())
	assert.Len(t, g.Edges(), 12)

	walled := grid.New(3, 3)
	_, err := walled.ToggleWall(grid.Right, grid.Coord{Row: 1, Col: 1})
	require.NoError(t, err)
	g = FromLayout(walled)
	assert.Len(t, g.Edges(), 11)
	assert.False(t, g.HasEdge(grid.Coord{Row: 1, Col: 1}, grid.Coord{Row: 1, Col: 2}))
}

func TestCentralityCountsEndpoints(t *testing.T) {
	snap, err := corridor(3).Snapshot()
	require.NoError(t, err)

	// 9 ordered pairs, the middle node lies on all but the two trivial
	// paths of the ends
	c := snap.Centrality()
	assert.InDelta(t, 7.0/9.0, c[at(1)], 1e-12)
	assert.InDelta(t, 5.0/9.0, c[at(0)], 1e-12)

	b := snap.Betweenness()
	assert.Greater(t, b[at(1)], 0.0)
	assert.Zero(t, b[at(0)])
}

func TestDiscoverSmallGraphKeepsPrevious(t *testing.T) {
	snap, err := corridor(14).Snapshot()
	require.NoError(t, err)
	prev := Subgoals{at(3): {at(1), at(2)}}

	got := Discover(snap, DefaultParams(), at(13), prev)
	assert.Equal(t, prev, got)
	assert.Nil(t, Discover(snap, DefaultParams(), at(13), nil))
}

func TestDiscoverCorridor(t *testing.T) {
	snap, err := corridor(15).Snapshot()
	require.NoError(t, err)
	goal := at(14)

	subgoals := Discover(snap, DefaultParams(), goal, nil)
	require.Contains(t, subgoals, goal)
	require.Contains(t, subgoals, at(7))
	assert.Len(t, subgoals, 4)

	expected := make([]grid.Coord, 0)
	for col := 7; col < 14; col++ {
		expected = append(expected, at(col))
	}
	assert.Equal(t, expected, subgoals[goal])
	assert.Len(t, subgoals[at(7)], 14)

	for sg, members := range subgoals {
		assert.NotContains(t, members, sg)
	}
}

func TestDiscoverGoalOutsideGraph(t *testing.T) {
	snap, err := corridor(15).Snapshot()
	require.NoError(t, err)
	goal := grid.Coord{Row: 5, Col: 5}

	subgoals := Discover(snap, DefaultParams(), goal, nil)
	require.Contains(t, subgoals, goal)
	assert.Empty(t, subgoals[goal])
}

func TestPeaksSuppressNeighbourhood(t *testing.T) {
	snap, err := corridor(15).Snapshot()
	require.NoError(t, err)
	params := DefaultParams()
	params.SuppressionRadius = 20

	peaks := snap.peaks(snap.weightedMean(snap.centrality(), params.SmoothingRadius), params, at(14))
	assert.Equal(t, []grid.Coord{at(14), at(7)}, peaks)
}

func TestWorkerPublishesLatest(t *testing.T) {
	g := corridor(15)
	active := &atomic.Bool{}
	active.Store(true)
	w := NewWorker(g, DefaultParams(), at(14), active)
	w.IdleInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	var got Subgoals
	require.Eventually(t, func() bool {
		s, ok := w.Latest()
		if ok {
			got = s
		}
		return ok
	}, 5*time.Second, time.Millisecond)
	assert.Contains(t, got, at(7))

	active.Store(false)
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.GreaterOrEqual(t, w.Passes(), int64(1))
}

func TestSnapshotFailureIsReported(t *testing.T) {
	g := corridor(4)
	g.graph = nil
	_, err := g.Snapshot()
	assert.ErrorIs(t, err, ErrSnapshot)
}

func TestWorkerRetriesFailedPasses(t *testing.T) {
	g := corridor(15)
	active := &atomic.Bool{}
	active.Store(true)
	w := NewWorker(g, DefaultParams(), at(14), active)
	w.IdleInterval = time.Millisecond

	var calls atomic.Int64
	w.discover = func(s *Snapshot, params Params, goal grid.Coord, prev Subgoals) Subgoals {
		if calls.Add(1) <= 3 {
			panic("broken pass")
		}
		return Discover(s, params, goal, prev)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	var got Subgoals
	require.Eventually(t, func() bool {
		s, ok := w.Latest()
		if ok {
			got = s
		}
		return ok
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, int64(3), w.Failures())
	assert.Contains(t, got, at(7))

	active.Store(false)
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, int64(1), w.Passes())
}

func TestWorkerWaitsAfterFailure(t *testing.T) {
	g := corridor(15)
	active := &atomic.Bool{}
	active.Store(true)
	w := NewWorker(g, DefaultParams(), at(14), active)
	w.IdleInterval = 20 * time.Millisecond

	var calls atomic.Int64
	w.discover = func(*Snapshot, Params, grid.Coord, Subgoals) Subgoals {
		calls.Add(1)
		panic("broken pass")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	active.Store(false)
	<-w.Done()

	// roughly one attempt per interval, a spinning loop makes thousands
	assert.GreaterOrEqual(t, calls.Load(), int64(1))
	assert.LessOrEqual(t, calls.Load(), int64(20))
	assert.Equal(t, calls.Load(), w.Failures())
	_, ok := w.Latest()
	assert.False(t, ok)
}

func TestSubgoalsHelpers(t *testing.T) {
	s := Subgoals{at(4): {at(1), at(2)}, at(0): {}}
	c := s.Clone()
	assert.True(t, s.Equal(c))
	c[at(4)][0] = at(3)
	assert.Equal(t, at(1), s[at(4)][0])
	assert.False(t, s.Equal(c))

	assert.Equal(t, []grid.Coord{at(0), at(4)}, s.Keys())
	assert.True(t, s.Offers(at(4), at(2)))
	assert.False(t, s.Offers(at(0), at(2)))
}
