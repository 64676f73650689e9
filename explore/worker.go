package explore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeu5/subgoal-rl/grid"
)

const DefaultIdleInterval = 5 * time.Millisecond

// Worker repeatedly runs discovery on snapshots of the graph while training
// is active. Results go to a mailbox that only ever holds the latest one;
// the worker never touches option tables.
type Worker struct {
	graph  *Graph
	params Params
	goal   grid.Coord
	active *atomic.Bool

	// IdleInterval is how long to wait when the graph did not change or a
	// pass failed
	IdleInterval time.Duration

	discover func(*Snapshot, Params, grid.Coord, Subgoals) Subgoals

	mailbox chan Subgoals
	done    chan struct{}
	once    sync.Once

	passes   atomic.Int64
	failures atomic.Int64
}

func NewWorker(g *Graph, params Params, goal grid.Coord, active *atomic.Bool) *Worker {
	return &Worker{
		graph:        g,
		params:       params,
		goal:         goal,
		active:       active,
		IdleInterval: DefaultIdleInterval,
		discover:     Discover,
		mailbox:      make(chan Subgoals, 1),
		done:         make(chan struct{}),
	}
}

// Start launches the discovery loop, only the first call has an effect.
// The loop exits when the active flag clears or ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		go w.run(ctx)
	})
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	var prev Subgoals
	lastVersion := uint64(0)
	for w.active.Load() && ctx.Err() == nil {
		version := w.graph.Version()
		if version == lastVersion {
			if !w.idle(ctx) {
				return
			}
			continue
		}
		next, err := w.pass(prev)
		if err != nil {
			// retried after a pause, the graph version is left unseen
			w.failures.Add(1)
			if !w.idle(ctx) {
				return
			}
			continue
		}
		lastVersion = version
		w.passes.Add(1)
		if next == nil {
			continue
		}
		prev = next
		w.publish(next)
	}
}

// idle waits one interval, false when ctx ended first
func (w *Worker) idle(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(w.IdleInterval):
		return true
	}
}

func (w *Worker) pass(prev Subgoals) (result Subgoals, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("discovery pass failed: %v", r)
		}
	}()
	snap, err := w.graph.Snapshot()
	if err != nil {
		return nil, err
	}
	return w.discover(snap, w.params, w.goal, prev), nil
}

func (w *Worker) publish(s Subgoals) {
	select {
	case <-w.mailbox:
	default:
	}
	select {
	case w.mailbox <- s:
	default:
	}
}

// Latest takes the most recent result if one arrived since the last call
func (w *Worker) Latest() (Subgoals, bool) {
	select {
	case s := <-w.mailbox:
		return s, true
	default:
		return nil, false
	}
}

// Done is closed once the loop has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) Passes() int64 {
	return w.passes.Load()
}

func (w *Worker) Failures() int64 {
	return w.failures.Load()
}
