package rl

import (
	"context"
	"errors"
	"math"

	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
	"github.com/zeu5/subgoal-rl/util"
)

// PrioritizedSweeping learns a transition model from the steps taken and
// propagates value changes backwards through it in order of their error.
// It also grows the exploration graph and, once enough episodes have
// completed, keeps macro options in sync with the discovered subgoals.
type PrioritizedSweeping struct {
	model  *Model
	queue  *util.PQueue[*policies.Option]
	worker *explore.Worker

	// subgoals the store's macro options currently follow
	current explore.Subgoals

	Reconciliations int
	LastReconcile   ReconcileStats
}

var _ Learner = &PrioritizedSweeping{}

func NewPrioritizedSweeping() *PrioritizedSweeping {
	return &PrioritizedSweeping{
		model: NewModel(),
		queue: util.NewPQueue[*policies.Option](),
	}
}

func (p *PrioritizedSweeping) Name() string {
	return "PS"
}

func (p *PrioritizedSweeping) Reset() {
	p.model.Reset()
	p.queue.Clear()
	p.current = nil
	p.Reconciliations = 0
	p.LastReconcile = ReconcileStats{}
}

func (p *PrioritizedSweeping) Model() *Model {
	return p.model
}

func (p *PrioritizedSweeping) Queue() *util.PQueue[*policies.Option] {
	return p.queue
}

// StartEpisode launches discovery once DiscoveryStartEpisode episodes are done
func (p *PrioritizedSweeping) StartEpisode(ctx context.Context, t *Trainer, episode int) {
	if episode == 1 {
		p.queue.Clear()
	}
	if p.worker != nil || episode <= t.Params.DiscoveryStartEpisode {
		return
	}
	goal, _ := t.grid.Goal()
	p.worker = explore.NewWorker(t.graph, t.Params.Discovery, goal, &t.active)
	p.worker.Start(ctx)
}

func (p *PrioritizedSweeping) Update(t *Trainer, from *grid.Cell, o *policies.Option, to *grid.Cell) {
	p.model.Record(o, to.Coord, to.Reward)
	p.push(t, o, to.Reward, to)

	if from.Coord.Manhattan(to.Coord) == 1 {
		t.graph.AddEdge(from.Coord, to.Coord)
	}
	p.sweep(t)
}

func (p *PrioritizedSweeping) push(t *Trainer, o *policies.Option, reward float64, to *grid.Cell) {
	target := reward + t.Params.Discount*t.store.BestValue(to.Coord, policies.Base)
	priority := math.Abs(target - o.Value)
	if priority > t.Params.PriorityThreshold {
		p.queue.Push(o, priority)
	}
}

// sweep pops up to NumOfUpdates options, updates each and re-prioritizes
// the options recorded as leading into its destination
func (p *PrioritizedSweeping) sweep(t *Trainer) {
	for n := 0; n < t.Params.NumOfUpdates; n++ {
		o, err := p.queue.Pop()
		if errors.Is(err, util.ErrEmptyQueue) {
			break
		}
		dest := t.grid.Step(o)
		t.update(o, dest)
		for _, tr := range p.model.Predecessors(dest.Coord) {
			p.push(t, tr.Option, tr.Reward, dest)
		}
	}
}

// EndEpisode reconciles macro options with the latest discovery result
func (p *PrioritizedSweeping) EndEpisode(t *Trainer, _ int) {
	if p.worker == nil {
		return
	}
	next, ok := p.worker.Latest()
	if !ok {
		return
	}
	p.LastReconcile = Reconcile(t.store, p.current, next, p.forget)
	p.Reconciliations += 1
	p.current = next
	t.SetSubgoals(next)
}

func (p *PrioritizedSweeping) forget(o *policies.Option) {
	p.model.Forget(o)
	p.queue.Remove(o)
}

// Finish waits for the discovery worker, which exits once training stops
func (p *PrioritizedSweeping) Finish(_ *Trainer) {
	if p.worker == nil {
		return
	}
	<-p.worker.Done()
	p.worker = nil
}
