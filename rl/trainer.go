package rl

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
)

// Learner plugs an update rule into the trainer's episode loop. All calls
// happen on the training goroutine.
type Learner interface {
	Name() string
	// Reset discards what the learner kept from earlier runs
	Reset()
	StartEpisode(ctx context.Context, t *Trainer, episode int)
	// Update is called after every real step, before the agent moves
	Update(t *Trainer, from *grid.Cell, o *policies.Option, to *grid.Cell)
	EndEpisode(t *Trainer, episode int)
	// Finish is called once the run is over and the active flag cleared
	Finish(t *Trainer)
}

// ActionLog receives the tokens of the actions taken
type ActionLog interface {
	Append(tokens ...string) error
	Clear() error
}

// EpisodeInfo is passed to the episode callback
type EpisodeInfo struct {
	Run     string
	Episode int
	Length  int
	Epsilon float64
}

// Result of a training run
type Result struct {
	RunID     string
	Learner   string
	Episodes  int
	Actions   int
	Converged bool
	Stopped   bool
	// Shortest episode among the last convergence window
	Shortest int
	Lengths  []int
	Subgoals explore.Subgoals
}

func (r *Result) Summary() string {
	verb := "trained for"
	if r.Converged {
		verb = "converged in"
	}
	return fmt.Sprintf("%s %s %d episodes, %d actions, optimal* path has %d actions.", r.Learner, verb, r.Episodes, r.Actions, r.Shortest)
}

// Trainer runs episodes of a learner on a grid. It owns the grid and the
// option store for the duration of a run.
type Trainer struct {
	Params Params
	// Label and RunIndex identify the run to analyzers
	Label    string
	RunIndex int

	grid    *grid.Grid
	store   *policies.Store
	graph   *explore.Graph
	learner Learner

	analyzers map[string]Analyzer
	log       ActionLog
	OnEpisode func(EpisodeInfo)

	convergence *Convergence
	epsilon     float64
	subgoals    explore.Subgoals
	partial     map[grid.Coord]grid.WallMask
	lengths     []int
	runID       string
	fresh       bool

	active atomic.Bool
	view   atomic.Pointer[View]
}

func NewTrainer(g *grid.Grid, learner Learner, params Params) *Trainer {
	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	t := &Trainer{
		Params:      params,
		Label:       learner.Name(),
		grid:        g,
		store:       policies.NewStore(g, seed),
		graph:       explore.NewGraph(),
		learner:     learner,
		analyzers:   make(map[string]Analyzer),
		convergence: NewConvergence(params.ConvergenceInterval, params.VarianceThreshold),
		partial:     make(map[grid.Coord]grid.WallMask),
		lengths:     make([]int, 0),
		fresh:       true,
	}
	t.publish(0)
	return t
}

func (t *Trainer) AddAnalyzer(name string, a Analyzer) {
	t.analyzers[name] = a
}

func (t *Trainer) SetActionLog(l ActionLog) {
	t.log = l
}

func (t *Trainer) Grid() *grid.Grid {
	return t.grid
}

func (t *Trainer) Store() *policies.Store {
	return t.store
}

func (t *Trainer) Graph() *explore.Graph {
	return t.graph
}

// Active reports whether a run is in progress
func (t *Trainer) Active() bool {
	return t.active.Load()
}

// Stop asks the current run to end at the next episode boundary
func (t *Trainer) Stop() {
	t.active.Store(false)
}

// View is the latest published state, safe to read from any goroutine
func (t *Trainer) View() *View {
	return t.view.Load()
}

// SetSubgoals records the subgoals the store's macro options follow
func (t *Trainer) SetSubgoals(s explore.Subgoals) {
	t.subgoals = s
}

func (t *Trainer) Subgoals() explore.Subgoals {
	return t.subgoals
}

func (t *Trainer) reset() error {
	t.store.Reset()
	t.graph.Reset()
	t.grid.ResetVisits()
	t.convergence = NewConvergence(t.Params.ConvergenceInterval, t.Params.VarianceThreshold)
	t.learner.Reset()
	t.subgoals = nil
	t.partial = make(map[grid.Coord]grid.WallMask)
	t.lengths = make([]int, 0)
	t.runID = uuid.NewString()
	if t.log != nil {
		if err := t.log.Clear(); err != nil {
			return fmt.Errorf("clearing action log: %w", err)
		}
	}
	return nil
}

// Run trains until the episode budget is spent, the lengths converge, Stop
// is called or ctx is done. Stopping is only observed between episodes.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	start, ok := t.grid.Start()
	if !ok {
		return nil, ErrMissingStart
	}
	if _, ok := t.grid.Goal(); !ok {
		return nil, ErrMissingGoal
	}
	if err := t.Params.Validate(); err != nil {
		return nil, err
	}
	if !t.active.CompareAndSwap(false, true) {
		return nil, ErrTrainingActive
	}
	defer t.active.Store(false)

	t.grid.SetGoalReward(t.Params.GoalReward)
	if t.fresh || t.Params.ResetLearning {
		if err := t.reset(); err != nil {
			return nil, err
		}
		t.fresh = false
	}
	t.epsilon = t.Params.MaxEpsilon
	t.partial[start] = t.grid.Cell(start).Walls

	result := &Result{RunID: t.runID, Learner: t.learner.Name()}
	var runErr error
	for episode := 1; ; episode++ {
		if !t.active.Load() || ctx.Err() != nil {
			result.Stopped = true
			break
		}
		t.learner.StartEpisode(ctx, t, episode)
		trace, err := t.runEpisode(start)
		if err != nil {
			runErr = err
			break
		}

		length := trace.Len()
		result.Episodes = episode
		result.Actions += length
		t.lengths = append(t.lengths, length)
		converged := t.convergence.Add(length)
		if t.Params.DecayMode == DecayPerEpisode {
			t.decay()
		}
		if t.log != nil {
			if err := t.log.Append(trace.Tokens()...); err != nil {
				runErr = fmt.Errorf("writing action log: %w", err)
				break
			}
		}
		for _, a := range t.analyzers {
			a.Analyze(t.RunIndex, episode, t.Label, trace)
		}
		if t.OnEpisode != nil {
			t.OnEpisode(EpisodeInfo{Run: t.runID, Episode: episode, Length: length, Epsilon: t.epsilon})
		}

		if t.Params.TrainUntilConvergence && converged {
			result.Converged = true
			break
		}
		if !t.Params.TrainUntilConvergence && episode >= t.Params.Episodes {
			break
		}
		if t.Params.TrainUntilConvergence && t.Params.MaxEpisodes > 0 && episode >= t.Params.MaxEpisodes {
			break
		}
		t.learner.EndEpisode(t, episode)
		t.publish(episode)
	}

	t.active.Store(false)
	t.learner.Finish(t)
	t.publish(result.Episodes)

	result.Shortest = t.convergence.Min()
	result.Lengths = append([]int(nil), t.lengths...)
	result.Subgoals = t.subgoals
	return result, runErr
}

func (t *Trainer) runEpisode(start grid.Coord) (*Trace, error) {
	t.grid.ResetEpisode()
	trace := NewTrace()
	cur := t.grid.Cell(start)
	for !cur.Goal {
		if t.Params.Horizon > 0 && trace.Len() >= t.Params.Horizon {
			trace.Truncated = true
			break
		}
		t.grid.Visit(cur.Coord)

		o := t.store.Choose(cur.Coord, t.epsilon, policies.Base)
		if o == nil {
			return trace, fmt.Errorf("%w: %s", ErrNoOptions, cur.Coord)
		}
		next := t.grid.Step(o)
		t.learner.Update(t, cur, o, next)

		trace.Append(Step{
			From:   cur.Coord,
			Option: o.Name(),
			Token:  o.Token(),
			Macro:  o.IsMacro(),
			To:     next.Coord,
			Reward: next.Reward,
		})
		t.partial[next.Coord] = next.Walls
		cur = next

		if t.Params.DecayMode == DecayPerStep {
			t.decay()
		}
	}
	return trace, nil
}

func (t *Trainer) decay() {
	if t.epsilon > t.Params.MinEpsilon {
		t.epsilon *= t.Params.EpsilonDecay
	}
}

// backup is the bootstrapped target of an option leading into to
func (t *Trainer) backup(to *grid.Cell) float64 {
	return to.Reward + t.Params.Discount*t.store.BestValue(to.Coord, policies.Base)
}

// update moves the option's value toward its target
func (t *Trainer) update(o *policies.Option, to *grid.Cell) {
	o.Value += t.Params.Alpha * (t.backup(to) - o.Value)
}
