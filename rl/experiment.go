package rl

import (
	"context"
	"fmt"

	"github.com/zeu5/subgoal-rl/grid"
)

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the traces of a run into a DataSet
type Analyzer interface {
	// run, episode, experiment name, trace
	Analyze(int, int, string, *Trace)
	DataSet() DataSet
	Reset()
}

// Comparator differentiates between datasets of the experiments of a run
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(int, []string, []DataSet) {}
}

// Experiment trains one learner on a fresh grid built from a layout
type Experiment struct {
	Name       string
	layout     *grid.Layout
	params     Params
	newLearner func() Learner
}

func NewExperiment(name string, layout *grid.Layout, params Params, newLearner func() Learner) *Experiment {
	return &Experiment{
		Name:       name,
		layout:     layout,
		params:     params,
		newLearner: newLearner,
	}
}

// Trainer builds the trainer for a run. Every run gets its own seed.
func (e *Experiment) Trainer(run int) (*Trainer, error) {
	g, err := grid.FromLayout(e.layout)
	if err != nil {
		return nil, err
	}
	params := e.params
	if params.Seed != 0 {
		params.Seed += uint64(run)
	}
	t := NewTrainer(g, e.newLearner(), params)
	t.Label = e.Name
	t.RunIndex = run
	return t, nil
}

// Comparison runs every experiment for a number of runs, the analyzed
// datasets of each run are then compared
type Comparison struct {
	Experiments []*Experiment
	Runs        int
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	// OnTrainer lets the caller hook into every trainer before it runs
	OnTrainer func(*Trainer)
}

func NewComparison(runs int) *Comparison {
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		Runs:        runs,
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
	}
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run the comparison, returns the results indexed by run then experiment
func (c *Comparison) Run(ctx context.Context) ([][]*Result, error) {
	results := make([][]*Result, 0, c.Runs)
	for run := 0; run < c.Runs; run++ {
		fmt.Printf("Run %d\n", run+1)
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		runResults := make([]*Result, len(c.Experiments))
		for i, e := range c.Experiments {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			t, err := e.Trainer(run)
			if err != nil {
				return results, fmt.Errorf("experiment %s: %w", e.Name, err)
			}
			for name, a := range c.analyzers {
				t.AddAnalyzer(name, a)
			}
			if c.OnTrainer != nil {
				c.OnTrainer(t)
			}
			res, err := t.Run(ctx)
			if err != nil {
				return results, fmt.Errorf("experiment %s: %w", e.Name, err)
			}
			fmt.Printf("%s: %s\n", e.Name, res.Summary())
			runResults[i] = res
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
		}
		for name, comp := range c.comparators {
			comp(run, names, datasets[name])
		}
		results = append(results, runResults)
	}
	return results, nil
}
