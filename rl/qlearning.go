package rl

import (
	"context"

	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
)

// QLearning applies the one step bootstrapped update to every option taken
type QLearning struct{}

var _ Learner = &QLearning{}

func NewQLearning() *QLearning {
	return &QLearning{}
}

func (q *QLearning) Name() string {
	return "QL"
}

func (q *QLearning) Reset() {}

func (q *QLearning) StartEpisode(_ context.Context, _ *Trainer, _ int) {}

func (q *QLearning) Update(t *Trainer, _ *grid.Cell, o *policies.Option, to *grid.Cell) {
	t.update(o, to)
}

func (q *QLearning) EndEpisode(_ *Trainer, _ int) {}

func (q *QLearning) Finish(_ *Trainer) {}
