package rl

import "github.com/zeu5/subgoal-rl/grid"

// Step is one move of the agent
type Step struct {
	From   grid.Coord
	Option string
	Token  string
	Macro  bool
	To     grid.Coord
	Reward float64
}

// Trace of an episode
type Trace struct {
	steps []Step
	// Truncated is set when the episode hit the horizon
	Truncated bool
}

func NewTrace() *Trace {
	return &Trace{
		steps: make([]Step, 0),
	}
}

func (t *Trace) Append(s Step) {
	t.steps = append(t.steps, s)
}

func (t *Trace) Len() int {
	return len(t.steps)
}

func (t *Trace) Get(i int) (Step, bool) {
	if i < 0 || i >= len(t.steps) {
		return Step{}, false
	}
	return t.steps[i], true
}

func (t *Trace) Last() (Step, bool) {
	return t.Get(len(t.steps) - 1)
}

func (t *Trace) GetPrefix(i int) (*Trace, bool) {
	if i < 0 || i > len(t.steps) {
		return nil, false
	}
	return &Trace{steps: t.steps[0:i]}, true
}

// Tokens of the action log, one per step
func (t *Trace) Tokens() []string {
	out := make([]string, len(t.steps))
	for i, s := range t.steps {
		out[i] = s.Token
	}
	return out
}

// Cells entered during the episode, with repetitions
func (t *Trace) Cells() []grid.Coord {
	out := make([]grid.Coord, len(t.steps))
	for i, s := range t.steps {
		out[i] = s.To
	}
	return out
}
