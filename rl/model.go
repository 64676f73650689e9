package rl

import (
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
)

// Transition is an option observed to lead into a cell with its reward
type Transition struct {
	Option *policies.Option
	Reward float64
}

// Model remembers, for every destination, the options seen to lead there
type Model struct {
	into map[grid.Coord][]Transition
}

func NewModel() *Model {
	return &Model{
		into: make(map[grid.Coord][]Transition),
	}
}

// Record adds the transition, replacing the reward if the option was
// already recorded for the destination
func (m *Model) Record(o *policies.Option, dest grid.Coord, reward float64) {
	transitions := m.into[dest]
	for i, t := range transitions {
		if t.Option == o {
			transitions[i].Reward = reward
			return
		}
	}
	m.into[dest] = append(transitions, Transition{Option: o, Reward: reward})
}

// Predecessors of dest in the order they were first recorded
func (m *Model) Predecessors(dest grid.Coord) []Transition {
	return m.into[dest]
}

// Forget drops every transition of the option
func (m *Model) Forget(o *policies.Option) {
	for dest, transitions := range m.into {
		kept := transitions[:0]
		for _, t := range transitions {
			if t.Option != o {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(m.into, dest)
		} else {
			m.into[dest] = kept
		}
	}
}

// Len is the number of recorded transitions
func (m *Model) Len() int {
	n := 0
	for _, transitions := range m.into {
		n += len(transitions)
	}
	return n
}

func (m *Model) Reset() {
	m.into = make(map[grid.Coord][]Transition)
}
