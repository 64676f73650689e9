package rl

import (
	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/policies"
)

// View is an immutable copy of what the trainer exposes to the outside:
// arrows, visit counts, values, the exploration graph and subgoals.
type View struct {
	RunID   string  `json:"run_id"`
	Learner string  `json:"learner"`
	Active  bool    `json:"active"`
	Episode int     `json:"episode"`
	Epsilon float64 `json:"epsilon"`

	Rows  int         `json:"rows"`
	Cols  int         `json:"cols"`
	Start *grid.Coord `json:"start,omitempty"`
	Goal  *grid.Coord `json:"goal,omitempty"`

	// Best option name per cell, empty for cells without options
	Best    map[grid.Coord]string             `json:"best"`
	Visits  map[grid.Coord]int                `json:"visits"`
	QValues map[grid.Coord]map[string]float64 `json:"qvalues"`

	Edges    [][2]grid.Coord  `json:"edges"`
	Subgoals explore.Subgoals `json:"subgoals"`
	Lengths  []int            `json:"lengths"`
	// PartialMap holds the wall codes of the cells seen so far, X elsewhere
	PartialMap [][]string `json:"partial_map"`
}

func (t *Trainer) publish(episode int) {
	g := t.grid
	v := &View{
		RunID:    t.runID,
		Learner:  t.learner.Name(),
		Active:   t.active.Load(),
		Episode:  episode,
		Epsilon:  t.epsilon,
		Rows:     g.Rows,
		Cols:     g.Cols,
		Best:     make(map[grid.Coord]string),
		Visits:   make(map[grid.Coord]int),
		QValues:  make(map[grid.Coord]map[string]float64),
		Edges:    t.graph.Edges(),
		Subgoals: t.subgoals.Clone(),
		Lengths:  append([]int(nil), t.lengths...),
	}
	if start, ok := g.Start(); ok {
		v.Start = &start
	}
	if goal, ok := g.Goal(); ok {
		v.Goal = &goal
	}
	for _, cell := range g.Cells() {
		if best := t.store.Best(cell.Coord, policies.Base); best != nil {
			v.Best[cell.Coord] = best.Name()
		}
		v.Visits[cell.Coord] = cell.Visits
		v.QValues[cell.Coord] = t.store.QValues(cell.Coord, policies.Base)
	}
	v.PartialMap = make([][]string, g.Rows)
	for row := 0; row < g.Rows; row++ {
		v.PartialMap[row] = make([]string, g.Cols)
		for col := 0; col < g.Cols; col++ {
			if w, ok := t.partial[grid.Coord{Row: row, Col: col}]; ok {
				v.PartialMap[row][col] = w.String()
			} else {
				v.PartialMap[row][col] = "X"
			}
		}
	}
	t.view.Store(v)
}

// BestPath follows the best option from start until the goal, a cell seen
// twice or limit steps. Macro options jump to their subgoal.
func (v *View) BestPath(limit int) []grid.Coord {
	if v.Start == nil {
		return nil
	}
	path := []grid.Coord{*v.Start}
	seen := map[grid.Coord]bool{*v.Start: true}
	cur := *v.Start
	for len(path) <= limit {
		if v.Goal != nil && cur == *v.Goal {
			break
		}
		name, ok := v.Best[cur]
		if !ok {
			break
		}
		next, ok := v.follow(cur, name)
		if !ok || seen[next] {
			break
		}
		seen[next] = true
		path = append(path, next)
		cur = next
	}
	return path
}

func (v *View) follow(c grid.Coord, name string) (grid.Coord, bool) {
	for _, d := range grid.Directions {
		if d.String() == name {
			n := c.Move(d)
			return grid.Coord{Row: mod(n.Row, v.Rows), Col: mod(n.Col, v.Cols)}, true
		}
	}
	target, err := grid.ParseCoord(name)
	if err != nil {
		return grid.Coord{}, false
	}
	return target, true
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
