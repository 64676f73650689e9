package policies

import (
	"math"

	"github.com/zeu5/subgoal-rl/grid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

// table is the ordered option set of one cell under one policy.
// Insertion order breaks ties between equally valued options.
type table struct {
	options []*Option
}

func (t *table) find(pred func(*Option) bool) int {
	for i, o := range t.options {
		if pred(o) {
			return i
		}
	}
	return -1
}

func (t *table) best() *Option {
	var best *Option
	for _, o := range t.options {
		if best == nil || o.Value > best.Value {
			best = o
		}
	}
	return best
}

// layer holds one table per cell, indexed like the grid's cells
type layer struct {
	tables []table
	// number of cells holding a macro option toward the layer's subgoal
	refs int
}

// Store keeps every option of a grid. The base layer holds the options the
// agent picks from, every subgoal with at least one macro option gets an
// intra option layer of primitive options.
// Intra option layers are placeholders for the macro options' internal
// policy: they are kept in sync with walls and subgoals but no learner
// reads or updates them, macro options move straight to their subgoal.
type Store struct {
	grid *grid.Grid
	base layer

	layers []*layer
	index  map[grid.Coord]int
	free   []int

	rand *rand.Rand
}

func NewStore(g *grid.Grid, seed uint64) *Store {
	s := &Store{
		grid:  g,
		index: make(map[grid.Coord]int),
		rand:  rand.New(rand.NewSource(seed)),
	}
	s.Reset()
	return s
}

// Reset discards all learned values and macro options, rebuilding the base
// layer from the current walls.
func (s *Store) Reset() {
	s.base = s.primitiveLayer()
	s.layers = make([]*layer, 0)
	s.index = make(map[grid.Coord]int)
	s.free = make([]int, 0)
}

// Seed resets the random source used by Choose
func (s *Store) Seed(seed uint64) {
	s.rand.Seed(seed)
}

func (s *Store) primitiveLayer() layer {
	cells := s.grid.Cells()
	l := layer{tables: make([]table, len(cells))}
	for i, cell := range cells {
		l.tables[i] = primitiveTable(cell)
	}
	return l
}

func primitiveTable(cell *grid.Cell) table {
	actions := cell.Actions()
	t := table{options: make([]*Option, len(actions))}
	for i, d := range actions {
		t.options[i] = Primitive(cell.Coord, d)
	}
	return t
}

func (s *Store) cellIndex(c grid.Coord) (int, bool) {
	if !s.grid.Contains(c) {
		return 0, false
	}
	return c.Row*s.grid.Cols + c.Col, true
}

func (s *Store) layer(p PolicyID) *layer {
	if p.IsBase() {
		return &s.base
	}
	i, ok := s.index[p.subgoal]
	if !ok {
		return nil
	}
	return s.layers[i]
}

func (s *Store) table(c grid.Coord, p PolicyID) *table {
	i, ok := s.cellIndex(c)
	if !ok {
		return nil
	}
	l := s.layer(p)
	if l == nil {
		return nil
	}
	return &l.tables[i]
}

// Available lists the options of the cell under the policy
func (s *Store) Available(c grid.Coord, p PolicyID) []*Option {
	t := s.table(c, p)
	if t == nil {
		return []*Option{}
	}
	return slices.Clone(t.options)
}

// Best returns the highest valued option, the first one inserted on ties.
// Nil when the cell has no options.
func (s *Store) Best(c grid.Coord, p PolicyID) *Option {
	t := s.table(c, p)
	if t == nil {
		return nil
	}
	return t.best()
}

// BestValue is the value of the best option plus the cell's immediate reward
func (s *Store) BestValue(c grid.Coord, p PolicyID) float64 {
	cell := s.grid.Cell(c)
	if cell == nil {
		return 0
	}
	best := s.Best(c, p)
	if best == nil {
		return cell.Reward
	}
	return best.Value + cell.Reward
}

// Choose picks an option: uniformly at random while the best value is
// still exactly zero, otherwise epsilon greedy.
func (s *Store) Choose(c grid.Coord, epsilon float64, p PolicyID) *Option {
	t := s.table(c, p)
	if t == nil || len(t.options) == 0 {
		return nil
	}
	best := t.best()
	if best.Value == 0 || s.rand.Float64() < epsilon {
		return t.options[s.rand.Intn(len(t.options))]
	}
	return best
}

// AddOption offers a macro option toward subgoal on cell c. It is a no-op
// if the option is already there. The first macro option of a subgoal
// creates its intra option layer.
func (s *Store) AddOption(c, subgoal grid.Coord, initial float64) bool {
	i, ok := s.cellIndex(c)
	if !ok {
		return false
	}
	t := &s.base.tables[i]
	if t.find(isMacroTo(subgoal)) >= 0 {
		return false
	}
	t.options = append(t.options, Macro(c, subgoal, initial))

	idx, ok := s.index[subgoal]
	if !ok {
		idx = s.allocLayer()
		s.index[subgoal] = idx
	}
	s.layers[idx].refs += 1
	return true
}

// RemoveOption drops the macro option toward subgoal from cell c, deleting
// the subgoal's intra option layer once no cell refers to it.
func (s *Store) RemoveOption(c, subgoal grid.Coord) *Option {
	i, ok := s.cellIndex(c)
	if !ok {
		return nil
	}
	t := &s.base.tables[i]
	pos := t.find(isMacroTo(subgoal))
	if pos < 0 {
		return nil
	}
	removed := t.options[pos]
	t.options = slices.Delete(t.options, pos, pos+1)

	if idx, ok := s.index[subgoal]; ok {
		l := s.layers[idx]
		l.refs -= 1
		if l.refs <= 0 {
			s.layers[idx] = nil
			s.free = append(s.free, idx)
			delete(s.index, subgoal)
		}
	}
	return removed
}

func (s *Store) allocLayer() int {
	l := s.primitiveLayer()
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		s.layers[idx] = &l
		return idx
	}
	s.layers = append(s.layers, &l)
	return len(s.layers) - 1
}

func (s *Store) HasOption(c, subgoal grid.Coord) bool {
	t := s.table(c, Base)
	return t != nil && t.find(isMacroTo(subgoal)) >= 0
}

func (s *Store) HasIntraPolicy(subgoal grid.Coord) bool {
	_, ok := s.index[subgoal]
	return ok
}

// Subgoals with a live intra option layer, in row major order
func (s *Store) Subgoals() []grid.Coord {
	out := maps.Keys(s.index)
	sortCoords(out)
	return out
}

// SyncWalls re-derives the primitive options of c in every layer after its
// walls changed. Surviving primitives keep their values.
func (s *Store) SyncWalls(c grid.Coord) {
	i, ok := s.cellIndex(c)
	if !ok {
		return
	}
	cell := s.grid.Cell(c)
	sync := func(t *table) {
		fresh := primitiveTable(cell)
		for _, o := range fresh.options {
			if pos := t.find(isPrimitive(o.Direction)); pos >= 0 {
				o.Value = t.options[pos].Value
			}
		}
		for _, o := range t.options {
			if o.IsMacro() {
				fresh.options = append(fresh.options, o)
			}
		}
		*t = fresh
	}
	sync(&s.base.tables[i])
	for _, l := range s.layers {
		if l != nil {
			sync(&l.tables[i])
		}
	}
}

// QValues maps option names to their values, rounded to three decimals
func (s *Store) QValues(c grid.Coord, p PolicyID) map[string]float64 {
	out := make(map[string]float64)
	t := s.table(c, p)
	if t == nil {
		return out
	}
	for _, o := range t.options {
		out[o.Name()] = math.Round(o.Value*1000) / 1000
	}
	return out
}

func isMacroTo(subgoal grid.Coord) func(*Option) bool {
	return func(o *Option) bool {
		return o.IsMacro() && o.Subgoal == subgoal
	}
}

func isPrimitive(d grid.Direction) func(*Option) bool {
	return func(o *Option) bool {
		return !o.IsMacro() && o.Direction == d
	}
}

func sortCoords(cs []grid.Coord) {
	slices.SortFunc(cs, func(a, b grid.Coord) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
}
