package grid

import "fmt"

const DefaultGoalReward = 50.0

// Mover is anything that names a destination cell, usually an option.
// The destination may lie outside the grid, Step wraps it.
type Mover interface {
	Destination() Coord
}

// Grid is a toroidal grid world of Rows x Cols cells
type Grid struct {
	Rows int
	Cols int

	cells      []*Cell
	start      Coord
	goal       Coord
	hasStart   bool
	hasGoal    bool
	goalReward float64
}

// New creates a grid whose border cells carry the boundary walls,
// with the start at the top left and the goal at the bottom right.
func New(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	g := &Grid{
		Rows:       rows,
		Cols:       cols,
		cells:      make([]*Cell, rows*cols),
		goalReward: DefaultGoalReward,
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var walls WallMask
			if col == 0 {
				walls |= Left.Bit()
			}
			if row == 0 {
				walls |= Up.Bit()
			}
			if col == cols-1 {
				walls |= Right.Bit()
			}
			if row == rows-1 {
				walls |= Down.Bit()
			}
			g.cells[row*cols+col] = &Cell{Coord: Coord{row, col}, Walls: walls}
		}
	}
	g.start = Coord{0, 0}
	g.hasStart = true
	g.SetGoal(Coord{rows - 1, cols - 1})
	return g
}

// Contains checks that c lies inside the grid without wrapping
func (g *Grid) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// Wrap maps any coordinate onto the torus
func (g *Grid) Wrap(c Coord) Coord {
	return Coord{Row: mod(c.Row, g.Rows), Col: mod(c.Col, g.Cols)}
}

// Cell returns the cell at c, nil when c is outside the grid
func (g *Grid) Cell(c Coord) *Cell {
	if !g.Contains(c) {
		return nil
	}
	return g.cells[c.Row*g.Cols+c.Col]
}

// Cells in row major order
func (g *Grid) Cells() []*Cell {
	return g.cells
}

// Step applies the mover's destination, wrapping row and column
func (g *Grid) Step(m Mover) *Cell {
	return g.Cell(g.Wrap(m.Destination()))
}

func (g *Grid) Start() (Coord, bool) {
	return g.start, g.hasStart
}

func (g *Grid) Goal() (Coord, bool) {
	return g.goal, g.hasGoal
}

func (g *Grid) GoalReward() float64 {
	return g.goalReward
}

func (g *Grid) SetStart(c Coord) error {
	if !g.Contains(c) {
		return fmt.Errorf("start %s: %w", c, ErrOutOfBounds)
	}
	g.start = c
	g.hasStart = true
	return nil
}

func (g *Grid) ClearStart() {
	g.hasStart = false
}

// SetGoal moves the goal, clearing the reward and flag of the previous one
func (g *Grid) SetGoal(c Coord) error {
	cell := g.Cell(c)
	if cell == nil {
		return fmt.Errorf("goal %s: %w", c, ErrOutOfBounds)
	}
	g.ClearGoal()
	cell.Goal = true
	cell.Reward = g.goalReward
	g.goal = c
	g.hasGoal = true
	return nil
}

func (g *Grid) ClearGoal() {
	if !g.hasGoal {
		return
	}
	old := g.Cell(g.goal)
	old.Goal = false
	old.Reward = 0
	g.hasGoal = false
}

// SetGoalReward changes the reward at the goal, including the current one
func (g *Grid) SetGoalReward(r float64) {
	g.goalReward = r
	if g.hasGoal {
		g.Cell(g.goal).Reward = r
	}
}

// SetWalls replaces the wall mask of a cell from its hex code. An invalid
// code leaves the cell untouched.
func (g *Grid) SetWalls(c Coord, code string) error {
	cell := g.Cell(c)
	if cell == nil {
		return fmt.Errorf("walls %s: %w", c, ErrOutOfBounds)
	}
	w, err := ParseWallMask(code)
	if err != nil {
		return err
	}
	cell.Walls = w
	return nil
}

// wallNeighbour returns the cell sharing the wall in direction d.
// Down and right wrap modulo the extent. Up and left subtract without
// wrapping, a negative index counts back from the last row or column.
func (g *Grid) wallNeighbour(c Coord, d Direction) (Coord, bool) {
	var n Coord
	switch d {
	case Down:
		n = Coord{Row: (c.Row + 1) % g.Rows, Col: c.Col}
	case Right:
		n = Coord{Row: c.Row, Col: (c.Col + 1) % g.Cols}
	case Up:
		n = Coord{Row: fromEnd(c.Row-1, g.Rows), Col: c.Col}
	case Left:
		n = Coord{Row: c.Row, Col: fromEnd(c.Col-1, g.Cols)}
	}
	return n, g.Contains(n)
}

func fromEnd(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

// ToggleWall flips the wall in direction d on c and the opposing wall on
// the neighbour. It returns every cell whose mask changed.
func (g *Grid) ToggleWall(d Direction, c Coord) ([]Coord, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("toggle wall: unknown direction %d", d)
	}
	cell := g.Cell(c)
	if cell == nil {
		return nil, fmt.Errorf("toggle wall %s: %w", c, ErrOutOfBounds)
	}
	changed := []Coord{c}
	n, ok := g.wallNeighbour(c, d)
	if ok && n == c {
		// single row or column: both bits sit on the same cell
		cell.Walls = cell.Walls.Toggle(d).Toggle(d.Opposite())
		return changed, nil
	}
	cell.Walls = cell.Walls.Toggle(d)
	if ok {
		neighbour := g.Cell(n)
		neighbour.Walls = neighbour.Walls.Toggle(d.Opposite())
		changed = append(changed, n)
	}
	return changed, nil
}

// ResetEpisode clears the per-episode visited flags
func (g *Grid) ResetEpisode() {
	for _, c := range g.cells {
		c.VisitedInEpisode = false
	}
}

// ResetVisits clears visit counters and flags
func (g *Grid) ResetVisits() {
	for _, c := range g.cells {
		c.Visits = 0
		c.VisitedInEpisode = false
	}
}

// Visit marks the cell as entered in the current episode
func (g *Grid) Visit(c Coord) {
	cell := g.Cell(c)
	if cell == nil || cell.VisitedInEpisode {
		return
	}
	cell.Visits += 1
	cell.VisitedInEpisode = true
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
