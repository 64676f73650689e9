package grid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrInvalidLayout = errors.New("invalid layout")

// Layout is the saved form of a grid (the .gwmap format):
//
//	startRow startCol
//	goalRow goalCol
//	<blank>
//	one line per row of space separated hex wall codes
type Layout struct {
	Start *Coord
	Goal  *Coord
	Walls [][]WallMask
}

func (l *Layout) Dims() (int, int) {
	if len(l.Walls) == 0 {
		return 0, 0
	}
	return len(l.Walls), len(l.Walls[0])
}

// ReadLayout parses a layout and validates start, goal and every wall code
func ReadLayout(r io.Reader) (*Layout, error) {
	scanner := bufio.NewScanner(r)
	header := make([]string, 0, 3)
	for len(header) < 3 && scanner.Scan() {
		header = append(header, strings.TrimSpace(scanner.Text()))
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: missing start or goal line", ErrInvalidLayout)
	}
	start, err := parseHeaderCoord(header[0])
	if err != nil {
		return nil, err
	}
	goal, err := parseHeaderCoord(header[1])
	if err != nil {
		return nil, err
	}
	layout := &Layout{Start: &start, Goal: &goal, Walls: make([][]WallMask, 0)}
	if len(header) == 3 && header[2] != "" {
		// no blank separator line
		if err := layout.appendRow(header[2]); err != nil {
			return nil, err
		}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := layout.appendRow(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	if len(layout.Walls) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidLayout)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return layout, nil
}

func parseHeaderCoord(line string) (Coord, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Coord{}, fmt.Errorf("%w: start or goal coordinates are not valid", ErrInvalidLayout)
	}
	row, err1 := strconv.Atoi(fields[0])
	col, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return Coord{}, fmt.Errorf("%w: start and goal coordinates must be non-negative integers", ErrInvalidLayout)
	}
	if row < 0 || col < 0 {
		return Coord{}, fmt.Errorf("%w: start and goal coordinates must be non-negative", ErrInvalidLayout)
	}
	return Coord{Row: row, Col: col}, nil
}

func (l *Layout) appendRow(line string) error {
	fields := strings.Fields(line)
	row := make([]WallMask, len(fields))
	for i, f := range fields {
		w, err := ParseWallMask(f)
		if err != nil {
			return fmt.Errorf("row %d col %d: %w", len(l.Walls), i, err)
		}
		row[i] = w
	}
	l.Walls = append(l.Walls, row)
	return nil
}

// Validate checks the rows are rectangular and start/goal are inside
func (l *Layout) Validate() error {
	rows, cols := l.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("%w: empty grid", ErrInvalidLayout)
	}
	for i, row := range l.Walls {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidLayout, i, len(row), cols)
		}
	}
	for _, c := range []*Coord{l.Start, l.Goal} {
		if c == nil {
			continue
		}
		if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
			return fmt.Errorf("%w: start and goal must be inside the grid", ErrInvalidLayout)
		}
	}
	return nil
}

// Write emits the layout in the format ReadLayout accepts
func (l *Layout) Write(w io.Writer) error {
	if l.Start == nil || l.Goal == nil {
		return fmt.Errorf("%w: start and goal must be set before saving", ErrInvalidLayout)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n%d %d\n\n", l.Start.Row, l.Start.Col, l.Goal.Row, l.Goal.Col)
	for _, row := range l.Walls {
		codes := make([]string, len(row))
		for i, m := range row {
			codes[i] = m.String()
		}
		fmt.Fprintln(bw, strings.Join(codes, " "))
	}
	return bw.Flush()
}

// FromLayout builds a fresh grid: every cell's options derive only from
// its wall code.
func FromLayout(l *Layout) (*Grid, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	rows, cols := l.Dims()
	g := New(rows, cols)
	g.ClearStart()
	g.ClearGoal()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			g.cells[row*cols+col].Walls = l.Walls[row][col]
		}
	}
	if l.Start != nil {
		g.SetStart(*l.Start)
	}
	if l.Goal != nil {
		g.SetGoal(*l.Goal)
	}
	return g, nil
}

// Layout captures the current walls, start and goal
func (g *Grid) Layout() *Layout {
	l := &Layout{Walls: make([][]WallMask, g.Rows)}
	for row := 0; row < g.Rows; row++ {
		l.Walls[row] = make([]WallMask, g.Cols)
		for col := 0; col < g.Cols; col++ {
			l.Walls[row][col] = g.cells[row*g.Cols+col].Walls
		}
	}
	if start, ok := g.Start(); ok {
		l.Start = &start
	}
	if goal, ok := g.Goal(); ok {
		l.Goal = &goal
	}
	return l
}
