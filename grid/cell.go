package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidWallCode = errors.New("invalid wall code")
	ErrOutOfBounds     = errors.New("coordinate outside the grid")
)

// Direction of a primitive move
type Direction int

const (
	Left Direction = iota
	Up
	Right
	Down
)

// Directions in the order of the wall mask bits (most significant first)
var Directions = []Direction{Left, Up, Right, Down}

// Bit returns the wall mask bit blocking the direction
func (d Direction) Bit() WallMask {
	switch d {
	case Left:
		return 8
	case Up:
		return 4
	case Right:
		return 2
	case Down:
		return 1
	}
	return 0
}

// Delta is the unwrapped (row, col) offset of a move
func (d Direction) Delta() (int, int) {
	switch d {
	case Left:
		return 0, -1
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	}
	return 0, 0
}

func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Up:
		return Down
	case Right:
		return Left
	default:
		return Up
	}
}

func (d Direction) Valid() bool {
	return d >= Left && d <= Down
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "L"
	case Up:
		return "U"
	case Right:
		return "R"
	case Down:
		return "D"
	}
	return "?"
}

// Token is the action-log token of the direction (1-4)
func (d Direction) Token() string {
	return strconv.Itoa(int(d) + 1)
}

// WallMask holds one bit per direction, left/up/right/down from the
// most significant bit. A set bit blocks the move.
type WallMask uint8

// ParseWallMask reads a single hexadecimal wall code
func ParseWallMask(code string) (WallMask, error) {
	if len(code) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWallCode, code)
	}
	v, err := strconv.ParseUint(code, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWallCode, code)
	}
	return WallMask(v), nil
}

func (w WallMask) Has(d Direction) bool {
	return w&d.Bit() != 0
}

func (w WallMask) Toggle(d Direction) WallMask {
	return w ^ d.Bit()
}

// Open lists the directions without a wall, in mask order
func (w WallMask) Open() []Direction {
	open := make([]Direction, 0, 4)
	for _, d := range Directions {
		if !w.Has(d) {
			open = append(open, d)
		}
	}
	return open
}

func (w WallMask) String() string {
	return strings.ToUpper(strconv.FormatUint(uint64(w&0xF), 16))
}

// Coord identifies a cell
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d_%d", c.Row, c.Col)
}

// Manhattan distance without wrap-around
func (c Coord) Manhattan(other Coord) int {
	return abs(c.Row-other.Row) + abs(c.Col-other.Col)
}

func (c Coord) Move(d Direction) Coord {
	dr, dc := d.Delta()
	return Coord{Row: c.Row + dr, Col: c.Col + dc}
}

// ParseCoord reads the "row_col" form produced by String
func ParseCoord(s string) (Coord, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("malformed coordinate %q", s)
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return Coord{}, fmt.Errorf("malformed coordinate %q: %w", s, err)
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return Coord{}, fmt.Errorf("malformed coordinate %q: %w", s, err)
	}
	return Coord{Row: row, Col: col}, nil
}

// MarshalText lets coordinates key JSON objects
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Coord) UnmarshalText(text []byte) error {
	parsed, err := ParseCoord(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Cell of the grid
type Cell struct {
	Coord  Coord
	Walls  WallMask
	Reward float64
	Goal   bool
	// Visits counts the episodes in which the cell was entered
	Visits           int
	VisitedInEpisode bool
}

// Actions available from the cell
func (c *Cell) Actions() []Direction {
	return c.Walls.Open()
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
