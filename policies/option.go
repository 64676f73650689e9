package policies

import (
	"fmt"

	"github.com/zeu5/subgoal-rl/grid"
)

type Kind uint8

const (
	PrimitiveKind Kind = iota
	MacroKind
)

// Option is either a primitive move in one direction or a macro option
// that takes the agent to a subgoal.
type Option struct {
	Kind      Kind
	Direction grid.Direction
	Subgoal   grid.Coord
	Origin    grid.Coord
	Value     float64
}

func Primitive(origin grid.Coord, d grid.Direction) *Option {
	return &Option{Kind: PrimitiveKind, Direction: d, Origin: origin}
}

func Macro(origin, subgoal grid.Coord, value float64) *Option {
	return &Option{Kind: MacroKind, Subgoal: subgoal, Origin: origin, Value: value}
}

func (o *Option) IsMacro() bool {
	return o.Kind == MacroKind
}

// Destination is the unwrapped coordinate the option leads to
func (o *Option) Destination() grid.Coord {
	if o.IsMacro() {
		return o.Subgoal
	}
	return o.Origin.Move(o.Direction)
}

// Name is "L", "U", "R", "D" or the subgoal as "row_col"
func (o *Option) Name() string {
	if o.IsMacro() {
		return o.Subgoal.String()
	}
	return o.Direction.String()
}

// Token is the action log representation
func (o *Option) Token() string {
	if o.IsMacro() {
		return o.Subgoal.String()
	}
	return o.Direction.Token()
}

func (o *Option) String() string {
	return fmt.Sprintf("%s:%s(%.3f)", o.Origin, o.Name(), o.Value)
}

// PolicyID names a policy on a cell: the base policy or the intra option
// policy of a subgoal.
type PolicyID struct {
	subgoal grid.Coord
	intra   bool
}

var Base = PolicyID{}

func Intra(subgoal grid.Coord) PolicyID {
	return PolicyID{subgoal: subgoal, intra: true}
}

func (p PolicyID) IsBase() bool {
	return !p.intra
}

func (p PolicyID) Subgoal() (grid.Coord, bool) {
	return p.subgoal, p.intra
}

func (p PolicyID) String() string {
	if !p.intra {
		return "base"
	}
	return p.subgoal.String()
}
