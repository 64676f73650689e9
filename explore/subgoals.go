package explore

import (
	"github.com/zeu5/subgoal-rl/grid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Subgoals maps every subgoal to its initiation set. A published value is
// never modified, use Clone to derive a new one.
type Subgoals map[grid.Coord][]grid.Coord

func (s Subgoals) Clone() Subgoals {
	out := make(Subgoals, len(s))
	for sg, members := range s {
		out[sg] = slices.Clone(members)
	}
	return out
}

// Keys in row major order
func (s Subgoals) Keys() []grid.Coord {
	keys := maps.Keys(s)
	sortCoords(keys)
	return keys
}

// Offers reports whether c is in the initiation set of subgoal
func (s Subgoals) Offers(subgoal, c grid.Coord) bool {
	return slices.Contains(s[subgoal], c)
}

// Equal compares subgoals and their members regardless of order
func (s Subgoals) Equal(other Subgoals) bool {
	if len(s) != len(other) {
		return false
	}
	for sg, members := range s {
		o, ok := other[sg]
		if !ok || len(o) != len(members) {
			return false
		}
		for _, m := range members {
			if !slices.Contains(o, m) {
				return false
			}
		}
	}
	return true
}

func less(a, b grid.Coord) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

func compareCoords(a, b grid.Coord) int {
	switch {
	case less(a, b):
		return -1
	case less(b, a):
		return 1
	}
	return 0
}

func sortCoords(cs []grid.Coord) {
	slices.SortFunc(cs, compareCoords)
}

func sortEdges(es [][2]grid.Coord) {
	slices.SortFunc(es, func(a, b [2]grid.Coord) int {
		if c := compareCoords(a[0], b[0]); c != 0 {
			return c
		}
		return compareCoords(a[1], b[1])
	})
}
