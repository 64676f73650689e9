package explore

import (
	"github.com/zeu5/subgoal-rl/grid"
	"gonum.org/v1/gonum/graph/network"
)

// Betweenness is the classic betweenness centrality of every node. It is
// only used for display, discovery uses the path share from Centrality.
func (s *Snapshot) Betweenness() map[grid.Coord]float64 {
	out := make(map[grid.Coord]float64, len(s.coords))
	for _, c := range s.coords {
		out[c] = 0
	}
	for id, v := range network.Betweenness(s.graph) {
		if c, ok := s.byID[id]; ok {
			out[c] = v
		}
	}
	return out
}
