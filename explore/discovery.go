package explore

import (
	"errors"
	"math"

	"github.com/zeu5/subgoal-rl/grid"
	"gonum.org/v1/gonum/stat"
)

// Params of a discovery pass
type Params struct {
	// hops around a selected peak that can no longer become subgoals
	SuppressionRadius int `yaml:"suppression_radius"`
	// smoothed centrality below which peak selection stops
	CentralityThreshold float64 `yaml:"centrality_threshold"`
	SmoothingRadius     int     `yaml:"smoothing_radius"`
	MedianRadius        int     `yaml:"median_radius"`
	MedianPasses        int     `yaml:"median_passes"`
	// graphs with fewer nodes are skipped
	MinNodes int `yaml:"min_nodes"`
}

func DefaultParams() Params {
	return Params{
		SuppressionRadius:   5,
		CentralityThreshold: 0.03,
		SmoothingRadius:     3,
		MedianRadius:        5,
		MedianPasses:        3,
		MinNodes:            15,
	}
}

func (p Params) Validate() error {
	if p.SuppressionRadius < 0 || p.SmoothingRadius < 0 || p.MedianRadius < 0 {
		return errors.New("discovery radii must be non-negative")
	}
	if p.MedianPasses < 0 {
		return errors.New("median passes must be non-negative")
	}
	if p.MinNodes < 1 {
		return errors.New("minimum graph size must be positive")
	}
	return nil
}

// Discover finds subgoals on the snapshot and the initiation set of each.
// The goal is always a subgoal. When the graph is too small prev is
// returned unchanged.
func Discover(s *Snapshot, params Params, goal grid.Coord, prev Subgoals) Subgoals {
	if s.Len() < params.MinNodes {
		return prev
	}
	smoothed := s.weightedMean(s.centrality(), params.SmoothingRadius)
	result := make(Subgoals)
	for _, sg := range s.peaks(smoothed, params, goal) {
		result[sg] = s.initiationSet(sg, params)
	}
	return result
}

// centrality of every node: the share of all shortest paths (every
// ordered pair, trivial paths included) that contain it
func (s *Snapshot) centrality() []float64 {
	s.shortestPaths()
	n := len(s.coords)
	counts := make([]float64, n)
	total := 0.0
	for src := 0; src < n; src++ {
		for dst := 0; dst < n; dst++ {
			if s.dist[src][dst] < 0 {
				continue
			}
			total += 1
			for cur := dst; cur >= 0; cur = int(s.parent[src][cur]) {
				counts[cur] += 1
			}
		}
	}
	if total > 0 {
		for i := range counts {
			counts[i] /= total
		}
	}
	return counts
}

// Centrality by coordinate, for display
func (s *Snapshot) Centrality() map[grid.Coord]float64 {
	out := make(map[grid.Coord]float64, len(s.coords))
	for i, v := range s.centrality() {
		out[s.coords[i]] = v
	}
	return out
}

// peaks selects subgoals, the goal first. Every selected peak suppresses
// its ego network so one hill yields one subgoal.
func (s *Snapshot) peaks(values []float64, params Params, goal grid.Coord) []grid.Coord {
	suppressed := math.Inf(-1)
	values = append([]float64(nil), values...)
	peaks := []grid.Coord{goal}
	for {
		best := -1
		for i, v := range values {
			if best < 0 || v > values[best] {
				best = i
			}
		}
		if best < 0 || values[best] == suppressed || values[best] < params.CentralityThreshold {
			break
		}
		if s.coords[best] != goal {
			peaks = append(peaks, s.coords[best])
		}
		ego, _ := s.ego(best, params.SuppressionRadius)
		for _, j := range ego {
			values[j] = suppressed
		}
	}
	return peaks
}

// initiationSet collects the nodes that often lie on shortest paths ending
// at the subgoal. A subgoal outside the graph gets an empty set.
func (s *Snapshot) initiationSet(subgoal grid.Coord, params Params) []grid.Coord {
	g, ok := s.index[subgoal]
	if !ok {
		return []grid.Coord{}
	}
	s.shortestPaths()
	n := len(s.coords)
	occurrences := make([]float64, n)
	for src := 0; src < n; src++ {
		if src == g || s.dist[src][g] < 0 {
			continue
		}
		for cur := int(s.parent[src][g]); cur >= 0; cur = int(s.parent[src][cur]) {
			occurrences[cur] += 1
		}
	}
	occurrences = s.weightedMean(occurrences, params.SmoothingRadius)
	occurrences = s.weightedMean(occurrences, params.SmoothingRadius)

	mean := stat.Mean(occurrences, nil)
	members := make([]float64, n)
	for i, v := range occurrences {
		if v >= mean {
			members[i] = 1
		}
	}
	for pass := 0; pass < params.MedianPasses; pass++ {
		members = s.median(members, params.MedianRadius)
	}

	out := make([]grid.Coord, 0)
	for i, m := range members {
		if m > 0 && i != g {
			out = append(out, s.coords[i])
		}
	}
	return out
}
