package explore

import (
	"math"

	"golang.org/x/exp/slices"
)

// weightedMean smooths data over the ego network of every node.
//
// The sum weights the node's own value by 1/(1+d) for every neighbour at
// distance d instead of the neighbour's value, so the result is the node's
// value times a factor that only depends on the shape of its ego network.
// Whether the neighbour's value was intended is unclear, the formula is
// reproduced literally.
func (s *Snapshot) weightedMean(data []float64, radius int) []float64 {
	out := make([]float64, len(data))
	for i := range data {
		ego, dists := s.ego(i, radius)
		sum := 0.0
		for k := range ego {
			sum += data[i] / float64(1+dists[k])
		}
		out[i] = sum / float64(len(ego))
	}
	return out
}

// median replaces every value with the median of its ego network, rounded up
func (s *Snapshot) median(data []float64, radius int) []float64 {
	out := make([]float64, len(data))
	window := make([]float64, 0, len(data))
	for i := range data {
		ego, _ := s.ego(i, radius)
		window = window[:0]
		for _, j := range ego {
			window = append(window, data[j])
		}
		out[i] = math.Ceil(median(window))
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
