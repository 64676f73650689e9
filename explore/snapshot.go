package explore

import (
	"github.com/zeu5/subgoal-rl/grid"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Snapshot is a private copy of the exploration graph. Nodes are indexed
// in row major order of their coordinates and neighbours are visited in
// the same order, so shortest paths are deterministic.
type Snapshot struct {
	graph  *simple.UndirectedGraph
	byID   map[int64]grid.Coord
	coords []grid.Coord
	index  map[grid.Coord]int
	adj    [][]int

	// all pairs BFS results, row per source, -1 when unreachable
	dist   [][]int32
	parent [][]int32
}

func newSnapshot(g *simple.UndirectedGraph, byID map[int64]grid.Coord) *Snapshot {
	nodes := graph.NodesOf(g.Nodes())
	s := &Snapshot{
		graph:  g,
		byID:   byID,
		coords: make([]grid.Coord, len(nodes)),
		index:  make(map[grid.Coord]int, len(nodes)),
		adj:    make([][]int, len(nodes)),
	}
	for i, n := range nodes {
		s.coords[i] = byID[n.ID()]
	}
	sortCoords(s.coords)
	ids := make([]int64, len(s.coords))
	for i, c := range s.coords {
		s.index[c] = i
	}
	for _, n := range nodes {
		ids[s.index[byID[n.ID()]]] = n.ID()
	}
	for i, id := range ids {
		neighbours := graph.NodesOf(g.From(id))
		s.adj[i] = make([]int, len(neighbours))
		for j, n := range neighbours {
			s.adj[i][j] = s.index[byID[n.ID()]]
		}
		slices.Sort(s.adj[i])
	}
	return s
}

// Len is the number of nodes
func (s *Snapshot) Len() int {
	return len(s.coords)
}

func (s *Snapshot) Coords() []grid.Coord {
	out := make([]grid.Coord, len(s.coords))
	copy(out, s.coords)
	return out
}

func (s *Snapshot) Contains(c grid.Coord) bool {
	_, ok := s.index[c]
	return ok
}

// Graph exposes the copied gonum graph, coordinates via CoordOf
func (s *Snapshot) Graph() graph.Undirected {
	return s.graph
}

func (s *Snapshot) CoordOf(id int64) (grid.Coord, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *Snapshot) shortestPaths() {
	if s.dist != nil {
		return
	}
	n := len(s.coords)
	s.dist = make([][]int32, n)
	s.parent = make([][]int32, n)
	queue := make([]int, 0, n)
	for src := 0; src < n; src++ {
		dist := make([]int32, n)
		parent := make([]int32, n)
		for i := range dist {
			dist[i] = -1
			parent[i] = -1
		}
		dist[src] = 0
		queue = append(queue[:0], src)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range s.adj[cur] {
				if dist[next] >= 0 {
					continue
				}
				dist[next] = dist[cur] + 1
				parent[next] = int32(cur)
				queue = append(queue, next)
			}
		}
		s.dist[src] = dist
		s.parent[src] = parent
	}
}

// Distance in hops between two nodes
func (s *Snapshot) Distance(a, b grid.Coord) (int, bool) {
	i, ok := s.index[a]
	if !ok {
		return 0, false
	}
	j, ok := s.index[b]
	if !ok {
		return 0, false
	}
	s.shortestPaths()
	d := s.dist[i][j]
	return int(d), d >= 0
}

// Path is the shortest path from a to b used by discovery, both ends
// included. Nil when b is unreachable.
func (s *Snapshot) Path(a, b grid.Coord) []grid.Coord {
	i, ok := s.index[a]
	if !ok {
		return nil
	}
	j, ok := s.index[b]
	if !ok {
		return nil
	}
	s.shortestPaths()
	if s.dist[i][j] < 0 {
		return nil
	}
	path := make([]grid.Coord, s.dist[i][j]+1)
	for k, cur := len(path)-1, j; k >= 0; k-- {
		path[k] = s.coords[cur]
		cur = int(s.parent[i][cur])
	}
	return path
}

// ego returns the nodes within radius hops of i, i included, with their
// distance
func (s *Snapshot) ego(i, radius int) ([]int, []int32) {
	s.shortestPaths()
	nodes := make([]int, 0)
	dists := make([]int32, 0)
	for j, d := range s.dist[i] {
		if d >= 0 && int(d) <= radius {
			nodes = append(nodes, j)
			dists = append(dists, d)
		}
	}
	return nodes, dists
}
