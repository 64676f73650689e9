package explore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zeu5/subgoal-rl/grid"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var ErrSnapshot = errors.New("could not snapshot exploration graph")

// Graph is the undirected connectivity graph of the cells the agent moved
// between. It is written by the learner and read by discovery through
// snapshots.
type Graph struct {
	lock   sync.RWMutex
	graph  *simple.UndirectedGraph
	ids    map[grid.Coord]int64
	coords map[int64]grid.Coord

	version atomic.Uint64
}

func NewGraph() *Graph {
	g := &Graph{}
	g.Reset()
	return g
}

func (g *Graph) Reset() {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.graph = simple.NewUndirectedGraph()
	g.ids = make(map[grid.Coord]int64)
	g.coords = make(map[int64]grid.Coord)
	g.version.Add(1)
}

func (g *Graph) node(c grid.Coord) graph.Node {
	id, ok := g.ids[c]
	if !ok {
		id = int64(len(g.ids))
		g.ids[c] = id
		g.coords[id] = c
	}
	return simple.Node(id)
}

// AddEdge connects a and b, returns false if the edge already existed
func (g *Graph) AddEdge(a, b grid.Coord) bool {
	if a == b {
		return false
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.hasEdge(a, b) {
		return false
	}
	g.graph.SetEdge(g.graph.NewEdge(g.node(a), g.node(b)))
	g.version.Add(1)
	return true
}

func (g *Graph) HasEdge(a, b grid.Coord) bool {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.hasEdge(a, b)
}

func (g *Graph) hasEdge(a, b grid.Coord) bool {
	x, ok := g.ids[a]
	if !ok {
		return false
	}
	y, ok := g.ids[b]
	if !ok {
		return false
	}
	return g.graph.HasEdgeBetween(x, y)
}

// Len is the number of nodes
func (g *Graph) Len() int {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.graph.Nodes().Len()
}

// Version changes every time the graph does
func (g *Graph) Version() uint64 {
	return g.version.Load()
}

// Edges lists every edge once, endpoints and edges in row major order
func (g *Graph) Edges() [][2]grid.Coord {
	g.lock.RLock()
	defer g.lock.RUnlock()
	out := make([][2]grid.Coord, 0)
	edges := g.graph.Edges()
	for edges.Next() {
		e := edges.Edge()
		a, b := g.coords[e.From().ID()], g.coords[e.To().ID()]
		if less(b, a) {
			a, b = b, a
		}
		out = append(out, [2]grid.Coord{a, b})
	}
	sortEdges(out)
	return out
}

// Snapshot copies the graph for discovery. The copy is never shared with
// the learner.
func (g *Graph) Snapshot() (*Snapshot, error) {
	dst, coords, err := g.copy()
	if err != nil {
		return nil, err
	}
	return newSnapshot(dst, coords), nil
}

func (g *Graph) copy() (dst *simple.UndirectedGraph, coords map[int64]grid.Coord, err error) {
	defer func() {
		if r := recover(); r != nil {
			dst, coords = nil, nil
			err = fmt.Errorf("%w: %v", ErrSnapshot, r)
		}
	}()
	g.lock.RLock()
	defer g.lock.RUnlock()

	dst = simple.NewUndirectedGraph()
	graph.Copy(dst, g.graph)
	coords = make(map[int64]grid.Coord, len(g.coords))
	for id, c := range g.coords {
		coords[id] = c
	}
	return dst, coords, nil
}

// FromLayout builds the full connectivity graph of a grid from its walls:
// every open direction whose neighbour lies inside the grid is an edge.
func FromLayout(gr *grid.Grid) *Graph {
	g := NewGraph()
	for _, cell := range gr.Cells() {
		for _, d := range cell.Actions() {
			n := cell.Coord.Move(d)
			if !gr.Contains(n) {
				continue
			}
			g.AddEdge(cell.Coord, n)
		}
	}
	return g
}
