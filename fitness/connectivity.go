package fitness

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/pthm-cable/hexflake/hex"
)

// Connected reports whether every cell is reachable from every other through
// cells of the set, stepping to direct neighbors (or also to diagonal cells
// when withDiagonals is set). An empty set is connected.
func Connected(cells []hex.Coord, withDiagonals bool) bool {
	if len(cells) <= 1 {
		return true
	}
	return len(components(cells, withDiagonals)) == 1
}

// components groups cells into adjacency-connected components.
func components(cells []hex.Coord, withDiagonals bool) [][]hex.Coord {
	ids := make(map[hex.Coord]int64, len(cells))
	g := simple.NewUndirectedGraph()
	for i, c := range cells {
		if _, dup := ids[c]; dup {
			continue
		}
		ids[c] = int64(i)
		g.AddNode(simple.Node(i))
	}

	for c, id := range ids {
		for n := range hex.Neighbors(c, withDiagonals) {
			nid, ok := ids[n]
			if !ok || nid <= id {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(nid)})
		}
	}

	comps := topo.ConnectedComponents(g)
	out := make([][]hex.Coord, len(comps))
	for i, comp := range comps {
		out[i] = make([]hex.Coord, len(comp))
		for j, node := range comp {
			out[i][j] = cells[node.ID()]
		}
	}
	return out
}
