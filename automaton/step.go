package automaton

import "github.com/pthm-cable/hexflake/hex"

// CellSet is an unordered set of coordinates.
type CellSet map[hex.Coord]struct{}

// ActiveCells returns every live cell plus its six direct neighbors: the only
// cells whose next state can be nonzero.
func ActiveCells(g hex.Grid) CellSet {
	active := make(CellSet, len(g)*4)
	for c := range g {
		active[c] = struct{}{}
		for n := range hex.Neighbors(c, false) {
			active[n] = struct{}{}
		}
	}
	return active
}

// StateAt returns the state of c, 0 when absent.
func StateAt(g hex.Grid, c hex.Coord) int {
	return g[c]
}

// NeighborSum adds up the states of the six direct neighbors of c.
func NeighborSum(g hex.Grid, c hex.Coord) int {
	sum := 0
	for n := range hex.Neighbors(c, false) {
		sum += g[n]
	}
	return sum
}

// NeighborCount counts the live direct neighbors of c.
func NeighborCount(g hex.Grid, c hex.Coord) int {
	count := 0
	for n := range hex.Neighbors(c, false) {
		if _, ok := g[n]; ok {
			count++
		}
	}
	return count
}

// Step advances g by one generation. g is only read; the result is a new grid.
func Step(g hex.Grid, t Table) hex.Grid {
	next := make(hex.Grid, len(g))
	for c := range ActiveCells(g) {
		state := t.At(StateAt(g, c), NeighborSum(g, c))
		if state > 0 {
			next[c] = state
		}
	}
	return next
}
