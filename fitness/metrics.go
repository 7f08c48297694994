package fitness

import (
	"math"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/hex"
)

// ConnectedByDiagonalsScore is the connectedness credit for a grid that only
// holds together through diagonal cells.
const ConnectedByDiagonalsScore = 0.5

// Connectedness returns 1 for a grid connected through direct neighbors,
// ConnectedByDiagonalsScore when diagonal steps are needed, 0 otherwise.
func Connectedness(g hex.Grid) float64 {
	cells := hex.Keys(g)
	if Connected(cells, false) {
		return 1.0
	}
	if Connected(cells, true) {
		return ConnectedByDiagonalsScore
	}
	return 0.0
}

// Airiness is the fraction of HexRegion(radius) that is empty.
func Airiness(g hex.Grid, radius int) float64 {
	total, air := 0, 0
	for c := range hex.HexRegion(radius) {
		total++
		if _, ok := g[c]; !ok {
			air++
		}
	}
	return float64(air) / float64(total)
}

// Cragginess is the share of peripheral cells (empty cells touching the
// grid) that have at least 3 live neighbors forming one connected piece.
// A grid with no periphery scores 0.
func Cragginess(g hex.Grid) float64 {
	periphery, craggy := 0, 0
	for c := range automaton.ActiveCells(g) {
		if _, live := g[c]; live {
			continue
		}
		periphery++
		if automaton.NeighborCount(g, c) < 3 {
			continue
		}
		live := make([]hex.Coord, 0, automaton.NumNeighbors)
		for n := range hex.Neighbors(c, false) {
			if _, ok := g[n]; ok {
				live = append(live, n)
			}
		}
		if Connected(live, false) {
			craggy++
		}
	}
	if periphery == 0 {
		return 0
	}
	return float64(craggy) / float64(periphery)
}

// Spikiness averages an edge-proximity score over the live cells of one
// wedge. Cells on either bounding edge of the wedge (the arms of the flake)
// score 1; the score falls off quadratically to 0 midway between them.
func Spikiness(g hex.Grid, radius int) float64 {
	alive := 0
	proximity := 0.0
	for c := range hex.TriRegion(radius) {
		if _, ok := g[c]; !ok {
			continue
		}
		row := -c.Y
		p := 1.0
		if row > 0 {
			maxDist := float64(row) / 2.0
			dist := float64(min(abs(c.X), abs(c.X-row)))
			p = 1.0 - math.Pow(dist/maxDist, 2.0)
		}
		proximity += p
		alive++
	}
	if alive == 0 {
		return 0
	}
	return proximity / float64(alive)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
