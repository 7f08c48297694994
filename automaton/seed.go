package automaton

import (
	"github.com/pthm-cable/hexflake/hex"
	"github.com/pthm-cable/hexflake/rng"
)

// RandomSeed builds a 6-fold symmetric starting grid. Each cell of one wedge
// is set with probability density, together with its mirror image, to a
// random state in 1..numStates-1; the wedge is then unioned with its five
// rotations.
func RandomSeed(src rng.Source, density float64, numStates, radius int) hex.Grid {
	visited := make(CellSet)
	wedge := make(hex.Grid)
	for c := range hex.TriRegion(radius) {
		if _, ok := visited[c]; ok {
			continue
		}
		flipped := hex.FlipHorizontal(c)
		if src.Chance(density) {
			state := 1 + src.Intn(numStates-1)
			wedge[c] = state
			wedge[flipped] = state
		}
		visited[c] = struct{}{}
		visited[flipped] = struct{}{}
	}

	out := make(hex.Grid, len(wedge)*6)
	for n := 0; n < 6; n++ {
		out = hex.Union(out, hex.RotateGrid(wedge, n))
	}
	return out
}
