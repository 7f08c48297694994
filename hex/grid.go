package hex

import (
	"maps"
	"slices"
)

// Grid maps live cells to their state (1..num_states-1).
// A missing key is state 0.
type Grid map[Coord]int

// Union merges g1 and g2 into a new grid. Where both hold a cell, g2 wins.
func Union(g1, g2 Grid) Grid {
	out := make(Grid, len(g1)+len(g2))
	maps.Copy(out, g1)
	maps.Copy(out, g2)
	return out
}

// RotateGrid rotates every cell of g by n sixths of a turn.
func RotateGrid(g Grid, n int) Grid {
	out := make(Grid, len(g))
	for c, v := range g {
		out[Rotate(c, n)] = v
	}
	return out
}

// FlipGrid mirrors every cell of g across the vertical axis.
func FlipGrid(g Grid) Grid {
	out := make(Grid, len(g))
	for c, v := range g {
		out[FlipHorizontal(c)] = v
	}
	return out
}

// Radius returns the largest distance from the origin to a live cell,
// or 0 for an empty grid.
func Radius(g Grid) int {
	r := 0
	for c := range g {
		if d := Distance(c, Origin); d > r {
			r = d
		}
	}
	return r
}

// Keys returns the live cells of g sorted by (X, Y). Map iteration order is
// random, so anything that must be reproducible walks Keys instead.
func Keys(g Grid) []Coord {
	keys := slices.Collect(maps.Keys(g))
	slices.SortFunc(keys, Compare)
	return keys
}

// Compare orders coordinates by X, then Y. Z follows from the invariant.
func Compare(a, b Coord) int {
	if a.X != b.X {
		return a.X - b.X
	}
	return a.Y - b.Y
}

// Equal reports whether a and b hold the same cells with the same states.
func Equal(a, b Grid) bool {
	return maps.Equal(a, b)
}
