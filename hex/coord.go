// Package hex provides cube-coordinate geometry for hexagonal lattices.
// Coordinates are (x, y, z) triples with x+y+z = 0.
package hex

import "iter"

// Coord is a cell address in cube coordinates. X+Y+Z is always 0.
type Coord struct {
	X int
	Y int
	Z int
}

// Origin is the center cell.
var Origin = Coord{}

// directOffsets are the six adjacent cells, in the order neighbors are visited.
var directOffsets = [6]Coord{
	{+1, 0, -1}, {+1, -1, 0}, {0, -1, +1},
	{-1, 0, +1}, {-1, +1, 0}, {0, +1, -1},
}

// diagonalOffsets are the six cells two steps away between direct neighbors.
var diagonalOffsets = [6]Coord{
	{+2, -1, -1}, {+1, -2, +1}, {-1, -1, +2},
	{-2, +1, +1}, {-1, +2, -1}, {+1, +1, -2},
}

// Add returns a+b.
func (a Coord) Add(b Coord) Coord { return Coord{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b.
func (a Coord) Sub(b Coord) Coord { return Coord{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale multiplies each component by k.
func (a Coord) Scale(k int) Coord { return Coord{a.X * k, a.Y * k, a.Z * k} }

// Valid reports whether the zero-sum invariant holds.
func (a Coord) Valid() bool { return a.X+a.Y+a.Z == 0 }

// Rotate turns c about the origin by n sixths of a full turn.
// Odd turns negate every component; the components cycle by n mod 3.
func Rotate(c Coord, n int) Coord {
	n = ((n % 6) + 6) % 6
	sign := 1
	if n%2 == 1 {
		sign = -1
	}
	v := [3]int{c.X, c.Y, c.Z}
	return Coord{
		X: sign * v[(0+n)%3],
		Y: sign * v[(1+n)%3],
		Z: sign * v[(2+n)%3],
	}
}

// FlipHorizontal mirrors c across the vertical axis by swapping X and Z.
func FlipHorizontal(c Coord) Coord {
	return Coord{X: c.Z, Y: c.Y, Z: c.X}
}

// Distance returns the number of steps between a and b.
func Distance(a, b Coord) int {
	d := a.Sub(b)
	return (abs(d.X) + abs(d.Y) + abs(d.Z)) / 2
}

// Neighbors yields the 6 direct neighbors of c, followed by the 6 diagonal
// cells when withDiagonals is set. Order is fixed.
func Neighbors(c Coord, withDiagonals bool) iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for _, off := range directOffsets {
			if !yield(c.Add(off)) {
				return
			}
		}
		if !withDiagonals {
			return
		}
		for _, off := range diagonalOffsets {
			if !yield(c.Add(off)) {
				return
			}
		}
	}
}

// HexRegion yields every cell within radius of the origin.
func HexRegion(radius int) iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for x := -radius; x <= radius; x++ {
			for y := -radius; y <= radius; y++ {
				z := -x - y
				if z < -radius || z > radius {
					continue
				}
				if !yield(Coord{x, y, z}) {
					return
				}
			}
		}
	}
}

// TriRegion yields the cells of one triangular sixth of HexRegion(radius):
// 0 <= q <= radius, -radius <= r <= 0, q+r <= 0.
func TriRegion(radius int) iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for q := 0; q <= radius; q++ {
			for r := -radius; r <= 0; r++ {
				if q+r > 0 {
					continue
				}
				if !yield(Coord{q, r, -q - r}) {
					return
				}
			}
		}
	}
}

// RegionSize is the number of cells HexRegion(radius) yields.
func RegionSize(radius int) int {
	if radius < 0 {
		return 0
	}
	return 1 + 3*radius*(radius+1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
