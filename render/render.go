// Package render draws hex grids as text.
//
// Each cell maps to square coordinates (x-z, x+z) and occupies two
// characters, an open and a close tile chosen by its state. Rows are printed
// top to bottom with a two-space indent.
package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/pthm-cable/hexflake/hex"
)

// MaxStates is the number of distinct tiles; higher states draw as the last one.
const MaxStates = 10

var (
	openTiles  = [MaxStates]byte{' ', '[', '(', '{', '<', 'o', 'O', '0', '*', '#'}
	closeTiles = [MaxStates]byte{' ', ']', ')', '}', '>', 'o', 'O', '0', '*', '#'}
)

const indent = "  "

type point struct{ x, y int }

func tiles(state int) (open, close byte) {
	if state < 0 {
		state = 0
	}
	if state >= MaxStates {
		state = MaxStates - 1
	}
	return openTiles[state], closeTiles[state]
}

// canvas projects g onto the square grid and returns the occupied
// characters with their bounds.
func canvas(g hex.Grid) (chars map[point]byte, lo, hi point) {
	chars = make(map[point]byte, 2*len(g))
	first := true
	for c, state := range g {
		open, close := tiles(state)
		p := point{c.X - c.Z, c.X + c.Z}
		chars[p] = open
		chars[point{p.x + 1, p.y}] = close

		if first {
			lo, hi = p, point{p.x + 1, p.y}
			first = false
			continue
		}
		lo.x = min(lo.x, p.x)
		lo.y = min(lo.y, p.y)
		hi.x = max(hi.x, p.x+1)
		hi.y = max(hi.y, p.y)
	}
	return chars, lo, hi
}

// Write renders g to w. An empty grid writes nothing.
func Write(w io.Writer, g hex.Grid) error {
	if len(g) == 0 {
		return nil
	}
	chars, lo, hi := canvas(g)

	bw := bufio.NewWriter(w)
	line := make([]byte, 0, hi.x-lo.x+1)
	for y := lo.y; y <= hi.y; y++ {
		line = line[:0]
		for x := lo.x; x <= hi.x; x++ {
			ch, ok := chars[point{x, y}]
			if !ok {
				ch = ' '
			}
			line = append(line, ch)
		}
		bw.WriteString(indent)
		bw.Write(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// String returns the rendering of g.
func String(g hex.Grid) string {
	var sb strings.Builder
	_ = Write(&sb, g)
	return sb.String()
}

// WriteAll renders each grid followed by a blank line.
func WriteAll(w io.Writer, grids []hex.Grid) error {
	for _, g := range grids {
		if err := Write(w, g); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
