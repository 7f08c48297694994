// Package automaton implements the hexagonal multi-state cellular automaton:
// rule tables, the step function and symmetric seed grids.
package automaton

import (
	"fmt"

	"github.com/pthm-cable/hexflake/hex"
	"github.com/pthm-cable/hexflake/rng"
)

// NumNeighbors is the number of direct neighbors summed by the step rule.
const NumNeighbors = 6

// Table maps (current state, sum of the six neighbor states) to the next
// state. Rows are indexed by state, columns by neighbor sum.
type Table [][]int

// MaxSum returns the largest neighbor sum reachable with numStates states.
func MaxSum(numStates int) int {
	return NumNeighbors * (numStates - 1)
}

// NewTable returns an all-zero table for numStates states.
func NewTable(numStates int) Table {
	if numStates < 1 {
		panic(fmt.Sprintf("automaton: table needs at least one state, got %d", numStates))
	}
	cols := MaxSum(numStates) + 1
	t := make(Table, numStates)
	for i := range t {
		t[i] = make([]int, cols)
	}
	return t
}

// RandomTable fills a table where each entry is 0 with probability
// 1-density and otherwise a uniform state in 1..numStates-1.
func RandomTable(src rng.Source, density float64, numStates int) Table {
	t := NewTable(numStates)
	for row := range t {
		for col := range t[row] {
			if src.Chance(1.0 - density) {
				continue
			}
			t[row][col] = 1 + src.Intn(numStates-1)
		}
	}
	return t
}

// Mix builds a child table taking each entry from a or b with equal
// probability. Both parents must have the same shape.
func Mix(src rng.Source, a, b Table) Table {
	if a.NumStates() != b.NumStates() {
		panic(fmt.Sprintf("automaton: mixing tables of %d and %d states", a.NumStates(), b.NumStates()))
	}
	child := NewTable(a.NumStates())
	for row := range child {
		for col := range child[row] {
			if src.Chance(0.5) {
				child[row][col] = a[row][col]
			} else {
				child[row][col] = b[row][col]
			}
		}
	}
	return child
}

// NumStates returns the number of rows.
func (t Table) NumStates() int { return len(t) }

// At returns the next state for a cell in state with the given neighbor sum.
func (t Table) At(state, sum int) int {
	if state < 0 || state >= len(t) || sum < 0 || sum >= len(t[state]) {
		panic(fmt.Sprintf("automaton: lookup (%d, %d) outside %dx%d table", state, sum, len(t), MaxSum(len(t))+1))
	}
	return t[state][sum]
}

// Set writes one entry.
func (t Table) Set(state, sum, next int) {
	t[state][sum] = next
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	c := make(Table, len(t))
	for i, row := range t {
		c[i] = append([]int(nil), row...)
	}
	return c
}

// Validate checks the table shape and that every entry is a valid state.
func (t Table) Validate() error {
	n := len(t)
	if n < 1 {
		return fmt.Errorf("table has no rows")
	}
	cols := MaxSum(n) + 1
	for row, r := range t {
		if len(r) != cols {
			return fmt.Errorf("row %d has %d columns, want %d", row, len(r), cols)
		}
		for col, v := range r {
			if v < 0 || v >= n {
				return fmt.Errorf("entry (%d, %d) = %d outside 0..%d", row, col, v, n-1)
			}
		}
	}
	return nil
}

// Run applies Step iterations times starting from seed.
func Run(seed hex.Grid, t Table, iterations int) hex.Grid {
	g := seed
	for i := 0; i < iterations; i++ {
		g = Step(g, t)
	}
	return g
}
