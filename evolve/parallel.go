package evolve

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/fitness"
	"github.com/pthm-cable/hexflake/hex"
)

// workItem is one child to grow: a mixed rule table and a fresh seed grid.
// Everything random about it is drawn before evaluation starts.
type workItem struct {
	table automaton.Table
	seed  hex.Grid
}

// Candidate is an evaluated work item.
type Candidate struct {
	Table   automaton.Table
	Grid    hex.Grid
	Metrics fitness.Metrics
}

// Score is the candidate's fitness.
func (c Candidate) Score() float64 { return c.Metrics.Score }

// grow runs the automaton from the item's seed and scores the result.
// It touches nothing but its own inputs.
func grow(item workItem, s *Settings) Candidate {
	g := automaton.Run(item.seed, item.table, s.NumIterations)
	return Candidate{
		Table:   item.table,
		Grid:    g,
		Metrics: fitness.Evaluate(g, s.ScoreParams),
	}
}

// evaluateAll grows every item on a bounded goroutine pool. Result i always
// belongs to item i, whatever order the tasks finish in.
func evaluateAll(items []workItem, s *Settings) []Candidate {
	results := make([]Candidate, len(items))

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(items) <= 1 {
		for i := range items {
			results[i] = grow(items[i], s)
		}
		return results
	}

	p := pool.New().WithMaxGoroutines(workers)
	for i := range items {
		p.Go(func() {
			results[i] = grow(items[i], s)
		})
	}
	p.Wait()
	return results
}
