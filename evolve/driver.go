// Package evolve runs the generational search over automaton rule tables.
//
// Each generation draws its children sequentially from one random source,
// grows and scores them in parallel, keeps the best population_sz of them and
// accepts the generation only if the survivors' mean score beats the previous
// generation's. A generation that cannot improve within its try budget ends
// the run.
package evolve

import (
	"cmp"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/fitness"
	"github.com/pthm-cable/hexflake/hex"
	"github.com/pthm-cable/hexflake/rng"
)

// Options holds optional hooks and inputs for a run.
type Options struct {
	// OnGeneration is called once per generation, after its last try.
	OnGeneration func(Report)
	// InitialPopulation seeds the first generation instead of random tables.
	// Tables with the wrong state count are skipped; a short list is topped
	// up with random tables.
	InitialPopulation []automaton.Table
}

// Driver runs one search.
type Driver struct {
	settings Settings
	src      rng.Source
	opts     Options
}

// Result is the outcome of a run.
type Result struct {
	// Snowflakes are the top num_output_snowflakes grids of the last
	// accepted generation, best first. Empty if no generation was accepted.
	Snowflakes []hex.Grid
	// Survivors is the last accepted generation, best first.
	Survivors []Candidate
	// Generations counts accepted generations.
	Generations int
	// MeanScore is the survivors' mean score.
	MeanScore float64
}

// New creates a driver. src is used from the calling goroutine only.
func New(settings Settings, src rng.Source, opts Options) *Driver {
	return &Driver{settings: settings, src: src, opts: opts}
}

// GrowSnowflakes runs a search with default options and returns the grids.
func GrowSnowflakes(settings Settings, src rng.Source) []hex.Grid {
	return New(settings, src, Options{}).Run().Snowflakes
}

// Run executes the search until the generation budget is spent or a
// generation fails to improve.
func (d *Driver) Run() Result {
	s := &d.settings
	population := d.initialPopulation()

	var res Result
	lastMean := 0.0
	for gen := 1; gen <= s.MaxGenerations; gen++ {
		survivors, report := d.nextGeneration(gen, population, lastMean)
		if d.opts.OnGeneration != nil {
			d.opts.OnGeneration(report)
		}
		if !report.Improved {
			break
		}

		res.Survivors = survivors
		res.Generations = gen
		res.MeanScore = report.MeanScore
		lastMean = report.MeanScore

		population = make([]automaton.Table, len(survivors))
		for i, c := range survivors {
			population[i] = c.Table
		}
	}

	n := min(s.NumOutputSnowflakes, len(res.Survivors))
	res.Snowflakes = make([]hex.Grid, 0, n)
	for _, c := range res.Survivors[:n] {
		res.Snowflakes = append(res.Snowflakes, c.Grid)
	}
	return res
}

// initialPopulation returns population_sz tables, reusing any supplied ones.
func (d *Driver) initialPopulation() []automaton.Table {
	s := &d.settings
	population := make([]automaton.Table, 0, s.PopulationSize)
	for _, t := range d.opts.InitialPopulation {
		if len(population) == s.PopulationSize {
			break
		}
		if t.NumStates() != s.NumStates || t.Validate() != nil {
			continue
		}
		population = append(population, t.Clone())
	}
	for len(population) < s.PopulationSize {
		population = append(population, automaton.RandomTable(d.src, s.StateTableDensity, s.NumStates))
	}
	return population
}

// nextGeneration tries up to tries_per_generation batches of children and
// returns the first batch of survivors whose mean beats lastMean.
func (d *Driver) nextGeneration(gen int, population []automaton.Table, lastMean float64) ([]Candidate, Report) {
	s := &d.settings
	report := Report{Generation: gen, PrevMean: lastMean}

	var survivors []Candidate
	for report.Tries < s.TriesPerGeneration {
		report.Tries++

		start := time.Now()
		items := d.drawChildren(population)
		report.SetupTime += time.Since(start)

		start = time.Now()
		candidates := evaluateAll(items, s)
		report.EvalTime += time.Since(start)

		survivors = rank(candidates, s.PopulationSize)
		report.fill(candidates, survivors)
		if report.MeanScore > lastMean {
			report.Improved = true
			return survivors, report
		}
	}
	return nil, report
}

// drawChildren makes every random draw for one batch, in a fixed order:
// first parent, second parent, table mix, seed grid.
func (d *Driver) drawChildren(population []automaton.Table) []workItem {
	s := &d.settings
	items := make([]workItem, s.NumChildren)
	for i := range items {
		a := rng.Element(d.src, population)
		b := rng.Element(d.src, population)
		items[i] = workItem{
			table: automaton.Mix(d.src, a, b),
			seed:  automaton.RandomSeed(d.src, s.PrimordialSoupDensity, s.NumStates, s.PrimordialSoupRadius),
		}
	}
	return items
}

// rank sorts candidates best first and keeps at most size of them. Ties keep
// their draw order.
func rank(candidates []Candidate, size int) []Candidate {
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Score(), a.Score())
	})
	return candidates[:min(size, len(candidates))]
}

// MeanScore is the average score of cs, 0 when empty.
func MeanScore(cs []Candidate) float64 {
	if len(cs) == 0 {
		return 0
	}
	return stat.Mean(scores(cs), nil)
}

func scores(cs []Candidate) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Score()
	}
	return out
}

// rejectCounts tallies why candidates scored zero.
func rejectCounts(cs []Candidate) map[fitness.Reject]int {
	counts := make(map[fitness.Reject]int)
	for _, c := range cs {
		counts[c.Metrics.Reject]++
	}
	return counts
}
