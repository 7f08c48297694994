package evolve

import (
	"testing"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/fitness"
	"github.com/pthm-cable/hexflake/hex"
	"github.com/pthm-cable/hexflake/rng"
)

func permissiveParams() fitness.Params {
	return fitness.Params{
		ConnectednessWeight: 1,
		AirinessWeight:      1,
		SpikinessWeight:     1,
		CragginessWeight:    1,
		MinDensity:          0,
		MaxDensity:          1,
		MinRadius:           0,
		MaxRadius:           50,
	}
}

func smallSettings() Settings {
	return Settings{
		PopulationSize:        4,
		NumChildren:           4,
		NumStates:             2,
		PrimordialSoupDensity: 0.5,
		PrimordialSoupRadius:  4,
		StateTableDensity:     0.5,
		MaxGenerations:        1,
		TriesPerGeneration:    1,
		NumIterations:         1,
		NumOutputSnowflakes:   4,
		ScoreParams:           permissiveParams(),
	}
}

// growAll is a table that turns every active cell on.
func growAll(numStates int) automaton.Table {
	t := automaton.NewTable(numStates)
	for row := range t {
		for col := range t[row] {
			t[row][col] = 1
		}
	}
	return t
}

func sameResult(t *testing.T, a, b Result) {
	t.Helper()
	if a.Generations != b.Generations || a.MeanScore != b.MeanScore {
		t.Fatalf("runs diverged: generations %d/%d mean %v/%v", a.Generations, b.Generations, a.MeanScore, b.MeanScore)
	}
	if len(a.Snowflakes) != len(b.Snowflakes) {
		t.Fatalf("snowflake counts differ: %d vs %d", len(a.Snowflakes), len(b.Snowflakes))
	}
	for i := range a.Snowflakes {
		if !hex.Equal(a.Snowflakes[i], b.Snowflakes[i]) {
			t.Fatalf("snowflake %d differs", i)
		}
	}
	for i := range a.Survivors {
		if a.Survivors[i].Score() != b.Survivors[i].Score() {
			t.Fatalf("survivor %d score differs", i)
		}
	}
}

func TestRunReproducible(t *testing.T) {
	s := smallSettings()
	first := New(s, rng.New(1234), Options{}).Run()
	second := New(s, rng.New(1234), Options{}).Run()
	sameResult(t, first, second)
}

func TestRunIndependentOfWorkerCount(t *testing.T) {
	s := smallSettings()
	s.NumChildren = 12
	s.MaxGenerations = 3
	s.TriesPerGeneration = 3
	s.NumIterations = 3

	s.Workers = 1
	serial := New(s, rng.New(77), Options{}).Run()
	s.Workers = 8
	parallel := New(s, rng.New(77), Options{}).Run()
	sameResult(t, serial, parallel)
}

func TestMeanNeverDrops(t *testing.T) {
	s := smallSettings()
	s.NumChildren = 10
	s.MaxGenerations = 8
	s.TriesPerGeneration = 4
	s.NumIterations = 2

	var reports []Report
	res := New(s, rng.New(5), Options{
		OnGeneration: func(r Report) { reports = append(reports, r) },
	}).Run()

	last := 0.0
	for _, r := range reports {
		if r.PrevMean != last {
			t.Fatalf("generation %d prev mean %v, want %v", r.Generation, r.PrevMean, last)
		}
		if r.Tries < 1 || r.Tries > s.TriesPerGeneration {
			t.Fatalf("generation %d used %d tries", r.Generation, r.Tries)
		}
		if !r.Improved {
			if r.Tries != s.TriesPerGeneration {
				t.Errorf("generation %d gave up after %d of %d tries", r.Generation, r.Tries, s.TriesPerGeneration)
			}
			break
		}
		if r.MeanScore <= last {
			t.Fatalf("accepted generation %d mean %v not above %v", r.Generation, r.MeanScore, last)
		}
		last = r.MeanScore
	}
	if res.MeanScore != last {
		t.Errorf("result mean %v, want last accepted %v", res.MeanScore, last)
	}
	if len(reports) > s.MaxGenerations {
		t.Errorf("%d reports for %d generations", len(reports), s.MaxGenerations)
	}
}

func TestNoImprovementReturnsEmpty(t *testing.T) {
	s := smallSettings()
	s.TriesPerGeneration = 3
	s.MaxGenerations = 5
	s.ScoreParams.MinRadius = 100 // nothing can grow this large

	var reports []Report
	res := New(s, rng.New(9), Options{
		OnGeneration: func(r Report) { reports = append(reports, r) },
	}).Run()

	if len(res.Snowflakes) != 0 || res.Generations != 0 || len(res.Survivors) != 0 {
		t.Fatalf("expected empty result, got %d snowflakes over %d generations", len(res.Snowflakes), res.Generations)
	}
	if len(reports) != 1 {
		t.Fatalf("expected the run to stop after one generation, got %d reports", len(reports))
	}
	r := reports[0]
	if r.Improved || r.Tries != 3 {
		t.Errorf("report = improved %v tries %d", r.Improved, r.Tries)
	}
	rejected := r.Rejections[fitness.RejectRadius] + r.Rejections[fitness.RejectDisconnected] + r.Rejections[fitness.RejectEmpty]
	if rejected != r.Children {
		t.Errorf("every child should be rejected: %v of %d", r.Rejections, r.Children)
	}
}

func TestDeadTablesNeverImprove(t *testing.T) {
	s := smallSettings()
	s.TriesPerGeneration = 2
	s.MaxGenerations = 3

	// All-zero tables kill every cell in one step; children mix only
	// parent values, so every grid ends empty.
	dead := make([]automaton.Table, s.PopulationSize)
	for i := range dead {
		dead[i] = automaton.NewTable(s.NumStates)
	}

	var reports []Report
	res := New(s, rng.New(4), Options{
		InitialPopulation: dead,
		OnGeneration:      func(r Report) { reports = append(reports, r) },
	}).Run()

	if res.Generations != 0 || len(res.Snowflakes) != 0 {
		t.Fatalf("empty grids were accepted: %d generations, %d snowflakes", res.Generations, len(res.Snowflakes))
	}
	if len(reports) != 1 {
		t.Fatalf("expected one failed generation, got %d reports", len(reports))
	}
	if r := reports[0]; r.Rejections[fitness.RejectEmpty] != r.Children || r.MeanScore != 0 {
		t.Errorf("every child should be rejected as empty: %v of %d, mean %v", r.Rejections, r.Children, r.MeanScore)
	}
}

func TestInitialPopulationGrows(t *testing.T) {
	s := smallSettings()
	s.NumOutputSnowflakes = 2
	s.NumIterations = 3
	res := New(s, rng.New(3), Options{
		InitialPopulation: []automaton.Table{growAll(2), growAll(3), growAll(2), growAll(2), growAll(2)},
	}).Run()

	if res.Generations != 1 {
		t.Fatalf("expected the first generation to be accepted, got %d", res.Generations)
	}
	if len(res.Snowflakes) != 2 {
		t.Fatalf("expected 2 snowflakes, got %d", len(res.Snowflakes))
	}
	for i, c := range res.Survivors {
		if i > 0 && c.Score() > res.Survivors[i-1].Score() {
			t.Fatalf("survivors not sorted at %d", i)
		}
	}
}

func TestInitialPopulationFiltersAndFills(t *testing.T) {
	s := smallSettings()
	d := New(s, rng.New(1), Options{
		InitialPopulation: []automaton.Table{growAll(3), growAll(2)},
	})
	pop := d.initialPopulation()
	if len(pop) != s.PopulationSize {
		t.Fatalf("population size %d, want %d", len(pop), s.PopulationSize)
	}
	for _, tbl := range pop {
		if tbl.NumStates() != s.NumStates {
			t.Fatalf("table with %d states slipped in", tbl.NumStates())
		}
	}
	if pop[0].At(1, 3) != 1 {
		t.Error("supplied table should come first")
	}
}

func TestRankStableAndTruncated(t *testing.T) {
	mk := func(score float64, id int) Candidate {
		return Candidate{
			Grid:    hex.Grid{{X: id, Y: -id, Z: 0}: 1},
			Metrics: fitness.Metrics{Score: score},
		}
	}
	cands := []Candidate{mk(1, 0), mk(3, 1), mk(1, 2), mk(2, 3), mk(3, 4)}
	got := rank(cands, 4)
	wantIDs := []int{1, 4, 3, 0}
	if len(got) != 4 {
		t.Fatalf("rank kept %d", len(got))
	}
	for i, id := range wantIDs {
		if _, ok := got[i].Grid[hex.Coord{X: id, Y: -id, Z: 0}]; !ok {
			t.Errorf("position %d holds the wrong candidate", i)
		}
	}
}

func TestMeanScore(t *testing.T) {
	if MeanScore(nil) != 0 {
		t.Error("mean of nothing should be 0")
	}
	cs := []Candidate{
		{Metrics: fitness.Metrics{Score: 1}},
		{Metrics: fitness.Metrics{Score: 2}},
		{Metrics: fitness.Metrics{Score: 6}},
	}
	if m := MeanScore(cs); m != 3 {
		t.Errorf("MeanScore = %v, want 3", m)
	}
}

func TestGrowSnowflakes(t *testing.T) {
	s := smallSettings()
	s.NumOutputSnowflakes = 1
	a := GrowSnowflakes(s, rng.New(42))
	b := GrowSnowflakes(s, rng.New(42))
	if len(a) > 1 {
		t.Fatalf("asked for one snowflake, got %d", len(a))
	}
	if len(a) != len(b) || (len(a) == 1 && !hex.Equal(a[0], b[0])) {
		t.Fatal("GrowSnowflakes is not reproducible")
	}
}
