package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/hexflake/config"
	"github.com/pthm-cable/hexflake/evolve"
	"github.com/pthm-cable/hexflake/hex"
	"github.com/pthm-cable/hexflake/rng"
	"github.com/pthm-cable/hexflake/telemetry"
)

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.PopulationSize = 4
	cfg.NumChildren = 8
	cfg.NumStates = 2
	cfg.PrimordialSoupDensity = 0.5
	cfg.PrimordialSoupRadius = 3
	cfg.StateTableDensity = 0.5
	cfg.MaxGenerations = 4
	cfg.TriesPerGeneration = 2
	cfg.NumIterations = 2
	cfg.NumOutputSnowflakes = 2
	cfg.ScoreParams.MinDensity = 0
	cfg.ScoreParams.MaxDensity = 1
	cfg.ScoreParams.MinRadius = 0
	cfg.ScoreParams.MaxRadius = 50
	cfg.Telemetry.HallOfFameSize = 5
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestRunMatchesDriver(t *testing.T) {
	cfg := smallConfig(t)

	var stats []telemetry.GenerationStats
	s, err := New(Options{
		Config:        cfg,
		Seed:          21,
		StatsCallback: func(gs telemetry.GenerationStats) { stats = append(stats, gs) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, err := s.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := evolve.New(cfg.Settings, rng.New(21), evolve.Options{}).Run()

	if got.Generations != want.Generations || got.MeanScore != want.MeanScore {
		t.Fatalf("session diverged from driver: %d/%v vs %d/%v",
			got.Generations, got.MeanScore, want.Generations, want.MeanScore)
	}
	for i := range want.Snowflakes {
		if !hex.Equal(got.Snowflakes[i], want.Snowflakes[i]) {
			t.Fatalf("snowflake %d differs", i)
		}
	}

	if len(stats) == 0 || stats[0].Generation != 1 {
		t.Fatalf("stats callback not called per generation: %d calls", len(stats))
	}
	if got.Generations > 0 && s.HallOfFame().Size() == 0 {
		t.Error("accepted generations should feed the hall of fame")
	}
}

func TestRunWritesOutputs(t *testing.T) {
	cfg := smallConfig(t)
	dir := filepath.Join(t.TempDir(), "out")

	s, err := New(Options{Config: cfg, Seed: 5, OutputDir: dir, LogStats: true})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"config.yaml", "generations.csv", "perf.csv", "bookmarks.csv", "hall_of_fame.json", "snowflakes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}

	if res.Generations > 0 {
		path := filepath.Join(dir, "snapshots", fmt.Sprintf("snapshot_gen%d.json", res.Generations))
		snap, err := telemetry.LoadSnapshot(path)
		if err != nil {
			t.Fatalf("final snapshot: %v", err)
		}
		if snap.RNGSeed != 5 || len(snap.Survivors) != len(res.Survivors) {
			t.Errorf("snapshot does not describe the run: %+v", snap)
		}
	}

	if _, err := telemetry.LoadHallOfFameFromFile(filepath.Join(dir, "hall_of_fame.json")); err != nil {
		t.Errorf("hall of fame does not reload: %v", err)
	}
}

func TestResumeFromHallOfFame(t *testing.T) {
	cfg := smallConfig(t)

	first, err := New(Options{Config: cfg, Seed: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Run(); err != nil {
		t.Fatal(err)
	}
	tables := first.HallOfFame().Tables(cfg.NumStates)

	second, err := New(Options{Config: cfg, Seed: 9, InitialPopulation: tables})
	if err != nil {
		t.Fatal(err)
	}
	res, err := second.Run()
	if err != nil {
		t.Fatal(err)
	}
	want := evolve.New(cfg.Settings, rng.New(9), evolve.Options{InitialPopulation: tables}).Run()
	if res.MeanScore != want.MeanScore || res.Generations != want.Generations {
		t.Errorf("resumed run diverged from driver with the same population")
	}
}
