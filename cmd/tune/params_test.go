package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/hexflake/config"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := []float64{0.35, 4, 0.3, 12}
	if n := pv.Normalize(raw); n[0] <= 0 || n[0] >= 1 {
		t.Errorf("in-range value normalized outside (0,1): %v", n[0])
	}
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestClamp(t *testing.T) {
	pv := NewParamVector()
	got := pv.Clamp([]float64{-1, 7.6, 2, 100})
	want := []float64{0.05, 8, 0.9, 40}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestApplyAndExtract(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	// The embedded defaults are a valid starting point
	start := pv.ExtractFromConfig(cfg)
	for i, v := range pv.Clamp(start) {
		if v != start[i] {
			t.Errorf("%s: default %v outside [%v, %v]", pv.Specs[i].Path, start[i], pv.Specs[i].Min, pv.Specs[i].Max)
		}
	}

	pv.ApplyToConfig(cfg, []float64{0.5, 3.4, 0.25, 20.5})
	if cfg.PrimordialSoupDensity != 0.5 || cfg.PrimordialSoupRadius != 3 ||
		cfg.StateTableDensity != 0.25 || cfg.NumIterations != 21 {
		t.Errorf("unexpected config after apply: %+v", cfg.Settings)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestEvaluateTracksBest(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.PopulationSize = 3
	cfg.NumChildren = 6
	cfg.NumStates = 2
	cfg.MaxGenerations = 2
	cfg.TriesPerGeneration = 2
	cfg.ScoreParams.MinDensity = 0
	cfg.ScoreParams.MaxDensity = 1
	cfg.ScoreParams.MinRadius = 0
	cfg.ScoreParams.MaxRadius = 50

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, []uint64{1, 2}, cfg)
	x := []float64{0.5, 3, 0.5, 3}

	f1 := fe.Evaluate(x)
	f2 := fe.Evaluate(x)
	if f1 != f2 {
		t.Errorf("evaluation not deterministic: %v vs %v", f1, f2)
	}
	if f1 > 0 {
		t.Errorf("fitness is a negated score, got %v", f1)
	}
	if f1 < 0 && fe.BestHallOfFame() == nil {
		t.Error("best hall of fame not tracked")
	}
	if cfg.NumIterations != 12 {
		t.Error("Evaluate modified the base config")
	}
}
