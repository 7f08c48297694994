package main

import (
	"math"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/hexflake/config"
	"github.com/pthm-cable/hexflake/session"
	"github.com/pthm-cable/hexflake/telemetry"
)

// FitnessEvaluator runs searches and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []uint64
	baseConfig *config.Config

	// Best run tracking
	mu              sync.Mutex
	bestFitness     float64
	bestHallOfFame  *telemetry.HallOfFame
	lastGenerations float64 // mean accepted generations from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastGenerations returns the mean accepted generations from the most
// recent evaluation.
func (fe *FitnessEvaluator) LastGenerations() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastGenerations
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	meanScore   float64
	generations int
	hallOfFame  *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated final mean score averaged over all seeds. A seed
// whose first generation never improves scores 0.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.configFor(x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	p := pool.New()
	for i, seed := range fe.seeds {
		p.Go(func() {
			results[i] = runSearch(cfg, seed)
		})
	}
	p.Wait()

	// Aggregate results
	var totalScore, totalGens float64
	bestSeedScore := math.Inf(-1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalScore += r.meanScore
		totalGens += float64(r.generations)
		if r.meanScore > bestSeedScore {
			bestSeedScore = r.meanScore
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	fitness := -totalScore / n

	// Update best tracking
	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastGenerations = totalGens / n
	fe.mu.Unlock()

	return fitness
}

// configFor returns a copy of the base config with x applied.
func (fe *FitnessEvaluator) configFor(x []float64) *config.Config {
	cfg := *fe.baseConfig
	cfg.Run.OutputDir = ""
	cfg.Telemetry.LogStats = false
	fe.params.ApplyToConfig(&cfg, x)
	return &cfg
}

// runSearch executes one search without file output.
func runSearch(cfg *config.Config, seed uint64) seedResult {
	s, err := session.New(session.Options{Config: cfg, Seed: seed})
	if err != nil {
		return seedResult{}
	}
	defer s.Close()

	res, _ := s.Run()
	return seedResult{
		meanScore:   res.MeanScore,
		generations: res.Generations,
		hallOfFame:  s.HallOfFame(),
	}
}
