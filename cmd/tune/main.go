// Package main tunes seed and rule-table parameters with CMA-ES so the
// search grows higher-scoring snowflakes.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/hexflake/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Each evaluation runs whole searches; only their warnings are useful here.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := baseCfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	params := NewParamVector()
	evalSeeds := make([]uint64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = uint64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, evalSeeds, baseCfg)

	tl, err := newTuneLog(filepath.Join(*outputDir, "tune_log.csv"), *maxEvals)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer tl.Close()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			used := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(used)
			tl.record(fitness, evaluator.LastGenerations(), used)
			return fitness
		},
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	fmt.Printf("Tuning %d parameters: population=%d, max_evals=%d, seeds=%d, generations=%d\n",
		params.Dim(), popSize, *maxEvals, *seeds, baseCfg.MaxGenerations)

	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))
	result, err := optimize.Minimize(problem, initX, &optimize.Settings{FuncEvaluations: *maxEvals}, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := tl.bestParams
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nDone: %d evaluations in %s, best mean score %.4f\n",
		tl.evals, formatDuration(time.Since(tl.start)), -tl.bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %-14s %-24s %.6f\n", spec.Name, spec.Path, best[i])
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, best)
	if err := bestCfg.WriteYAML(filepath.Join(*outputDir, "best_config.yaml")); err != nil {
		log.Printf("failed to write best config: %v", err)
	}

	if hof := evaluator.BestHallOfFame(); hof != nil {
		data, err := hof.MarshalJSON()
		if err == nil {
			err = os.WriteFile(filepath.Join(*outputDir, "hall_of_fame.json"), data, 0644)
		}
		if err != nil {
			log.Printf("failed to write hall of fame: %v", err)
		}
	}
}

// evalRecord is one row of tune_log.csv, holding the clamped parameter
// values the searches actually ran with.
type evalRecord struct {
	Eval         int     `csv:"eval"`
	Fitness      float64 `csv:"fitness"`
	Generations  float64 `csv:"generations_mean"`
	SoupDensity  float64 `csv:"primordial_soup_density"`
	SoupRadius   int     `csv:"primordial_soup_radius"`
	TableDensity float64 `csv:"state_table_density"`
	Iterations   int     `csv:"num_iterations"`
}

// tuneLog records every evaluation to CSV and stdout and remembers the best.
// CMA-ES here evaluates sequentially, so it needs no locking.
type tuneLog struct {
	f             *os.File
	headerWritten bool

	maxEvals    int
	evals       int
	start       time.Time
	bestFitness float64
	bestParams  []float64
}

func newTuneLog(path string, maxEvals int) (*tuneLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &tuneLog{f: f, maxEvals: maxEvals, start: time.Now(), bestFitness: 1e9}, nil
}

func (tl *tuneLog) record(fitness, generations float64, used []float64) {
	tl.evals++
	if fitness < tl.bestFitness {
		tl.bestFitness = fitness
		tl.bestParams = used
	}

	rows := []evalRecord{{
		Eval:         tl.evals,
		Fitness:      fitness,
		Generations:  generations,
		SoupDensity:  used[0],
		SoupRadius:   int(used[1]),
		TableDensity: used[2],
		Iterations:   int(used[3]),
	}}
	var err error
	if tl.headerWritten {
		err = gocsv.MarshalWithoutHeaders(rows, tl.f)
	} else {
		err = gocsv.Marshal(rows, tl.f)
		tl.headerWritten = err == nil
	}
	if err != nil {
		log.Printf("failed to write log row: %v", err)
	}

	elapsed := time.Since(tl.start)
	eta := time.Duration(tl.maxEvals-tl.evals) * (elapsed / time.Duration(tl.evals))
	fmt.Printf("eval %d/%d: score=%.4f generations=%.1f best=%.4f | %s elapsed, ETA %s\n",
		tl.evals, tl.maxEvals, -fitness, generations, -tl.bestFitness,
		formatDuration(elapsed), formatDuration(eta))
}

func (tl *tuneLog) Close() error {
	return tl.f.Close()
}

// formatDuration formats d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
