package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/config"
	"github.com/pthm-cable/hexflake/render"
	"github.com/pthm-cable/hexflake/rng"
	"github.com/pthm-cable/hexflake/session"
	"github.com/pthm-cable/hexflake/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml or settings.json (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = config value, then time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, hall of fame and snapshots")
	logStats := flag.Bool("log-stats", false, "Output full generation stats as JSON via slog")
	resume := flag.String("resume", "", "Hall of fame or snapshot JSON to seed the first generation from")
	replay := flag.String("replay", "", "Snapshot JSON to render instead of running a search")
	quiet := flag.Bool("quiet", false, "Only log warnings and errors")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [settings.json [seed]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Positional form: settings file, then optional seed
	args := flag.Args()
	if len(args) > 2 {
		flag.Usage()
		os.Exit(2)
	}
	if len(args) >= 1 && *configPath == "" {
		*configPath = args[0]
	}
	if len(args) == 2 && *seed == 0 {
		v, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid seed %q: %v\n", args[1], err)
			os.Exit(2)
		}
		*seed = v
	}

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelWarn
	}
	setupLogger(*logStats, level)

	if *replay != "" {
		if err := replaySnapshot(*replay); err != nil {
			slog.Error("failed to replay snapshot", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI overrides config
	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if *outputDir != "" {
		cfg.Run.OutputDir = *outputDir
	}
	if *logStats {
		cfg.Telemetry.LogStats = true
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	rngSeed := cfg.Run.Seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	var initial []automaton.Table
	if *resume != "" {
		initial, err = resumePopulation(*resume, cfg, rngSeed)
		if err != nil {
			slog.Error("failed to load resume population", "error", err)
			os.Exit(1)
		}
	}

	s, err := session.New(session.Options{
		Config:            cfg,
		Seed:              rngSeed,
		LogStats:          cfg.Telemetry.LogStats,
		OutputDir:         cfg.Run.OutputDir,
		InitialPopulation: initial,
	})
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	res, runErr := s.Run()
	if err := s.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}

	if err := render.WriteAll(os.Stdout, res.Snowflakes); err != nil {
		slog.Error("failed to print snowflakes", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// setupLogger installs the default slog logger. Stats runs log JSON to
// stdout for piping; otherwise logs go to stderr so stdout holds only the
// rendered snowflakes.
func setupLogger(jsonStats bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if jsonStats {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// resumePopulation draws the first generation from a snapshot's survivors
// or from a hall of fame. A source no larger than the population is used
// whole; a larger hall is sampled by tournament.
func resumePopulation(path string, cfg *config.Config, seed uint64) ([]automaton.Table, error) {
	if snap, err := telemetry.LoadSnapshot(path); err == nil {
		tables, err := snap.Tables()
		if err != nil {
			return nil, err
		}
		slog.Info("resuming from snapshot",
			"path", path,
			"generation", snap.Generation,
			"mean_score", snap.MeanScore,
			"tables", len(tables),
		)
		return tables, nil
	}

	hof, err := telemetry.LoadHallOfFameFromFile(path)
	if err != nil {
		return nil, err
	}

	tables := hof.Tables(cfg.NumStates)
	if len(tables) > cfg.PopulationSize {
		tables = hof.SamplePopulation(rng.New(seed), cfg.PopulationSize, cfg.NumStates)
	}
	if len(tables) == 0 {
		slog.Warn("hall of fame has no usable tables, starting from random tables",
			"path", path, "num_states", cfg.NumStates)
	}

	slog.Info("resuming from hall of fame",
		"path", path,
		"hall_size", hof.Size(),
		"hall_top", hof.TopScore(),
		"tables", len(tables),
	)
	return tables, nil
}

// replaySnapshot prints the snowflakes stored in a snapshot.
func replaySnapshot(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	grids, err := snap.Grids()
	if err != nil {
		return err
	}

	slog.Info("replaying snapshot",
		"path", path,
		"seed", snap.RNGSeed,
		"generation", snap.Generation,
		"mean_score", snap.MeanScore,
		"snowflakes", len(grids),
	)
	return render.WriteAll(os.Stdout, grids)
}
