// Package session runs one snowflake search with its telemetry attached.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/config"
	"github.com/pthm-cable/hexflake/evolve"
	"github.com/pthm-cable/hexflake/rng"
	"github.com/pthm-cable/hexflake/telemetry"
)

// bookmarkHistory is the number of accepted generations the bookmark
// detector averages over.
const bookmarkHistory = 10

// perfWindow is the number of generations perf stats average over.
const perfWindow = 10

// Options configures a session.
type Options struct {
	Config *config.Config // required, assumed validated
	Seed   uint64         // RNG seed, used as is

	LogStats  bool   // log full per-generation stats and bookmarks
	OutputDir string // empty = no files written

	// InitialPopulation seeds the first generation, e.g. from a hall of fame.
	InitialPopulation []automaton.Table

	// StatsCallback, if set, receives every generation's stats.
	StatsCallback func(telemetry.GenerationStats)
}

// Session holds one search and everything observing it.
type Session struct {
	cfg    *config.Config
	seed   uint64
	driver *evolve.Driver

	logStats      bool
	statsCallback func(telemetry.GenerationStats)

	outputManager    *telemetry.OutputManager
	hallOfFame       *telemetry.HallOfFame
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector

	writeErrs []error
}

// New creates a session. The output directory, if any, is created and the
// effective config is written to it.
func New(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New("session: nil config")
	}
	cfg := opts.Config

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s := &Session{
		cfg:              cfg,
		seed:             opts.Seed,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		outputManager:    om,
		hallOfFame:       telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize),
		bookmarkDetector: telemetry.NewBookmarkDetector(bookmarkHistory, cfg.TriesPerGeneration),
		perfCollector:    telemetry.NewPerfCollector(perfWindow),
	}
	s.driver = evolve.New(cfg.Settings, rng.New(opts.Seed), evolve.Options{
		OnGeneration:      s.flushTelemetry,
		InitialPopulation: opts.InitialPopulation,
	})
	return s, nil
}

// Run executes the search and writes the final outputs. The result is
// valid even when an output write failed; the error reports every failed
// write.
func (s *Session) Run() (evolve.Result, error) {
	slog.Info("starting search",
		"seed", s.seed,
		"settings", s.cfg.Settings,
		"output_dir", s.outputManager.Dir(),
	)

	res := s.driver.Run()

	slog.Info("search finished",
		"generations", res.Generations,
		"mean_score", res.MeanScore,
		"snowflakes", len(res.Snowflakes),
		"hall_size", s.hallOfFame.Size(),
		"hall_top", s.hallOfFame.TopScore(),
	)

	if s.cfg.Telemetry.WriteSnowflakes {
		s.record(s.outputManager.WriteSnowflakes(res.Snowflakes))
	}
	s.record(s.outputManager.WriteHallOfFame(s.hallOfFame))
	if res.Generations > 0 {
		snap := telemetry.NewSnapshot(s.seed, s.cfg.Settings, res.Generations, res.Survivors)
		path, err := s.outputManager.WriteSnapshot(snap)
		s.record(err)
		if path != "" {
			slog.Info("snapshot saved", "path", path)
		}
	}

	return res, errors.Join(s.writeErrs...)
}

// HallOfFame returns the tables collected so far.
func (s *Session) HallOfFame() *telemetry.HallOfFame {
	return s.hallOfFame
}

// Close flushes and closes output files.
func (s *Session) Close() error {
	return s.outputManager.Close()
}

func (s *Session) record(err error) {
	if err != nil {
		slog.Error("failed to write output", "error", err)
		s.writeErrs = append(s.writeErrs, err)
	}
}
