package session

import (
	"log/slog"

	"github.com/pthm-cable/hexflake/evolve"
	"github.com/pthm-cable/hexflake/telemetry"
)

// flushTelemetry handles one generation report from the driver.
func (s *Session) flushTelemetry(r evolve.Report) {
	stats := telemetry.NewGenerationStats(r)
	s.perfCollector.Record(r)
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		slog.Info("perf", "stats", perfStats)
	} else {
		slog.Info("generation",
			"n", r.Generation,
			"tries", r.Tries,
			"improved", r.Improved,
			"mean_score", r.MeanScore,
			"best_score", r.BestScore,
		)
	}

	if r.Improved {
		s.hallOfFame.ConsiderAll(r.Survivors, r.Generation)
	}

	// Write to CSV if output manager is enabled
	s.record(s.outputManager.WriteGeneration(stats))
	s.record(s.outputManager.WritePerf(perfStats, r.Generation))

	// Check for bookmarks
	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		s.record(s.outputManager.WriteBookmark(bm))

		// Save snapshot on bookmark
		if len(r.Survivors) > 0 {
			s.saveSnapshot(r, &bm)
		}
	}
}

func (s *Session) saveSnapshot(r evolve.Report, bookmark *telemetry.Bookmark) {
	snap := telemetry.NewSnapshot(s.seed, s.cfg.Settings, r.Generation, r.Survivors)
	snap.Bookmark = bookmark
	path, err := s.outputManager.WriteSnapshot(snap)
	s.record(err)
	if path != "" && s.logStats {
		slog.Info("snapshot saved", "path", path, "bookmark", string(bookmark.Type))
	}
}
