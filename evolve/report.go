package evolve

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/hexflake/fitness"
)

// Report describes one generation for progress display. It carries the
// numbers of the generation's final try.
type Report struct {
	Generation int  // 1-based
	Tries      int  // batches drawn, including the accepted one
	Improved   bool // survivors' mean beat PrevMean

	MeanScore float64   // survivors' mean score
	PrevMean  float64   // mean of the last accepted generation, 0 before any
	BestScore float64   // top survivor score
	Scores    []float64 // survivors' scores, best first

	// Survivors of the final try, best first. Shared with the driver, so
	// callers must not modify them.
	Survivors []Candidate

	Children   int                    // children evaluated in the final try
	Rejections map[fitness.Reject]int // why children of the final try scored 0

	SetupTime time.Duration // sequential drawing, summed over tries
	EvalTime  time.Duration // parallel grow and score, summed over tries
}

func (r *Report) fill(candidates, survivors []Candidate) {
	r.Children = len(candidates)
	r.Rejections = rejectCounts(candidates)
	r.Survivors = survivors
	r.Scores = scores(survivors)
	r.MeanScore = MeanScore(survivors)
	r.BestScore = 0
	if len(survivors) > 0 {
		r.BestScore = survivors[0].Score()
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", r.Generation),
		slog.Int("tries", r.Tries),
		slog.Bool("improved", r.Improved),
		slog.Float64("mean_score", r.MeanScore),
		slog.Float64("prev_mean", r.PrevMean),
		slog.Float64("best_score", r.BestScore),
		slog.Int("children", r.Children),
		slog.Int("rejected_disconnected", r.Rejections[fitness.RejectDisconnected]),
		slog.Int("rejected_radius", r.Rejections[fitness.RejectRadius]),
		slog.Int("rejected_density", r.Rejections[fitness.RejectDensity]),
		slog.Int("rejected_empty", r.Rejections[fitness.RejectEmpty]),
		slog.Duration("setup", r.SetupTime),
		slog.Duration("eval", r.EvalTime),
	)
}
