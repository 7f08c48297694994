// Package telemetry provides generation statistics, milestone bookmarks, a
// hall of fame of rule tables and run snapshots.
package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/hexflake/evolve"
	"github.com/pthm-cable/hexflake/fitness"
)

// GenerationStats is the flat per-generation record written to
// generations.csv.
type GenerationStats struct {
	Generation int  `csv:"generation"`
	Tries      int  `csv:"tries"`
	Improved   bool `csv:"improved"`

	// Survivor score distribution
	PrevMean  float64 `csv:"prev_mean"`
	ScoreMean float64 `csv:"score_mean"`
	ScoreStd  float64 `csv:"score_std"`
	ScoreP10  float64 `csv:"score_p10"`
	ScoreP50  float64 `csv:"score_p50"`
	ScoreP90  float64 `csv:"score_p90"`
	BestScore float64 `csv:"best_score"`

	// Final try's children and why they scored zero
	Children             int `csv:"children"`
	RejectedDisconnected int `csv:"rejected_disconnected"`
	RejectedRadius       int `csv:"rejected_radius"`
	RejectedDensity      int `csv:"rejected_density"`
	RejectedEmpty        int `csv:"rejected_empty"`

	// Mean shape of the survivors
	RadiusMean     float64 `csv:"radius_mean"`
	DensityMean    float64 `csv:"density_mean"`
	SpikinessMean  float64 `csv:"spikiness_mean"`
	CragginessMean float64 `csv:"cragginess_mean"`

	SetupMS float64 `csv:"setup_ms"`
	EvalMS  float64 `csv:"eval_ms"`
}

// NewGenerationStats flattens a driver report.
func NewGenerationStats(r evolve.Report) GenerationStats {
	s := GenerationStats{
		Generation:           r.Generation,
		Tries:                r.Tries,
		Improved:             r.Improved,
		PrevMean:             r.PrevMean,
		BestScore:            r.BestScore,
		Children:             r.Children,
		RejectedDisconnected: r.Rejections[fitness.RejectDisconnected],
		RejectedRadius:       r.Rejections[fitness.RejectRadius],
		RejectedDensity:      r.Rejections[fitness.RejectDensity],
		RejectedEmpty:        r.Rejections[fitness.RejectEmpty],
		SetupMS:              float64(r.SetupTime.Microseconds()) / 1000,
		EvalMS:               float64(r.EvalTime.Microseconds()) / 1000,
	}
	s.ScoreMean, s.ScoreStd, s.ScoreP10, s.ScoreP50, s.ScoreP90 = ComputeScoreStats(r.Scores)

	if n := len(r.Survivors); n > 0 {
		var radius, density, spikiness, cragginess float64
		for _, c := range r.Survivors {
			radius += float64(c.Metrics.Radius)
			density += c.Metrics.Density
			spikiness += c.Metrics.Spikiness
			cragginess += c.Metrics.Cragginess
		}
		s.RadiusMean = radius / float64(n)
		s.DensityMean = density / float64(n)
		s.SpikinessMean = spikiness / float64(n)
		s.CragginessMean = cragginess / float64(n)
	}
	return s
}

// ComputeScoreStats returns mean, standard deviation and the empirical
// 10th, 50th and 90th percentiles of values. All zero when values is empty;
// the deviation is zero for a single value.
func ComputeScoreStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	if n == 1 {
		mean = sorted[0]
	} else {
		mean, std = stat.MeanStdDev(sorted, nil)
	}
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("tries", s.Tries),
		slog.Bool("improved", s.Improved),
		slog.Float64("prev_mean", s.PrevMean),
		slog.Float64("score_mean", s.ScoreMean),
		slog.Float64("score_std", s.ScoreStd),
		slog.Float64("score_p10", s.ScoreP10),
		slog.Float64("score_p50", s.ScoreP50),
		slog.Float64("score_p90", s.ScoreP90),
		slog.Float64("best_score", s.BestScore),
		slog.Int("children", s.Children),
		slog.Int("rejected_disconnected", s.RejectedDisconnected),
		slog.Int("rejected_radius", s.RejectedRadius),
		slog.Int("rejected_density", s.RejectedDensity),
		slog.Int("rejected_empty", s.RejectedEmpty),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("spikiness_mean", s.SpikinessMean),
		slog.Float64("cragginess_mean", s.CragginessMean),
		slog.Float64("setup_ms", s.SetupMS),
		slog.Float64("eval_ms", s.EvalMS),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"tries", s.Tries,
		"improved", s.Improved,
		"score_mean", s.ScoreMean,
		"score_p50", s.ScoreP50,
		"best_score", s.BestScore,
		"children", s.Children,
		"rejected_disconnected", s.RejectedDisconnected,
		"rejected_radius", s.RejectedRadius,
		"rejected_density", s.RejectedDensity,
		"rejected_empty", s.RejectedEmpty,
		"radius_mean", s.RadiusMean,
		"eval_ms", s.EvalMS,
	)
}
