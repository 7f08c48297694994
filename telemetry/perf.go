package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/hexflake/evolve"
)

// Phase names for one generation.
const (
	PhaseSetup = "setup" // sequential draws: parents, mix, seed grids
	PhaseEval  = "eval"  // parallel grow and score
)

// PerfSample holds timing data for a single generation.
type PerfSample struct {
	Duration time.Duration
	Children int // children evaluated over all tries
	Phases   map[string]time.Duration
}

// PerfCollector tracks generation timings over a rolling window.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of generations to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// Record adds a generation's timings. A report's child count covers the
// final try only, so every try is assumed to have drawn the same number.
func (p *PerfCollector) Record(r evolve.Report) {
	p.add(PerfSample{
		Duration: r.SetupTime + r.EvalTime,
		Children: r.Children * r.Tries,
		Phases: map[string]time.Duration{
			PhaseSetup: r.SetupTime,
			PhaseEval:  r.EvalTime,
		},
	})
}

func (p *PerfCollector) add(sample PerfSample) {
	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Generation timing
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total generation time
	PhasePct map[string]float64

	// Throughput
	ChildrenPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total time.Duration
	var minDur, maxDur time.Duration
	var children int
	phaseSum := make(map[string]time.Duration)

	// Iterate over valid samples
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration
		children += s.Children

		if i == 0 || s.Duration < minDur {
			minDur = s.Duration
		}
		if s.Duration > maxDur {
			maxDur = s.Duration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if total > 0 {
			phasePct[phase] = float64(sum) / float64(total) * 100
		}
	}

	var childrenPerSec float64
	if total > 0 {
		childrenPerSec = float64(children) / total.Seconds()
	}

	return PerfStats{
		AvgDuration:       avg,
		MinDuration:       minDur,
		MaxDuration:       maxDur,
		PhaseAvg:          phaseAvg,
		PhasePct:          phasePct,
		ChildrenPerSecond: childrenPerSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("avg_gen_ms", s.AvgDuration.Milliseconds()),
		slog.Int64("min_gen_ms", s.MinDuration.Milliseconds()),
		slog.Int64("max_gen_ms", s.MaxDuration.Milliseconds()),
		slog.Float64("children_per_sec", s.ChildrenPerSecond),
		slog.Float64("setup_pct", s.PhasePct[PhaseSetup]),
		slog.Float64("eval_pct", s.PhasePct[PhaseEval]),
	)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Generation     int     `csv:"generation"`
	AvgGenUS       int64   `csv:"avg_gen_us"`
	MinGenUS       int64   `csv:"min_gen_us"`
	MaxGenUS       int64   `csv:"max_gen_us"`
	ChildrenPerSec float64 `csv:"children_per_sec"`
	SetupPct       float64 `csv:"setup_pct"`
	EvalPct        float64 `csv:"eval_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	return PerfStatsCSV{
		Generation:     generation,
		AvgGenUS:       s.AvgDuration.Microseconds(),
		MinGenUS:       s.MinDuration.Microseconds(),
		MaxGenUS:       s.MaxDuration.Microseconds(),
		ChildrenPerSec: s.ChildrenPerSecond,
		SetupPct:       s.PhasePct[PhaseSetup],
		EvalPct:        s.PhasePct[PhaseEval],
	}
}
