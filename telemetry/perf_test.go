package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/hexflake/evolve"
)

func timedReport(setup, eval time.Duration) evolve.Report {
	return evolve.Report{Tries: 1, Children: 10, SetupTime: setup, EvalTime: eval}
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 4; i++ {
		pc.Record(timedReport(10*time.Millisecond, 30*time.Millisecond))
	}

	stats := pc.Stats()

	if stats.AvgDuration != 40*time.Millisecond {
		t.Errorf("AvgDuration = %v, want 40ms", stats.AvgDuration)
	}
	if stats.PhaseAvg[PhaseSetup] != 10*time.Millisecond || stats.PhaseAvg[PhaseEval] != 30*time.Millisecond {
		t.Errorf("phase averages wrong: %v", stats.PhaseAvg)
	}
	if math.Abs(stats.PhasePct[PhaseEval]-75) > 1e-9 {
		t.Errorf("eval pct = %v, want 75", stats.PhasePct[PhaseEval])
	}
	// 40 children in 160ms
	if math.Abs(stats.ChildrenPerSecond-250) > 1e-6 {
		t.Errorf("ChildrenPerSecond = %v, want 250", stats.ChildrenPerSecond)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(3) // Small window

	pc.Record(timedReport(time.Second, time.Second)) // pushed out below
	for i := 1; i <= 3; i++ {
		pc.Record(timedReport(0, time.Duration(i)*time.Millisecond))
	}

	stats := pc.Stats()
	if stats.MaxDuration != 3*time.Millisecond {
		t.Errorf("MaxDuration = %v, old sample not evicted", stats.MaxDuration)
	}
	if stats.MinDuration != time.Millisecond {
		t.Errorf("MinDuration = %v, want 1ms", stats.MinDuration)
	}
	if stats.AvgDuration != 2*time.Millisecond {
		t.Errorf("AvgDuration = %v, want 2ms", stats.AvgDuration)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgDuration != 0 || stats.ChildrenPerSecond != 0 {
		t.Errorf("empty collector should report zeros: %+v", stats)
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("maps should be non-nil")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	pc := NewPerfCollector(5)
	pc.Record(timedReport(time.Millisecond, 3*time.Millisecond))
	row := pc.Stats().ToCSV(9)

	if row.Generation != 9 || row.AvgGenUS != 4000 {
		t.Errorf("unexpected row: %+v", row)
	}
	if math.Abs(row.SetupPct-25) > 1e-9 || math.Abs(row.EvalPct-75) > 1e-9 {
		t.Errorf("unexpected percentages: %+v", row)
	}
}
