package telemetry

import (
	"testing"
	"time"
)

// runTicks drives n ticks through every step phase, spending extra time in
// slow.
func runTicks(pc *PerfCollector, n int, slow string, d time.Duration) {
	for range n {
		pc.StartTick()
		for _, phase := range Phases {
			pc.StartPhase(phase)
			if phase == slow {
				time.Sleep(d)
			}
		}
		pc.EndTick()
	}
}

func TestPerfCollector_StepPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	runTicks(pc, 4, PhaseObservations, 300*time.Microsecond)

	stats := pc.Stats()
	for _, phase := range Phases {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %q not tracked", phase)
		}
	}

	var total float64
	for phase, pct := range stats.PhasePct {
		total += pct
		if phase != PhaseObservations && pct > stats.PhasePct[PhaseObservations] {
			t.Errorf("%s = %.1f%% exceeds observations = %.1f%%", phase, pct, stats.PhasePct[PhaseObservations])
		}
	}
	if total > 100.0001 {
		t.Errorf("phase percentages sum to %.3f", total)
	}
	if stats.AvgTickDuration < 300*time.Microsecond {
		t.Errorf("AvgTickDuration = %v, want >= 300µs", stats.AvgTickDuration)
	}
}

func TestPerfCollector_Window(t *testing.T) {
	pc := NewPerfCollector(3)
	runTicks(pc, 2, PhaseMovement, 2*time.Millisecond)
	runTicks(pc, 3, "", 0)

	// The slow ticks have rolled out of the window.
	stats := pc.Stats()
	if stats.MaxTickDuration >= 2*time.Millisecond {
		t.Errorf("MaxTickDuration = %v, slow ticks still in window", stats.MaxTickDuration)
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min/avg/max = %v/%v/%v", stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("TicksPerSecond not positive")
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	for _, size := range []int{0, 10} {
		stats := NewPerfCollector(size).Stats()
		if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
			t.Errorf("size %d: stats = %+v, want zero", size, stats)
		}
		if stats.PhaseAvg == nil || stats.PhasePct == nil {
			t.Errorf("size %d: nil phase maps", size)
		}
	}
}

func TestPerfCollector_RecordFrame(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	if fps := pc.Stats().FPS; fps != 0 {
		t.Errorf("FPS after one frame = %v, want 0", fps)
	}
	time.Sleep(10 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 10*time.Millisecond {
		t.Errorf("FrameDuration = %v, want >= 10ms", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 100 {
		t.Errorf("FPS = %v, want in (0, 100]", stats.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	pct := make(map[string]float64, len(Phases))
	for i, phase := range Phases {
		pct[phase] = float64(i + 1)
	}
	row := PerfStats{AvgTickDuration: 1500 * time.Microsecond, PhasePct: pct}.ToCSV(300)
	if row.WindowEnd != 300 || row.AvgTickUS != 1500 {
		t.Errorf("row = %+v", row)
	}

	tests := []struct {
		phase string
		got   float64
	}{
		{PhasePolicy, row.PolicyPct},
		{PhaseMovement, row.MovementPct},
		{PhaseActions, row.ActionsPct},
		{PhaseAggregates, row.AggregatesPct},
		{PhaseReproduction, row.ReproductionPct},
		{PhaseEnvironment, row.EnvironmentPct},
		{PhaseObservations, row.ObservationsPct},
		{PhaseVideo, row.VideoPct},
		{PhaseTelemetry, row.TelemetryPct},
	}
	for _, tt := range tests {
		if tt.got != pct[tt.phase] {
			t.Errorf("%s column = %v, want %v", tt.phase, tt.got, pct[tt.phase])
		}
	}
}
