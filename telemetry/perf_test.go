package telemetry

import (
	"testing"
	"time"
)

// frameWith records one frame whose named phase has an exact duration,
// so assertions do not depend on wall-clock sleeps.
func frameWith(pc *PerfCollector, phase string, d time.Duration) {
	pc.StartFrame()
	pc.AddPhase(phase, d)
	pc.EndFrame()
}

func TestPerfCollectorPhaseBreakdown(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration")
	}
	if _, ok := stats.PhaseAvg["slow"]; !ok {
		t.Fatal("expected slow phase to be tracked")
	}
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("slow phase share %.1f%% should exceed fast %.1f%%",
			stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollectorAddPhaseExact(t *testing.T) {
	pc := NewPerfCollector(10)

	frameWith(pc, PhaseRender, 4*time.Millisecond)
	frameWith(pc, PhaseRender, 8*time.Millisecond)

	got := pc.Stats().PhaseAvg[PhaseRender]
	if got != 6*time.Millisecond {
		t.Errorf("render phase avg = %v, want 6ms", got)
	}
}

func TestPerfCollectorRollingWindowEvicts(t *testing.T) {
	pc := NewPerfCollector(3)

	for i := 0; i < 3; i++ {
		frameWith(pc, PhaseRender, 30*time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		frameWith(pc, PhaseRender, 10*time.Millisecond)
	}

	got := pc.Stats().PhaseAvg[PhaseRender]
	if got != 10*time.Millisecond {
		t.Errorf("render phase avg = %v, want 10ms once old samples leave the window", got)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgFrameDuration != 0 {
		t.Error("expected zero avg frame duration before any frames")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps from an empty collector")
	}
}

func TestPerfCollectorPresentInterval(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordPresent() // baseline
	time.Sleep(16 * time.Millisecond)
	pc.RecordPresent()

	stats := pc.Stats()
	if stats.PresentInterval < 15*time.Millisecond {
		t.Errorf("present interval = %v, want >= 15ms", stats.PresentInterval)
	}
	// ~60 fps nominal; timers are coarse, allow a wide band.
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("fps = %.1f, want within [40, 80]", stats.FPS)
	}
}

func TestPerfStatsCSVRecord(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.StartFrame()
	pc.StartPhase(PhaseDepthPass)
	time.Sleep(50 * time.Microsecond)
	pc.EndFrame()

	rec := pc.Stats().ToCSV(120)
	if rec.WindowEnd != 120 {
		t.Errorf("window end = %d, want 120", rec.WindowEnd)
	}
	if rec.AvgFrameUS <= 0 {
		t.Error("expected positive avg frame duration in CSV record")
	}
	if rec.DepthPassPct <= 0 {
		t.Error("expected depth pass percentage to be recorded")
	}
}
