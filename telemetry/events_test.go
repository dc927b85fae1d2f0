package telemetry

import "testing"

func window(frame int64, p50 float64, visible, shadowed int64) CoverageStats {
	return CoverageStats{
		WindowEndFrame: frame,
		SimTimeSec:     float64(frame) / 60,
		Frames:         10,
		Visible:        visible,
		Shadowed:       shadowed,
		VisibleFracP50: p50,
	}
}

func TestEventDetectorAcquireRelease(t *testing.T) {
	d := NewEventDetector(0, 0) // defaults: acquire 0.5, release 0.2

	// Low visibility: nothing to report.
	if ev := d.Check(window(10, 0.1, 100, 900)); len(ev) != 0 {
		t.Errorf("low visibility window produced events: %v", ev)
	}
	if d.Acquired() {
		t.Error("detector should not be acquired yet")
	}

	// Crossing the acquire threshold fires once.
	ev := d.Check(window(20, 0.8, 800, 200))
	if len(ev) != 1 || ev[0].Type != EventTargetAcquired {
		t.Fatalf("events = %v, want one target_acquired", ev)
	}
	if ev[0].Frame != 20 {
		t.Errorf("event frame = %d, want 20", ev[0].Frame)
	}
	if !d.Acquired() {
		t.Error("detector should be acquired")
	}

	// Staying high does not re-fire.
	if ev := d.Check(window(30, 0.8, 800, 200)); len(ev) != 0 {
		t.Errorf("steady high visibility re-fired: %v", ev)
	}

	// Inside the hysteresis band: still acquired, no event.
	if ev := d.Check(window(40, 0.3, 300, 700)); len(ev) != 0 {
		t.Errorf("hysteresis band produced events: %v", ev)
	}
	if !d.Acquired() {
		t.Error("detector should stay acquired inside the hysteresis band")
	}

	// Dropping below the release threshold fires target_lost.
	ev = d.Check(window(50, 0.1, 100, 900))
	if len(ev) != 1 || ev[0].Type != EventTargetLost {
		t.Fatalf("events = %v, want one target_lost", ev)
	}
	if d.Acquired() {
		t.Error("detector should not be acquired after loss")
	}
}

func TestEventDetectorLossOnZeroCoverage(t *testing.T) {
	d := NewEventDetector(0.5, 0.2)

	d.Check(window(10, 0.9, 900, 100))
	if !d.Acquired() {
		t.Fatal("setup: detector should be acquired")
	}

	// Cone left the viewport entirely: covered == 0 despite a stale P50.
	ev := d.Check(window(20, 0.9, 0, 0))
	if len(ev) != 1 || ev[0].Type != EventTargetLost {
		t.Fatalf("events = %v, want target_lost on zero coverage", ev)
	}
}

func TestEventDetectorFeedDropout(t *testing.T) {
	d := NewEventDetector(0.5, 0.2)

	down := CoverageStats{WindowEndFrame: 10, Frames: 0, Dropouts: 10}
	ev := d.Check(down)
	if len(ev) != 1 || ev[0].Type != EventFeedDropout {
		t.Fatalf("events = %v, want one feed_dropout", ev)
	}

	// Staying down does not re-fire.
	down.WindowEndFrame = 20
	if ev := d.Check(down); len(ev) != 0 {
		t.Errorf("repeated dropout window re-fired: %v", ev)
	}

	// Recovery fires feed_restored, then the same window can acquire.
	up := window(30, 0.9, 900, 100)
	up.Dropouts = 3
	ev = d.Check(up)
	if len(ev) != 2 {
		t.Fatalf("events = %v, want feed_restored and target_acquired", ev)
	}
	if ev[0].Type != EventFeedRestored || ev[1].Type != EventTargetAcquired {
		t.Errorf("event order = %v, %v; want feed_restored then target_acquired",
			ev[0].Type, ev[1].Type)
	}
}

func TestNewEventDetectorThresholds(t *testing.T) {
	// Release above acquire collapses to half the acquire threshold.
	d := NewEventDetector(0.6, 0.9)
	if d.releaseThreshold != 0.3 {
		t.Errorf("release threshold = %v, want 0.3", d.releaseThreshold)
	}

	d = NewEventDetector(0, 0)
	if d.acquireThreshold != 0.5 || d.releaseThreshold != 0.2 {
		t.Errorf("default thresholds = %v/%v, want 0.5/0.2",
			d.acquireThreshold, d.releaseThreshold)
	}
}
