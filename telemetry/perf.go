package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one rendered frame.
const (
	PhaseGeometry  = "geometry"
	PhaseRender    = "render"
	PhaseDepthPass = "depth_pass"
	PhaseComposite = "composite"
	PhasePresent   = "present"
	PhaseTelemetry = "telemetry"
)

// PhaseOrder fixes the phase ordering for logs and display panels.
var PhaseOrder = []string{
	PhaseGeometry, PhaseRender, PhaseDepthPass,
	PhaseComposite, PhasePresent, PhaseTelemetry,
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector times frames and their phases over a rolling window.
// Phases are bracketed by StartPhase calls or banked directly with
// AddPhase; EndFrame seals the sample into the ring.
type PerfCollector struct {
	ring  []PerfSample
	next  int // ring slot for the next sample
	count int // samples recorded, caps at len(ring)

	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Present-to-present wall timing (for windowed mode)
	lastPresentTime time.Time
	presentInterval time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ring:          make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// closePhase banks the running phase's elapsed time, if any.
func (p *PerfCollector) closePhase(now time.Time) {
	if p.lastPhase == "" {
		return
	}
	p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	p.lastPhase = ""
}

// StartPhase ends the running phase and begins timing a new one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.lastPhase = phase
}

// AddPhase records an externally measured duration for a phase. Used
// for sections timed inside the frame loop rather than bracketed by
// StartPhase calls.
func (p *PerfCollector) AddPhase(phase string, d time.Duration) {
	p.currentPhases[phase] += d
}

// EndFrame seals the current frame's sample into the ring.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	p.closePhase(now)

	p.ring[p.next] = PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// RecordPresent records the wall-clock interval between presents. This
// is the user-visible frame rate, including vsync waits the work
// timing above does not see.
func (p *PerfCollector) RecordPresent() {
	now := time.Now()
	if !p.lastPresentTime.IsZero() {
		p.presentInterval = now.Sub(p.lastPresentTime)
	}
	p.lastPresentTime = now
}

// window returns the recorded samples. Ring order does not matter to
// the aggregation.
func (p *PerfCollector) window() []PerfSample {
	return p.ring[:p.count]
}

// rate converts a per-frame duration into a per-second rate.
func rate(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(time.Second) / float64(d)
}

// PerfStats is one rolling window of frame timing, aggregated.
type PerfStats struct {
	// Frame work timing
	AvgFrameDuration time.Duration
	MinFrameDuration time.Duration
	MaxFrameDuration time.Duration

	// Per-phase average durations and shares of total frame time
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	// Throughput from work timing alone
	FramesPerSecond float64

	// Present-to-present timing (windowed mode)
	PresentInterval time.Duration
	FPS             float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:        make(map[string]time.Duration),
		PhasePct:        make(map[string]float64),
		PresentInterval: p.presentInterval,
		FPS:             rate(p.presentInterval),
	}

	win := p.window()
	if len(win) == 0 {
		return stats
	}

	var total time.Duration
	minFrame, maxFrame := win[0].FrameDuration, win[0].FrameDuration
	phaseTotal := make(map[string]time.Duration)
	for _, s := range win {
		total += s.FrameDuration
		minFrame = min(minFrame, s.FrameDuration)
		maxFrame = max(maxFrame, s.FrameDuration)
		for name, d := range s.Phases {
			phaseTotal[name] += d
		}
	}

	n := time.Duration(len(win))
	stats.AvgFrameDuration = total / n
	stats.MinFrameDuration = minFrame
	stats.MaxFrameDuration = maxFrame
	stats.FramesPerSecond = rate(stats.AvgFrameDuration)
	for name, sum := range phaseTotal {
		stats.PhaseAvg[name] = sum / n
		if total > 0 {
			stats.PhasePct[name] = 100 * float64(sum) / float64(total)
		}
	}
	return stats
}

// LogStats emits one timing line covering the window.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrameDuration.Microseconds(),
		"min_frame_us", s.MinFrameDuration.Microseconds(),
		"max_frame_us", s.MaxFrameDuration.Microseconds(),
		"frames_per_sec", int(s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range PhaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue groups the timing fields when the stats appear as a slog
// attribute.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrameDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrameDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrameDuration.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV flattens PerfStats into one gocsv row per window.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FramesPerSec float64 `csv:"frames_per_sec"`
	FPS          float64 `csv:"fps"`
	GeometryPct  float64 `csv:"geometry_pct"`
	RenderPct    float64 `csv:"render_pct"`
	DepthPassPct float64 `csv:"depth_pass_pct"`
	CompositePct float64 `csv:"composite_pct"`
	PresentPct   float64 `csv:"present_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly record.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgFrameUS:   s.AvgFrameDuration.Microseconds(),
		MinFrameUS:   s.MinFrameDuration.Microseconds(),
		MaxFrameUS:   s.MaxFrameDuration.Microseconds(),
		FramesPerSec: s.FramesPerSecond,
		FPS:          s.FPS,
		GeometryPct:  s.PhasePct[PhaseGeometry],
		RenderPct:    s.PhasePct[PhaseRender],
		DepthPassPct: s.PhasePct[PhaseDepthPass],
		CompositePct: s.PhasePct[PhaseComposite],
		PresentPct:   s.PhasePct[PhasePresent],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
