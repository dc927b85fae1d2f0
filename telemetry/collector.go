package telemetry

import (
	"github.com/kestrelops/sightline/composite"
)

// Collector accumulates per-frame sensor coverage and produces
// CoverageStats windows.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStartFrame int64

	// Accumulators for the current window
	frames   int
	dropouts int

	background      int64
	terrainExcluded int64
	outsideFrustum  int64
	outOfRange      int64
	visible         int64
	nearPlane       int64
	shadowed        int64

	visibleFracs []float64
	coveredFracs []float64
	viewDists    []float64
}

// NewCollector creates a coverage collector that flushes a window every
// windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int64(windowFrames)}
}

// RecordFrame records one frame's composition outcome counts and the
// observer-target range used for that frame.
func (c *Collector) RecordFrame(stats composite.PassStats, viewDist float64) {
	c.frames++

	c.background += int64(stats.Background)
	c.terrainExcluded += int64(stats.TerrainExcluded)
	c.outsideFrustum += int64(stats.OutsideFrustum)
	c.outOfRange += int64(stats.OutOfRange)
	c.visible += int64(stats.Visible)
	c.nearPlane += int64(stats.NearPlane)
	c.shadowed += int64(stats.Shadowed)

	c.visibleFracs = append(c.visibleFracs, stats.VisibleFraction())
	if total := stats.Total(); total > 0 {
		c.coveredFracs = append(c.coveredFracs, float64(stats.Covered())/float64(total))
	}
	if viewDist > 0 {
		c.viewDists = append(c.viewDists, viewDist)
	}
}

// RecordDropout records a frame during which the sensor had no geometry.
func (c *Collector) RecordDropout() {
	c.dropouts++
}

// ShouldFlush returns true once enough frames have passed to close the
// current window.
func (c *Collector) ShouldFlush(currentFrame int64) bool {
	return currentFrame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a CoverageStats for the closing window and resets the
// accumulators for the next one.
func (c *Collector) Flush(currentFrame int64, simTime float64) CoverageStats {
	vis := ComputeSeriesStats(c.visibleFracs)
	cov := ComputeSeriesStats(c.coveredFracs)
	distMin, distMax := seriesRange(c.viewDists)
	dist := ComputeSeriesStats(c.viewDists)

	stats := CoverageStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       simTime,

		Frames:   c.frames,
		Dropouts: c.dropouts,

		Background:      c.background,
		TerrainExcluded: c.terrainExcluded,
		OutsideFrustum:  c.outsideFrustum,
		OutOfRange:      c.outOfRange,
		Visible:         c.visible,
		NearPlane:       c.nearPlane,
		Shadowed:        c.shadowed,

		VisibleFracMean: vis.Mean,
		VisibleFracStd:  vis.Std,
		VisibleFracP10:  vis.P10,
		VisibleFracP50:  vis.P50,
		VisibleFracP90:  vis.P90,

		CoveredFracMean: cov.Mean,

		ViewDistMean: dist.Mean,
		ViewDistMin:  distMin,
		ViewDistMax:  distMax,
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.frames = 0
	c.dropouts = 0
	c.background = 0
	c.terrainExcluded = 0
	c.outsideFrustum = 0
	c.outOfRange = 0
	c.visible = 0
	c.nearPlane = 0
	c.shadowed = 0
	c.visibleFracs = c.visibleFracs[:0]
	c.coveredFracs = c.coveredFracs[:0]
	c.viewDists = c.viewDists[:0]

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
