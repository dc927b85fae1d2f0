// Package viewer runs the interactive and headless sensor demo: an ECS
// scene of platforms and terrain, the software-rendered globe view, one
// sensor with its composition pass, and the telemetry pipeline.
package viewer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/kestrelops/sightline/camera"
	"github.com/kestrelops/sightline/components"
	"github.com/kestrelops/sightline/config"
	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/inspector"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/scene"
	"github.com/kestrelops/sightline/telemetry"
	"github.com/kestrelops/sightline/track"
	"github.com/kestrelops/sightline/ui"
	"github.com/kestrelops/sightline/viewshed"
)

// Options holds viewer run-mode settings assembled from flags and config.
type Options struct {
	Seed          int64
	Headless      bool
	LogStats      bool
	OutputDir     string
	SnapshotDir   string
	SnapshotEvery int
	MaxFrames     int

	// Config overrides the global configuration when set. Programmatic
	// runs (parameter sweeps) use this to evaluate many configs in
	// parallel without touching config.Init.
	Config *config.Config

	// StatsCallback receives every flushed coverage window.
	StatsCallback func(telemetry.CoverageStats)
}

// Viewer owns the scene, the sensor, the ECS world behind them and all
// the UI state of a run.
type Viewer struct {
	opts Options
	cfg  *config.Config
	ell  geom.Ellipsoid

	world          *ecs.World
	platformMapper *ecs.Map3[components.Transform, components.Mobile, components.Platform]
	terrainMapper  *ecs.Map3[components.Transform, components.Shape, components.Terrain]
	motionFilter   *ecs.Filter2[components.Transform, components.Mobile]
	platformFilter *ecs.Filter2[components.Transform, components.Platform]
	transformMap   *ecs.Map1[components.Transform]
	shapeMap       *ecs.Map1[components.Shape]

	sc     *scene.Scene
	sensor *viewshed.Sensor
	orbit  *camera.Orbit

	observer track.Source
	target   track.Source

	paused   bool
	stepOnce bool
	frames   int

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	detector      *telemetry.EventDetector
	outputManager *telemetry.OutputManager

	presenter presenter
	depthPIP  depthPreview
	hud       *ui.HUD
	controls  *ui.SensorControls
	overlays  *ui.OverlayRegistry
	inspector *inspector.Inspector

	terrainCount int
	lastDistance float64
	closingSpeed float64
}

// New builds a viewer from the loaded configuration. The scenario tracks,
// the terrain and the sensor all come from config.Cfg() unless
// Options.Config supplies a run-specific one.
func New(opts Options) (*Viewer, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	v := &Viewer{
		opts: opts,
		cfg:  cfg,
		ell: geom.Ellipsoid{
			A: cfg.Derived.SemiAxes[0],
			B: cfg.Derived.SemiAxes[1],
			C: cfg.Derived.SemiAxes[2],
		},
	}

	v.world = ecs.NewWorld()
	v.platformMapper = ecs.NewMap3[components.Transform, components.Mobile, components.Platform](v.world)
	v.terrainMapper = ecs.NewMap3[components.Transform, components.Shape, components.Terrain](v.world)
	v.motionFilter = ecs.NewFilter2[components.Transform, components.Mobile](v.world)
	v.platformFilter = ecs.NewFilter2[components.Transform, components.Platform](v.world)
	v.transformMap = ecs.NewMap1[components.Transform](v.world)
	v.shapeMap = ecs.NewMap1[components.Shape](v.world)

	v.sc = scene.NewScene(cfg.Screen.Width, cfg.Screen.Height)
	v.sc.SetTime(cfg.Clock.Start)

	r := v.sc.Renderer()
	r.Sun = mgl64.Vec3{0.5, 0.3, 0.8}.Normalize()
	v.sc.AddObject(render.Ground{
		Ell:        v.ell,
		Light:      render.RGBA{R: 0.42, G: 0.40, B: 0.33, A: 1},
		Dark:       render.RGBA{R: 0.30, G: 0.33, B: 0.26, A: 1},
		CheckerDeg: 0.005,
	})

	if err := v.buildScenario(); err != nil {
		v.sc.Close()
		return nil, err
	}

	// The motion hook runs inside RenderFrame, before the sensor
	// primitive resolves its geometry.
	v.sc.AddPreRenderHook(v.motionSystem)

	sensor, err := v.buildSensor()
	if err != nil {
		v.sc.Close()
		return nil, err
	}
	v.sensor = sensor

	focus := v.cameraFocus()
	v.orbit = camera.New(v.ell, focus, 4000)
	v.sc.Camera = v.orbit.Camera(cfg.Derived.Aspect)

	v.collector = telemetry.NewCollector(cfg.Telemetry.CoverageEvery)
	v.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	v.detector = telemetry.NewEventDetector(0, 0)

	if cfg.Telemetry.Enabled && opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			v.sensor.Destroy()
			v.sc.Close()
			return nil, fmt.Errorf("viewer: %w", err)
		}
		v.outputManager = om
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	v.hud = ui.NewHUD()
	v.controls = ui.NewSensorControls(10, 110, 300)
	v.overlays = ui.NewOverlayRegistry()
	v.overlays.SetEnabled(ui.OverlayFrustum, true)
	v.overlays.SetEnabled(ui.OverlayMarkers, true)
	v.inspector = inspector.New(int32(cfg.Screen.Width), int32(cfg.Screen.Height))

	slog.Info("viewer_ready",
		"seed", opts.Seed,
		"headless", opts.Headless,
		"terrain_features", v.terrainCount,
		"clock_start", cfg.Clock.Start,
		"clock_end", cfg.Clock.End)
	return v, nil
}

// buildSensor creates the demo sensor from the sensor config block.
func (v *Viewer) buildSensor() (*viewshed.Sensor, error) {
	sc := v.cfg.Sensor

	opts := viewshed.Options{
		Scene:          v.sc,
		Observer:       v.observer,
		Target:         v.target,
		VisibleColor:   rgba(sc.VisibleColor),
		ShadowColor:    rgba(sc.ShadowColor),
		Alpha:          float32(sc.Alpha),
		FieldOfView:    mgl64.DegToRad(sc.FOVDegrees),
		Resolution:     sc.Resolution,
		DepthBias:      sc.DepthBias,
		EnableFrustum:  sc.EnableFrustum,
		ExcludeTerrain: sc.ExcludeTerrain,
	}
	s, err := viewshed.New(opts)
	if err != nil {
		return nil, err
	}

	s.SetNormalShadingSmooth(sc.NormalShadingSmooth)
	// No-op until the first geometry resolution creates the map; the
	// default scenario resolves eagerly, so this lands at startup.
	s.SetDarkness(sc.Darkness)
	return s, nil
}

// cameraFocus picks the initial orbit focus: the target when it reports a
// position at the start of the clock, the observer otherwise.
func (v *Viewer) cameraFocus() mgl64.Vec3 {
	if p, ok := v.target.PositionAt(v.cfg.Clock.Start); ok {
		return p
	}
	if p, ok := v.observer.PositionAt(v.cfg.Clock.Start); ok {
		return p
	}
	return v.ell.GeodeticToECEF(0, 0, 0)
}

// stepClock advances the simulation clock by one configured step,
// wrapping at the end of the span when looping is on.
func (v *Viewer) stepClock() {
	c := v.cfg.Clock
	v.sc.Advance(c.Step)
	if c.Loop && c.End > c.Start && v.sc.Time() > c.End {
		v.sc.SetTime(c.Start)
	}
}

// Update runs one interactive frame: input, clock, and the full render.
func (v *Viewer) Update() {
	v.handleInput()

	v.perfCollector.StartFrame()

	if !v.paused || v.stepOnce {
		v.stepClock()
	}
	v.stepOnce = false

	v.sc.Camera = v.orbit.Camera(v.cfg.Derived.Aspect)

	fs := v.sc.RenderFrame()
	v.perfCollector.AddPhase(telemetry.PhaseGeometry, fs.Timings.Geometry)
	v.perfCollector.AddPhase(telemetry.PhaseRender, fs.Timings.Render)
	v.perfCollector.AddPhase(telemetry.PhaseDepthPass, fs.Timings.DepthPass)
	v.perfCollector.AddPhase(telemetry.PhaseComposite, fs.Timings.Composite)

	v.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	v.recordFrame()
}

// UpdateHeadless runs one frame without any raylib calls.
func (v *Viewer) UpdateHeadless() {
	v.perfCollector.StartFrame()

	v.stepClock()

	fs := v.sc.RenderFrame()
	v.perfCollector.AddPhase(telemetry.PhaseGeometry, fs.Timings.Geometry)
	v.perfCollector.AddPhase(telemetry.PhaseRender, fs.Timings.Render)
	v.perfCollector.AddPhase(telemetry.PhaseDepthPass, fs.Timings.DepthPass)
	v.perfCollector.AddPhase(telemetry.PhaseComposite, fs.Timings.Composite)

	v.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	v.recordFrame()
	v.maybeSnapshot()
	v.flushTelemetry()
	v.perfCollector.EndFrame()

	v.frames++
}

// Frames returns the number of headless frames completed.
func (v *Viewer) Frames() int {
	return v.frames
}

// Done reports whether a bounded headless run has finished.
func (v *Viewer) Done() bool {
	return v.opts.MaxFrames > 0 && v.frames >= v.opts.MaxFrames
}

// recordFrame feeds the coverage collector. A frame where either platform
// track reports no position counts as a dropout; warm-up frames before
// the first depth pass record nothing.
func (v *Viewer) recordFrame() {
	tracked := true
	query := v.platformFilter.Query()
	for query.Next() {
		tr, _ := query.Get()
		if !tr.Tracked {
			tracked = false
		}
	}
	if !tracked {
		v.collector.RecordDropout()
		return
	}

	stats := v.sensor.Stats()
	if stats.Total() == 0 {
		return
	}
	v.collector.RecordFrame(stats, v.sensor.ViewDistance())

	// Range rate for the inspector, from consecutive recorded frames.
	d := v.sensor.ViewDistance()
	if v.lastDistance > 0 && v.cfg.Clock.Step > 0 {
		v.closingSpeed = (d - v.lastDistance) / v.cfg.Clock.Step
	}
	v.lastDistance = d
}

// flushTelemetry closes a coverage window when due: log, CSV rows, event
// detection and event snapshots.
func (v *Viewer) flushTelemetry() {
	frame := int64(v.sc.FrameNumber())
	if !v.collector.ShouldFlush(frame) {
		return
	}

	stats := v.collector.Flush(frame, v.sc.Time())
	perfStats := v.perfCollector.Stats()

	if v.opts.StatsCallback != nil {
		v.opts.StatsCallback(stats)
	}

	if v.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if v.outputManager != nil {
		if err := v.outputManager.WriteCoverage(stats); err != nil {
			slog.Error("failed to write coverage", "error", err)
		}
		if err := v.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	events := v.detector.Check(stats)
	for _, e := range events {
		if v.opts.LogStats {
			e.LogEvent()
		}
		if v.outputManager != nil {
			if err := v.outputManager.WriteEvent(e); err != nil {
				slog.Error("failed to write event", "error", err)
			}
		}
		if v.opts.SnapshotDir != "" {
			v.saveEventSnapshot(e)
		}
	}
}

// Sensor exposes the demo sensor for the control panel and tools.
func (v *Viewer) Sensor() *viewshed.Sensor {
	return v.sensor
}

// Scene exposes the underlying scene.
func (v *Viewer) Scene() *scene.Scene {
	return v.sc
}

// Detector exposes the visibility event detector.
func (v *Viewer) Detector() *telemetry.EventDetector {
	return v.detector
}

// Close releases the sensor, the scene workers, the GPU textures and the
// telemetry outputs.
func (v *Viewer) Close() {
	if v.sensor != nil && !v.sensor.IsDestroyed() {
		v.sensor.Destroy()
	}
	v.sc.Close()
	if !v.opts.Headless {
		v.presenter.Unload()
		v.depthPIP.Unload()
	}
	if v.outputManager != nil {
		if err := v.outputManager.Close(); err != nil {
			slog.Error("failed to close telemetry output", "error", err)
		}
	}
}

// rgba converts a config color block into a render color.
func rgba(c config.ColorConfig) render.RGBA {
	return render.RGBA{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)}
}

// rlColor converts a render color into raylib's 8-bit form.
func rlColor(c render.RGBA) rl.Color {
	b := c.To8()
	return rl.Color{R: b.R, G: b.G, B: b.B, A: b.A}
}
