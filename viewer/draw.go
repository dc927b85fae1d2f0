package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/components"
	"github.com/kestrelops/sightline/inspector"
	"github.com/kestrelops/sightline/telemetry"
	"github.com/kestrelops/sightline/ui"
	"github.com/kestrelops/sightline/viewshed"
)

const controlsLegend = "space pause | . step | r restart | tab controls | i inspect | f/m/v/p overlays | drag orbit | wheel zoom | wasd pan | home reset"

// Draw presents the rendered frame and the UI, then closes out the frame's
// perf bracket. Update must have run first.
func (v *Viewer) Draw() {
	v.perfCollector.StartPhase(telemetry.PhasePresent)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.presenter.Present(v.sc.Framebuffer())

	cam := v.sc.Camera
	v.drawActiveOverlays(&cam)

	v.hud.Draw(v.hudData())
	v.hud.DrawControls(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), controlsLegend)
	v.controls.Draw(v.sensor, v.overlays)
	v.inspector.Draw(v.inspectorData())

	rl.EndDrawing()

	// Flushing is charged to the telemetry phase, not to present.
	v.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	v.flushTelemetry()
	v.perfCollector.EndFrame()
	v.perfCollector.RecordPresent()
}

func (v *Viewer) hudData() ui.HUDData {
	observerTracked, targetTracked := v.platformTracked()
	return ui.HUDData{
		Title:           "Sightline",
		SimTime:         v.sc.Time(),
		Frame:           v.sc.FrameNumber(),
		FPS:             rl.GetFPS(),
		Paused:          v.paused,
		Distance:        v.sensor.ViewDistance(),
		Resolution:      v.sensor.Resolution(),
		Stats:           v.sensor.Stats(),
		TerrainCount:    v.terrainCount,
		ObserverTracked: observerTracked,
		TargetTracked:   targetTracked,
		Acquired:        v.detector.Acquired(),
		ScreenWidth:     int32(rl.GetScreenWidth()),
		ScreenHeight:    int32(rl.GetScreenHeight()),
	}
}

func (v *Viewer) platformTracked() (observer, target bool) {
	query := v.platformFilter.Query()
	for query.Next() {
		tr, pl := query.Get()
		if pl.Kind == components.KindTarget {
			target = tr.Tracked
		} else {
			observer = tr.Tracked
		}
	}
	return observer, target
}

func (v *Viewer) inspectorData() *inspector.Data {
	stats := v.sensor.Stats()
	data := &inspector.Data{
		Alpha:           v.sensor.Alpha(),
		Darkness:        v.sensor.Darkness(),
		Smooth:          v.sensor.NormalShadingSmooth(),
		FOVDegrees:      v.sensor.FieldOfView() * 180 / math.Pi,
		DepthBias:       v.sensor.DepthBias(),
		Resolution:      v.sensor.Resolution(),
		ExcludeTerrain:  v.sensor.ExcludeTerrain(),
		VisibleColor:    rlColor(v.sensor.VisibleColor()),
		ShadowColor:     rlColor(v.sensor.ShadowColor()),
		Distance:        v.sensor.ViewDistance(),
		MaxRange:        viewshed.MaxRange,
		RangeRate:       v.closingSpeed,
		VisibleFraction: stats.VisibleFraction(),
		CoveredPixels:   stats.Covered(),
		Acquired:        v.detector.Acquired(),
	}
	if id, ok := v.inspector.Selected(); ok {
		v.fillPlatform(data, id)
	}
	return data
}

// fillPlatform copies the selected platform's state into the panel data.
func (v *Viewer) fillPlatform(data *inspector.Data, id uint32) {
	query := v.platformFilter.Query()
	for query.Next() {
		tr, pl := query.Get()
		if pl.ID != id {
			continue
		}
		data.HasPlatform = true
		data.Platform = *pl
		data.Transform = *tr
		data.Lat, data.Lon, data.Alt = v.ell.ECEFToGeodetic(tr.Pos)
	}
}
