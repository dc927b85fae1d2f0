package viewer

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/components"
	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/inspector"
	"github.com/kestrelops/sightline/telemetry"
	"github.com/kestrelops/sightline/ui"
)

// frustumEdges indexes camera corner pairs: near face, far face, and the
// four connecting edges.
var frustumEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// screenPoint projects a world position into window coordinates. Points
// behind the eye or far outside the frustum are rejected.
func screenPoint(cam *geom.Camera, p mgl64.Vec3) (rl.Vector2, bool) {
	ndc, ok := cam.ProjectPoint(p)
	if !ok {
		return rl.Vector2{}, false
	}
	if ndc.X() < -1.2 || ndc.X() > 1.2 || ndc.Y() < -1.2 || ndc.Y() > 1.2 {
		return rl.Vector2{}, false
	}
	w := float64(rl.GetScreenWidth())
	h := float64(rl.GetScreenHeight())
	return rl.Vector2{
		X: float32((ndc.X() + 1) * 0.5 * w),
		Y: float32((1 - ndc.Y()) * 0.5 * h),
	}, true
}

// drawActiveOverlays renders all currently enabled overlays.
func (v *Viewer) drawActiveOverlays(cam *geom.Camera) {
	for _, id := range v.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayFrustum:
			// Gated twice: the overlay toggle controls the outline, the
			// sensor's own flag controls whether it exists at all.
			if v.sensor.EnableFrustum() {
				v.drawFrustumOutline(cam)
			}
		case ui.OverlayMarkers:
			v.drawPlatformMarkers(cam)
		case ui.OverlayDepthMap:
			v.depthPIP.Draw(v.sensor.Map())
		case ui.OverlayPerf:
			v.drawPerfPanel()
		}
	}
}

// drawFrustumOutline traces the sensor's viewing volume edges on screen.
func (v *Viewer) drawFrustumOutline(cam *geom.Camera) {
	corners, ok := v.sensor.FrustumOutline()
	if !ok {
		return
	}
	col := rl.Fade(rl.Yellow, 0.7)
	for _, e := range frustumEdges {
		a, okA := screenPoint(cam, corners[e[0]])
		b, okB := screenPoint(cam, corners[e[1]])
		if !okA || !okB {
			continue
		}
		rl.DrawLineV(a, b, col)
	}
}

// platformMarkers projects every tracked platform into window space. The
// inspector uses the result for click picking, the marker overlay for
// drawing.
func (v *Viewer) platformMarkers(cam *geom.Camera) []inspector.Marker {
	markers := make([]inspector.Marker, 0, 2)
	query := v.platformFilter.Query()
	for query.Next() {
		tr, pl := query.Get()
		if !tr.Tracked {
			continue
		}
		pt, ok := screenPoint(cam, tr.Pos)
		if !ok {
			continue
		}
		markers = append(markers, inspector.Marker{ID: pl.ID, Name: pl.Name, Pos: pt})
	}
	return markers
}

func (v *Viewer) drawPlatformMarkers(cam *geom.Camera) {
	var observer, target rl.Vector2
	var haveObserver, haveTarget bool

	query := v.platformFilter.Query()
	for query.Next() {
		tr, pl := query.Get()
		if !tr.Tracked {
			continue
		}
		pt, ok := screenPoint(cam, tr.Pos)
		if !ok {
			continue
		}

		col := rl.SkyBlue
		if pl.Kind == components.KindTarget {
			col = rl.Orange
			target, haveTarget = pt, true
		} else {
			observer, haveObserver = pt, true
		}

		rl.DrawCircleLines(int32(pt.X), int32(pt.Y), 7, col)
		if id, sel := v.inspector.Selected(); sel && id == pl.ID {
			rl.DrawCircleLines(int32(pt.X), int32(pt.Y), 11, rl.White)
		}
		rl.DrawText(pl.Name, int32(pt.X)+10, int32(pt.Y)-5, 10, col)
	}

	if haveObserver && haveTarget {
		rl.DrawLineV(observer, target, rl.Fade(rl.SkyBlue, 0.35))
	}
}

// drawPerfPanel lists the per-phase frame time breakdown in the corner the
// depth inset would otherwise use.
func (v *Viewer) drawPerfPanel() {
	stats := v.perfCollector.Stats()

	const w, lineH = 210, 14
	phases := telemetry.PhaseOrder
	h := int32(lineH*(len(phases)+2) + 10)
	x := int32(rl.GetScreenWidth()) - w - 10
	y := int32(rl.GetScreenHeight()) - h - 10

	rl.DrawRectangle(x, y, w, h, rl.Fade(rl.Black, 0.6))
	rl.DrawRectangleLines(x, y, w, h, rl.Gray)

	ty := y + 5
	rl.DrawText(fmt.Sprintf("frame %s avg", stats.AvgFrameDuration.Round(time.Microsecond)), x+6, ty, 10, rl.White)
	ty += lineH
	rl.DrawText(fmt.Sprintf("%.0f fps work / %.0f fps present", stats.FramesPerSecond, stats.FPS), x+6, ty, 10, rl.White)
	ty += lineH
	for _, phase := range phases {
		pct := stats.PhasePct[phase]
		rl.DrawText(fmt.Sprintf("%-10s %5.1f%%", phase, pct), x+6, ty, 10, rl.LightGray)
		barW := int32(float64(w-90) * pct / 100)
		if barW > 0 {
			rl.DrawRectangle(x+w-96, ty+2, barW, 6, rl.Fade(rl.Green, 0.7))
		}
		ty += lineH
	}
}
