// Package viewshed derives a virtual sensor camera from two moving
// positions, maintains the depth map rendered from it, and drives the
// composition pass that tints the scene by line-of-sight visibility.
package viewshed

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/track"
)

// MaxRange caps the sensor's reach in meters. Observers farther than
// this from their target are pulled along the sight line until the
// effective distance is exactly MaxRange.
const MaxRange = 10000.0

// Geometry is one frame's resolved sensor placement.
type Geometry struct {
	Observer mgl64.Vec3
	Target   mgl64.Vec3

	// Distance is the effective observer-target distance: rounded to
	// 0.1 m and never above MaxRange.
	Distance float64
}

// Valid reports whether the geometry can drive a camera.
func (g Geometry) Valid() bool {
	return g.Distance > 0
}

// ResolvePositions derives sensor geometry from raw observer and target
// positions. The distance is rounded to 0.1 m so sub-centimeter jitter
// in the sources does not thrash the camera; beyond MaxRange the
// observer is interpolated toward the target, never the reverse.
func ResolvePositions(observer, target mgl64.Vec3) Geometry {
	raw := target.Sub(observer).Len()
	d := math.Round(raw*10) / 10
	if d > MaxRange {
		observer = observer.Add(target.Sub(observer).Mul(1 - MaxRange/d))
		d = MaxRange
	}
	return Geometry{Observer: observer, Target: target, Distance: d}
}

// Resolve evaluates both sources at simulation time t and derives the
// frame's geometry. ok is false when either source has no position for
// t; callers skip the frame and keep their previous state.
func Resolve(observer, target track.Source, t float64) (Geometry, bool) {
	op, ok := observer.PositionAt(t)
	if !ok {
		return Geometry{}, false
	}
	tp, ok := target.PositionAt(t)
	if !ok {
		return Geometry{}, false
	}
	return ResolvePositions(op, tp), true
}
