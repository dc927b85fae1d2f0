// Package camera provides the interactive orbit camera for the main view.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

// Orbit circles a focus point in the local east-north-up frame of the
// reference ellipsoid. Heading is the azimuth of the camera position
// around the focus, radians clockwise from north; Pitch is its elevation
// above the focus's horizon plane.
type Orbit struct {
	// Focus is the world point the camera looks at.
	Focus mgl64.Vec3

	Heading float64
	Pitch   float64
	Range   float64 // meters from the focus

	// Projection parameters for the cameras this orbit produces.
	// Far <= 0 scales with Range automatically.
	FOVY float64
	Near float64
	Far  float64

	// Constraints
	MinRange, MaxRange float64
	MinPitch, MaxPitch float64

	ellipsoid           geom.Ellipsoid
	zenith, east, north mgl64.Vec3

	// Home pose for Reset
	homeFocus   mgl64.Vec3
	homeHeading float64
	homePitch   float64
	homeRange   float64
}

// New creates an orbit camera around focus at the given range, pitched 30
// degrees above the horizon and facing from the north.
func New(e geom.Ellipsoid, focus mgl64.Vec3, rang float64) *Orbit {
	o := &Orbit{
		Heading:   0,
		Pitch:     math.Pi / 6,
		Range:     rang,
		FOVY:      math.Pi / 3,
		Near:      0.5,
		MinRange:  10,
		MaxRange:  200_000,
		MinPitch:  0.02,
		MaxPitch:  math.Pi/2 - 0.02,
		ellipsoid: e,
	}
	o.Retarget(focus)
	o.homeFocus = focus
	o.homeHeading = o.Heading
	o.homePitch = o.Pitch
	o.homeRange = o.Range
	return o
}

// Retarget moves the focus and rebuilds the local frame around it.
func (o *Orbit) Retarget(focus mgl64.Vec3) {
	o.Focus = focus
	o.zenith = o.ellipsoid.GeodeticSurfaceNormal(focus)

	east := mgl64.Vec3{0, 0, 1}.Cross(o.zenith)
	if east.LenSqr() < 1e-12 {
		east = mgl64.Vec3{0, 1, 0}
	}
	o.east = east.Normalize()
	o.north = o.zenith.Cross(o.east)
}

// Position returns the camera's world position for the current pose.
func (o *Orbit) Position() mgl64.Vec3 {
	cp := math.Cos(o.Pitch)
	offset := o.east.Mul(cp * math.Sin(o.Heading)).
		Add(o.north.Mul(cp * math.Cos(o.Heading))).
		Add(o.zenith.Mul(math.Sin(o.Pitch)))
	return o.Focus.Add(offset.Mul(o.Range))
}

// Camera produces the render camera for the current pose and viewport
// aspect ratio.
func (o *Orbit) Camera(aspect float64) geom.Camera {
	pos := o.Position()
	far := o.Far
	if far <= 0 {
		far = math.Max(10_000, o.Range*6)
	}
	return geom.Camera{
		Position:  pos,
		Direction: o.Focus.Sub(pos).Normalize(),
		Up:        o.zenith,
		FOVY:      o.FOVY,
		Aspect:    aspect,
		Near:      o.Near,
		Far:       far,
	}
}

// Rotate adjusts heading and pitch. Heading wraps; pitch is clamped to the
// configured limits.
func (o *Orbit) Rotate(dHeading, dPitch float64) {
	o.Heading = wrapAngle(o.Heading + dHeading)
	o.Pitch = clamp(o.Pitch+dPitch, o.MinPitch, o.MaxPitch)
}

// SetRange sets the orbit range, clamped to min/max.
func (o *Orbit) SetRange(r float64) {
	o.Range = clamp(r, o.MinRange, o.MaxRange)
}

// ZoomBy scales the camera toward the focus; factors above 1 zoom in.
func (o *Orbit) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	o.SetRange(o.Range / factor)
}

// Pan shifts the focus in the horizon plane by screen-relative meters:
// dRight along the camera's right, dForward along the camera's forward
// projected onto the plane.
func (o *Orbit) Pan(dRight, dForward float64) {
	pos := o.Position()
	forward := o.Focus.Sub(pos).Normalize()

	right := forward.Cross(o.zenith)
	if right.LenSqr() < 1e-12 {
		right = o.east
	}
	right = right.Normalize()

	fwdT := forward.Sub(o.zenith.Mul(forward.Dot(o.zenith)))
	if fwdT.LenSqr() < 1e-12 {
		// Looking straight down; fall back to the heading direction.
		fwdT = o.east.Mul(-math.Sin(o.Heading)).Add(o.north.Mul(-math.Cos(o.Heading)))
	}
	fwdT = fwdT.Normalize()

	o.Retarget(o.Focus.Add(right.Mul(dRight)).Add(fwdT.Mul(dForward)))
}

// Reset returns the camera to the pose it was created with.
func (o *Orbit) Reset() {
	o.Retarget(o.homeFocus)
	o.Heading = o.homeHeading
	o.Pitch = o.homePitch
	o.Range = o.homeRange
}

// wrapAngle maps an angle into [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
