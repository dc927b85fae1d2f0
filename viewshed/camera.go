package viewshed

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

const (
	// DefaultFieldOfView is the sensor's vertical field of view. The
	// wide cone trades depth precision for coverage.
	DefaultFieldOfView = 2 * math.Pi / 3

	// NearPlane is the sensor camera's near clip distance in meters.
	NearPlane = 0.1
)

// OrientationPolicy chooses the camera up reference for a resolved
// observer position.
type OrientationPolicy interface {
	Up(observer mgl64.Vec3) mgl64.Vec3
}

// RadialUp points up along the observer's position vector, i.e. away
// from the ellipsoid center. This degrades as the observer approaches
// the coordinate origin; the exact origin falls back to +Z.
type RadialUp struct{}

func (RadialUp) Up(observer mgl64.Vec3) mgl64.Vec3 {
	if observer.LenSqr() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return observer.Normalize()
}

// FixedUp always answers the same up reference.
type FixedUp struct {
	V mgl64.Vec3
}

func (f FixedUp) Up(mgl64.Vec3) mgl64.Vec3 {
	return f.V
}

// BuildCamera assembles the sensor camera for resolved geometry: eye at
// the observer, looking at the target, far plane at the effective
// distance. A zero fov selects DefaultFieldOfView, a nil policy
// RadialUp.
func BuildCamera(g Geometry, fov, aspect float64, policy OrientationPolicy) geom.Camera {
	if fov <= 0 {
		fov = DefaultFieldOfView
	}
	if policy == nil {
		policy = RadialUp{}
	}
	return geom.Camera{
		Position:  g.Observer,
		Direction: g.Target.Sub(g.Observer).Normalize(),
		Up:        policy.Up(g.Observer),
		FOVY:      fov,
		Aspect:    aspect,
		Near:      NearPlane,
		Far:       g.Distance,
	}
}
